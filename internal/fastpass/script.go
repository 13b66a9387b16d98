package fastpass

import "strings"

// renderScript arma el snippet del widget Fastpass. La URL va tal cual, sin
// escapar, como src del segundo script. El window.onload previo se encadena.
func renderScript(host, signedURL string) string {
	return strings.Join([]string{
		`<script type="text/javascript">`,
		`var GSFN;`,
		`if (GSFN == undefined) { GSFN = {}; }`,
		`(function(){`,
		`add_js = function(jsid, url) {`,
		`var head = document.getElementsByTagName("head")[0];`,
		`script = document.createElement("script");`,
		`script.id = jsid;`,
		`script.type = "text/javascript";`,
		`script.src = url;`,
		`head.appendChild(script);`,
		`};`,
		`add_js("fastpass_common", document.location.protocol + "//` + host + `/javascripts/fastpass.js");`,
		`if (window.onload) { var old_load = window.onload; }`,
		`window.onload = function() {`,
		`if(old_load) old_load();`,
		`add_js("fastpass", "` + signedURL + `");`,
		`}`,
		`})();`,
		`</script>`,
	}, "")
}
