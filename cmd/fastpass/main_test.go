package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

const testMasterKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fastpass.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--env-file", ""))
	err := cmd.Execute()
	return out.String(), err
}

const baseConfig = `
log:
  level: error
fastpass:
  host: community.example.org
  secure: true
  consumer_key: CK
  consumer_secret: CS
security:
  secretbox_master_key: ` + testMasterKey + `
`

func TestParseFields(t *testing.T) {
	t.Parallel()

	got, err := parseFields([]string{"company=Acme", "q=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"company": "Acme", "q": "a=b"}, got)

	_, err = parseFields([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseFields([]string{"=x"})
	assert.Error(t, err)

	got, err = parseFields(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestURLThenVerify(t *testing.T) {
	cfg := writeConfig(t, baseConfig)

	out, err := run(t, "", "url", "--config", cfg, "--email", "a@b.com", "--name", "A B", "--uid", "42", "--field", "company=Acme")
	require.NoError(t, err, out)
	u := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(u, "https://community.example.org/fastpass?company=Acme&email=a%40b.com&name=A%20B&oauth_consumer_key=CK&"), u)

	out, err = run(t, "", "verify", "--config", cfg, u)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"valid": true`)
	assert.Contains(t, out, `"uid": "42"`)
}

func TestURL_MissingFieldsAndCredentials(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	_, err := run(t, "", "url", "--config", cfg, "--email", "a@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, fastpass.ErrConfiguration)
	assert.ErrorIs(t, err, fastpass.ErrValidation)
}

func TestScript(t *testing.T) {
	cfg := writeConfig(t, baseConfig)

	out, err := run(t, "", "script", "--config", cfg, "--email", "a@b.com", "--name", "A", "--uid", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, `//community.example.org/javascripts/fastpass.js`)
	assert.Contains(t, out, `add_js("fastpass", "https://community.example.org/fastpass?`)
}

func TestSealThenUseSealedSecret(t *testing.T) {
	cfg := writeConfig(t, baseConfig)

	out, err := run(t, "CS\n", "seal", "--config", cfg)
	require.NoError(t, err, out)
	sealed := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(sealed, "enc:"))

	sealedCfg := writeConfig(t, strings.Replace(baseConfig, "consumer_secret: CS", "consumer_secret: \""+sealed+"\"", 1))
	out, err = run(t, "", "url", "--config", sealedCfg, "--email", "a@b.com", "--name", "A", "--uid", "1")
	require.NoError(t, err, out)
	u := strings.TrimSpace(out)

	out, err = run(t, "", "verify", "--config", cfg, u)
	require.NoError(t, err, out)
}

func TestVerify_Tampered(t *testing.T) {
	cfg := writeConfig(t, baseConfig)

	out, err := run(t, "", "url", "--config", cfg, "--email", "a@b.com", "--name", "A", "--uid", "1")
	require.NoError(t, err)
	u := strings.Replace(strings.TrimSpace(out), "uid=1", "uid=2", 1)

	_, err = run(t, "", "verify", "--config", cfg, u)
	assert.ErrorIs(t, err, fastpass.ErrSignatureMismatch)
}

func TestMigrate_RequiresDSN(t *testing.T) {
	cfg := writeConfig(t, baseConfig)

	_, err := run(t, "", "migrate", "--config", cfg)
	assert.Error(t, err)
}
