package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ProxyTrust es la lista de proxies cuyo X-Forwarded-For se respeta.
// Un *ProxyTrust nil no confía en nadie.
type ProxyTrust struct {
	nets []*net.IPNet
}

// NewProxyTrust acepta IPs sueltas o CIDRs. Lista vacía devuelve nil.
func NewProxyTrust(entries []string) (*ProxyTrust, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	p := &ProxyTrust{}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if ip := net.ParseIP(e); ip != nil {
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: not an IP or CIDR", e)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

func (p *ProxyTrust) trusts(host string) bool {
	if p == nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP devuelve el peer directo salvo que sea un proxy de confianza; en
// ese caso recorre X-Forwarded-For de derecha a izquierda y devuelve la
// primera IP que no es proxy.
func (p *ProxyTrust) ClientIP(r *http.Request) string {
	remote := clientIP(r)
	if !p.trusts(remote) {
		return remote
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !p.trusts(hop) {
			return hop
		}
	}
	return remote
}
