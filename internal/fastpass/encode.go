package fastpass

import "strings"

const upperHex = "0123456789ABCDEF"

// PercentEncode codifica s según RFC 3986 §2.1: letras, dígitos y "-._~" quedan
// como están; cualquier otro byte se escribe como %XX (hex en mayúsculas).
// El espacio es %20, nunca "+".
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// shouldEscape devuelve false sólo para los caracteres unreserved de RFC 3986 §2.3.
func shouldEscape(c byte) bool {
	if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '.', '_', '~':
		return false
	}
	return true
}
