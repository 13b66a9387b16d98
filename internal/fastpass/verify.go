package fastpass

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Verification es el resultado de una URL Fastpass válida.
type Verification struct {
	BaseURL   string
	Claims    Claims
	Nonce     string
	Timestamp time.Time
}

// VerifyOption configura Verify.
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	maxAge time.Duration
	clock  Clock
}

// WithMaxAge rechaza timestamps a más de d del reloj (en cualquier dirección).
func WithMaxAge(d time.Duration, clock Clock) VerifyOption {
	return func(o *verifyOptions) {
		o.maxAge = d
		if clock != nil {
			o.clock = clock
		}
	}
}

// Verify parsea una URL Fastpass y recalcula su firma con creds.
func Verify(rawURL string, creds Credentials, opts ...VerifyOption) (*Verification, error) {
	if err := creds.valid(); err != nil {
		return nil, err
	}
	o := verifyOptions{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: not an absolute url", ErrMalformedURL)
	}
	baseURL := u.Scheme + "://" + u.Host + u.EscapedPath()

	params, err := parseQuery(u.RawQuery)
	if err != nil {
		return nil, err
	}

	var (
		sig    string
		hasSig bool
		signed = make(Params, 0, len(params))
	)
	for _, p := range params {
		if p.Key == ParamSignature {
			if hasSig {
				return nil, fmt.Errorf("%w: duplicate %s", ErrMalformedURL, ParamSignature)
			}
			sig, hasSig = p.Value, true
			continue
		}
		signed = append(signed, p)
	}
	if !hasSig {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedURL, ParamSignature)
	}

	if v, _ := signed.Get(ParamSignatureMethod); v != SignatureMethod {
		return nil, fmt.Errorf("%w: unsupported signature method %q", ErrMalformedURL, v)
	}
	if v, _ := signed.Get(ParamVersion); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedURL, v)
	}
	if v, _ := signed.Get(ParamConsumerKey); v != creds.key {
		return nil, ErrConsumerMismatch
	}
	nonce, _ := signed.Get(ParamNonce)
	if nonce == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedURL, ParamNonce)
	}
	tsRaw, _ := signed.Get(ParamTimestamp)
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrMalformedURL, ParamTimestamp)
	}

	_, normalized := sortParams(signed)
	want := hmacSHA1(creds.secret, SignatureBase(http.MethodGet, baseURL, normalized))
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return nil, ErrSignatureMismatch
	}

	issued := time.Unix(ts, 0)
	if o.maxAge > 0 {
		skew := o.clock.Now().Sub(issued)
		if skew < 0 {
			skew = -skew
		}
		if skew > o.maxAge {
			return nil, ErrStaleTimestamp
		}
	}

	claims := make(Claims, len(signed))
	for _, p := range signed {
		if strings.HasPrefix(p.Key, oauthPrefix) {
			continue
		}
		if _, dup := claims[p.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate claim %q", ErrMalformedURL, p.Key)
		}
		claims[p.Key] = p.Value
	}

	return &Verification{
		BaseURL:   baseURL,
		Claims:    claims,
		Nonce:     nonce,
		Timestamp: issued,
	}, nil
}

// parseQuery separa la query sin pasar por url.Values: conserva el orden,
// admite keys repetidas y no convierte "+" en espacio.
func parseQuery(raw string) (Params, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty query", ErrMalformedURL)
	}
	parts := strings.Split(raw, "&")
	out := make(Params, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.PathUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: bad key %q", ErrMalformedURL, k)
		}
		val, err := url.PathUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value for %q", ErrMalformedURL, key)
		}
		out = append(out, Param{Key: key, Value: val})
	}
	return out, nil
}
