package fastpass

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parámetros del protocolo OAuth 1.0.
const (
	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamVersion         = "oauth_version"

	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"

	oauthPrefix = "oauth_"
)

// SignedRequest es el set de parámetros firmado. Se crea por llamada y no se muta.
type SignedRequest struct {
	Method  string
	BaseURL string
	// Params está ordenado por key/valor encodeados, con oauth_signature al final.
	Params Params
}

// Signature devuelve oauth_signature.
func (r *SignedRequest) Signature() string {
	v, _ := r.Params.Get(ParamSignature)
	return v
}

// Query serializa los parámetros como key=PercentEncode(value) unidos por "&".
// Las keys no se re-encodean.
func (r *SignedRequest) Query() string {
	parts := make([]string, len(r.Params))
	for i, p := range r.Params {
		parts[i] = p.Key + "=" + PercentEncode(p.Value)
	}
	return strings.Join(parts, "&")
}

// URL devuelve BaseURL + "?" + Query().
func (r *SignedRequest) URL() string {
	return r.BaseURL + "?" + r.Query()
}

// Signer firma requests OAuth 1.0 two-legged con HMAC-SHA1.
// Es seguro para uso concurrente.
type Signer struct {
	clock  Clock
	noncer Noncer
}

// SignerOption configura un Signer.
type SignerOption func(*Signer)

// WithClock reemplaza el reloj (default: SystemClock).
func WithClock(c Clock) SignerOption {
	return func(s *Signer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithNoncer reemplaza la fuente de nonces (default: UUIDNoncer).
func WithNoncer(n Noncer) SignerOption {
	return func(s *Signer) {
		if n != nil {
			s.noncer = n
		}
	}
}

// NewSigner crea un Signer con reloj del sistema y nonces UUID salvo que se
// indique otra cosa.
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{clock: SystemClock, noncer: UUIDNoncer{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign arma el set de parámetros OAuth, calcula la firma y devuelve el
// SignedRequest. params no se modifica.
func (s *Signer) Sign(method, baseURL string, creds Credentials, params Claims) (*SignedRequest, error) {
	if err := creds.valid(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	all := make(Params, 0, len(params)+5)
	for _, k := range keys {
		v := params[k]
		if err := checkParam(k, v); err != nil {
			return nil, err
		}
		all = append(all, Param{Key: k, Value: v})
	}

	all = append(all,
		Param{Key: ParamConsumerKey, Value: creds.key},
		Param{Key: ParamSignatureMethod, Value: SignatureMethod},
		Param{Key: ParamTimestamp, Value: strconv.FormatInt(s.clock.Now().Unix(), 10)},
		Param{Key: ParamNonce, Value: s.noncer.Nonce()},
		Param{Key: ParamVersion, Value: Version},
	)

	method = strings.ToUpper(method)
	sorted, normalized := sortParams(all)
	sig := hmacSHA1(creds.secret, SignatureBase(method, baseURL, normalized))

	return &SignedRequest{
		Method:  method,
		BaseURL: baseURL,
		Params:  append(sorted, Param{Key: ParamSignature, Value: sig}),
	}, nil
}

// SignatureBase arma METHOD&enc(baseURL)&enc(normalizedParams) (RFC 5849 §3.4.1).
func SignatureBase(method, baseURL, normalizedParams string) string {
	return strings.ToUpper(method) + "&" + PercentEncode(baseURL) + "&" + PercentEncode(normalizedParams)
}

// hmacSHA1 firma con key enc(consumerSecret)+"&" (sin token secret).
func hmacSHA1(consumerSecret, base string) string {
	mac := hmac.New(sha1.New, []byte(PercentEncode(consumerSecret)+"&"))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// checkParam: las keys van a la URL sin encodear, así que sólo se aceptan
// caracteres no reservados.
func checkParam(k, v string) error {
	switch {
	case k == "":
		return &EncodingError{Key: k, Reason: "empty parameter name"}
	case strings.HasPrefix(k, oauthPrefix):
		return &EncodingError{Key: k, Reason: "reserved oauth_ parameter"}
	case !utf8.ValidString(k):
		return &EncodingError{Key: k, Reason: "name is not valid UTF-8"}
	case PercentEncode(k) != k:
		return &EncodingError{Key: k, Reason: "name requires percent-encoding"}
	case !utf8.ValidString(v):
		return &EncodingError{Key: k, Reason: "value is not valid UTF-8"}
	}
	return nil
}
