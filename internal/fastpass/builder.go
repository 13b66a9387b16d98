package fastpass

import "net/http"

// DefaultHost es el dominio de Get Satisfaction.
const DefaultHost = "getsatisfaction.com"

const fastpassPath = "/fastpass"

// Endpoint determina scheme y dominio de la URL base.
type Endpoint struct {
	Host   string
	Secure bool
}

// HostOrDefault devuelve Host o DefaultHost si está vacío.
func (e Endpoint) HostOrDefault() string {
	if e.Host == "" {
		return DefaultHost
	}
	return e.Host
}

// BaseURL devuelve http(s)://{host}/fastpass.
func (e Endpoint) BaseURL() string {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	return scheme + "://" + e.HostOrDefault() + fastpassPath
}

// Builder arma URLs Fastpass para un Endpoint y Credentials fijos.
// Es inmutable y seguro para uso concurrente.
type Builder struct {
	endpoint Endpoint
	creds    Credentials
	signer   *Signer
}

// NewBuilder valida las credenciales. signer nil usa NewSigner().
func NewBuilder(endpoint Endpoint, creds Credentials, signer *Signer) (*Builder, error) {
	if err := creds.valid(); err != nil {
		return nil, err
	}
	if signer == nil {
		signer = NewSigner()
	}
	return &Builder{endpoint: endpoint, creds: creds, signer: signer}, nil
}

// Endpoint devuelve el endpoint configurado.
func (b *Builder) Endpoint() Endpoint { return b.endpoint }

// Sign valida la identidad y devuelve el request firmado.
func (b *Builder) Sign(id Identity) (*SignedRequest, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return b.signer.Sign(http.MethodGet, b.endpoint.BaseURL(), b.creds, id.Claims())
}

// URL devuelve la URL Fastpass firmada para id.
func (b *Builder) URL(id Identity) (string, error) {
	req, err := b.Sign(id)
	if err != nil {
		return "", err
	}
	return req.URL(), nil
}

// ScriptTag devuelve el snippet <script> que carga Fastpass con la URL firmada.
func (b *Builder) ScriptTag(id Identity) (string, error) {
	req, err := b.Sign(id)
	if err != nil {
		return "", err
	}
	return b.ScriptFor(req), nil
}

// ScriptFor arma el snippet para un request ya firmado por Sign.
func (b *Builder) ScriptFor(req *SignedRequest) string {
	return renderScript(b.endpoint.HostOrDefault(), req.URL())
}
