package fastpass

import "errors"

// Config es el input de construcción: credenciales, endpoint e identidad.
type Config struct {
	// Host default: DefaultHost.
	Host   string
	Secure bool

	Key    string
	Secret string

	Email string
	Name  string
	UID   string

	Fields map[string]string
}

// Option configura New.
type Option func(*options)

type options struct {
	signerOpts []SignerOption
}

// WithSignerOptions pasa opciones al Signer interno (reloj, nonces).
func WithSignerOptions(opts ...SignerOption) Option {
	return func(o *options) { o.signerOpts = append(o.signerOpts, opts...) }
}

// Fastpass es un generador ya validado para un usuario.
type Fastpass struct {
	builder  *Builder
	identity Identity
}

// New valida todo el Config antes de construir. Si faltan credenciales y claims
// a la vez, el error es errors.Join de ConfigurationError y ValidationError.
func New(cfg Config, opts ...Option) (*Fastpass, error) {
	id := Identity{
		Email:  cfg.Email,
		Name:   cfg.Name,
		UID:    cfg.UID,
		Fields: copyFields(cfg.Fields),
	}

	// Fase 1: juntar errores
	credErr := checkCredentials(cfg.Key, cfg.Secret)
	idErr := id.Validate()
	if err := errors.Join(credErr, idErr); err != nil {
		return nil, err
	}

	// Fase 2: construir
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b, err := NewBuilder(
		Endpoint{Host: cfg.Host, Secure: cfg.Secure},
		Credentials{key: cfg.Key, secret: cfg.Secret},
		NewSigner(o.signerOpts...),
	)
	if err != nil {
		return nil, err
	}
	return &Fastpass{builder: b, identity: id}, nil
}

// URL genera una URL firmada nueva (nonce y timestamp frescos).
func (f *Fastpass) URL() (string, error) { return f.builder.URL(f.identity) }

// Script genera el snippet <script> con una URL firmada nueva.
func (f *Fastpass) Script() (string, error) { return f.builder.ScriptTag(f.identity) }

// Identity devuelve la identidad validada.
func (f *Fastpass) Identity() Identity { return f.identity }

func copyFields(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
