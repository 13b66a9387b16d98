package fastpass

// Credentials es el par consumer key/secret. Inmutable una vez construido.
type Credentials struct {
	key    string
	secret string
}

// NewCredentials valida que key y secret no estén vacíos.
func NewCredentials(key, secret string) (Credentials, error) {
	if err := checkCredentials(key, secret); err != nil {
		return Credentials{}, err
	}
	return Credentials{key: key, secret: secret}, nil
}

// Key devuelve el consumer key. El secret no se expone.
func (c Credentials) Key() string { return c.key }

func (c Credentials) valid() error { return checkCredentials(c.key, c.secret) }

func checkCredentials(key, secret string) error {
	var missing []string
	if key == "" {
		missing = append(missing, "key")
	}
	if secret == "" {
		missing = append(missing, "secret")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Fields: missing}
	}
	return nil
}
