package fastpass

import (
	"fmt"
	"sort"
)

// Claims requeridos.
const (
	ClaimEmail = "email"
	ClaimName  = "name"
	ClaimUID   = "uid"
)

// Claims es el mapa plano claim → valor que se firma.
type Claims map[string]string

// Identity es el usuario ya verificado por la aplicación host.
type Identity struct {
	Email string
	Name  string
	UID   string
	// Fields son claims adicionales. Nunca pisan email, name ni uid.
	Fields map[string]string
}

// Validate junta todos los claims requeridos vacíos en un solo ValidationError.
func (id Identity) Validate() error {
	var missing []string
	if id.Email == "" {
		missing = append(missing, ClaimEmail)
	}
	if id.Name == "" {
		missing = append(missing, ClaimName)
	}
	if id.UID == "" {
		missing = append(missing, ClaimUID)
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Claims mergea los campos extra con política first-write-wins: los requeridos
// se escriben primero y un field con el mismo nombre se ignora.
func (id Identity) Claims() Claims {
	c := make(Claims, len(id.Fields)+3)
	c[ClaimEmail] = id.Email
	c[ClaimName] = id.Name
	c[ClaimUID] = id.UID
	for k, v := range id.Fields {
		if _, exists := c[k]; exists {
			continue
		}
		c[k] = v
	}
	return c
}

// FieldsFromAny convierte campos de origen débilmente tipado (JSON, claims JWT,
// YAML) a map[string]string. Cualquier valor que no sea string falla con
// EncodingError.
func FieldsFromAny(in map[string]any) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(in))
	for _, k := range keys {
		v := in[k]
		s, ok := v.(string)
		if !ok {
			return nil, &EncodingError{Key: k, Reason: fmt.Sprintf("value of type %T is not a string", v)}
		}
		out[k] = s
	}
	return out, nil
}
