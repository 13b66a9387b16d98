package fastpass

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels para errors.Is. Los tipos concretos de abajo hacen match con ellos.
var (
	ErrConfiguration = errors.New("fastpass: configuration error")
	ErrValidation    = errors.New("fastpass: validation error")
	ErrEncoding      = errors.New("fastpass: encoding error")
)

// Errores del Verifier.
var (
	ErrMalformedURL      = errors.New("fastpass: malformed fastpass url")
	ErrSignatureMismatch = errors.New("fastpass: signature mismatch")
	ErrConsumerMismatch  = errors.New("fastpass: consumer key mismatch")
	ErrStaleTimestamp    = errors.New("fastpass: timestamp outside allowed window")
)

// ConfigurationError indica consumer key y/o secret vacíos.
type ConfigurationError struct {
	// Fields contiene "key" y/o "secret".
	Fields []string
}

func (e *ConfigurationError) Error() string {
	return "fastpass: missing consumer credentials: " + strings.Join(e.Fields, ", ")
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ValidationError enumera TODOS los claims requeridos que faltan, en orden
// email, name, uid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "fastpass: missing required claims: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// EncodingError indica un parámetro que no se puede representar como string
// firmable.
type EncodingError struct {
	Key    string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("fastpass: cannot encode parameter %q: %s", e.Key, e.Reason)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
