package fastpass

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock provee el timestamp de oauth_timestamp.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock usa time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock devuelve siempre t. Pensado para tests y para reproducir firmas.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Noncer provee nonces aleatorios.
type Noncer interface {
	Nonce() string
}

// NoncerFunc adapta una función a Noncer.
type NoncerFunc func() string

func (f NoncerFunc) Nonce() string { return f() }

// UUIDNoncer genera nonces de 32 caracteres hex a partir de un UUIDv4
// (122 bits aleatorios).
type UUIDNoncer struct{}

func (UUIDNoncer) Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// StaticNoncer devuelve siempre el mismo nonce.
func StaticNoncer(nonce string) Noncer {
	return NoncerFunc(func() string { return nonce })
}
