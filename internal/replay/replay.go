// Package replay recuerda nonces ya vistos para rechazar URLs Fastpass
// reutilizadas.
//
// Soporta:
//   - Memory (go-cache, in-process)
//   - Redis (SET NX, compartido entre réplicas)
package replay

import (
	"context"
	"time"
)

// Store registra nonces con TTL.
type Store interface {
	// Remember registra key. fresh es false si ya estaba registrada y no expiró.
	Remember(ctx context.Context, key string, ttl time.Duration) (fresh bool, err error)

	// Ping verifica el backend.
	Ping(ctx context.Context) error

	Close() error
}

// Key arma la key de replay scoped por consumer key.
func Key(consumerKey, nonce string) string {
	return "nonce:" + consumerKey + ":" + nonce
}
