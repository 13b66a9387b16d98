package replay

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory implementa Store sobre go-cache. Add es atómico, así que dos
// requests concurrentes con el mismo nonce no pueden pasar ambos.
type Memory struct {
	c *gocache.Cache
}

// NewMemory crea un store en memoria. cleanup es el intervalo de purga de
// entradas expiradas.
func NewMemory(defaultTTL, cleanup time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, cleanup)}
}

func (m *Memory) Remember(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := m.c.Add(key, struct{}{}, ttl); err != nil {
		// go-cache devuelve error sólo si la key ya existe y no expiró
		return false, nil
	}
	return true, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}

// Len devuelve la cantidad de nonces vigentes.
func (m *Memory) Len() int { return m.c.ItemCount() }
