package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implementa Store con SET NX EX.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis envuelve un cliente existente.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay: redis setnx: %w", err)
	}
	return ok, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("replay: redis ping: %w", err)
	}
	return nil
}

// Close no cierra el cliente: es de quien lo creó.
func (r *Redis) Close() error { return nil }
