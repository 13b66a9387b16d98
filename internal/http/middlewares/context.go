package middlewares

import (
	"context"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxIdentity  ctxKey = "identity"
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestID, rid)
}

// GetRequestID devuelve el request id o "".
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestID).(string)
	return s
}

// WithIdentity guarda la identidad verificada.
func WithIdentity(ctx context.Context, id fastpass.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// GetIdentity devuelve la identidad cargada por RequireIdentity.
func GetIdentity(ctx context.Context) (fastpass.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(fastpass.Identity)
	return id, ok
}
