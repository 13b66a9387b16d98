package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
	"github.com/dropDatabas3/fastpass/internal/http/errors"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

// IdentityVerifier valida el token de identidad de la app host.
type IdentityVerifier interface {
	Verify(raw string) (fastpass.Identity, error)
}

// RequireIdentity valida Authorization: Bearer <JWT> y guarda la identidad en
// el contexto. Claims no-string en el token son 400, cualquier otra falla 401.
func RequireIdentity(v IdentityVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="fastpass", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[7:])

			id, err := v.Verify(raw)
			if err != nil {
				logger.From(r.Context()).Debug("identity rejected", logger.Err(err))
				if appErr := errors.FromError(err); appErr.HTTPStatus == http.StatusBadRequest {
					errors.WriteError(w, appErr)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="fastpass", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid.WithCause(err))
				return
			}

			ctx := logger.ToContext(WithIdentity(r.Context(), id),
				logger.From(r.Context()).With(logger.UID(id.UID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIKey exige X-API-Key igual a key (comparación en tiempo constante).
// key vacía deshabilita los endpoints: siempre 401.
func RequireAPIKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				errors.WriteError(w, errors.ErrInvalidAPIKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
