package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/fastpass/internal/metrics"
)

// WithMetrics instrumenta requests HTTP. El label path es el patrón de chi.
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.Instrument(r.Method)
			rec := recorderFor(w)
			defer func() {
				pattern := ""
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					pattern = rctx.RoutePattern()
				}
				done(pattern, rec.status)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
