package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/fastpass/internal/http/errors"
	"github.com/dropDatabas3/fastpass/internal/metrics"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	"github.com/dropDatabas3/fastpass/internal/rate"
)

// clientIP es el peer directo (RemoteAddr sin puerto).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPPathRateKey separa límites por IP de cliente y endpoint. X-Forwarded-For
// sólo cuenta si el peer está en trust.
func IPPathRateKey(trust *ProxyTrust) RateKeyFunc {
	return func(r *http.Request) string {
		return trust.ClientIP(r) + "|" + r.URL.Path
	}
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	Metrics *metrics.Metrics
}

// WithRateLimit responde 429 cuando se excede la ventana. Si el limiter
// falla, el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey(nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				if secs := int(res.RetryAfter.Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				} else {
					w.Header().Set("Retry-After", "1")
				}
				if cfg.Metrics != nil {
					cfg.Metrics.RateLimited.Inc()
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
