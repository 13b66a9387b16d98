// Package router arma el árbol de rutas chi del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	fpctrl "github.com/dropDatabas3/fastpass/internal/http/controllers/fastpass"
	healthctrl "github.com/dropDatabas3/fastpass/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/fastpass/internal/http/errors"
	mw "github.com/dropDatabas3/fastpass/internal/http/middlewares"
	"github.com/dropDatabas3/fastpass/internal/metrics"
	"github.com/dropDatabas3/fastpass/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Fastpass *fpctrl.Controller
	Health   *healthctrl.Controller

	// Identity nil deshabilita las rutas GET (Bearer).
	Identity mw.IdentityVerifier
	// APIKey vacía hace que las rutas POST respondan 401.
	APIKey string

	RateLimiter rate.Limiter
	// TrustedProxies nil ignora X-Forwarded-For en la clave de rate limit.
	TrustedProxies *mw.ProxyTrust
	Metrics        *metrics.Metrics
	CORSOrigins    []string
	Logger         *zap.Logger
}

// New registra:
//
//	GET  /readyz
//	GET  /metrics
//	GET  /v1/fastpass/url     (Bearer)
//	GET  /v1/fastpass/script  (Bearer)
//	POST /v1/fastpass/url     (X-API-Key)
//	POST /v1/fastpass/verify  (X-API-Key)
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(d.Logger),
		mw.WithMetrics(d.Metrics),
		mw.WithSecurityHeaders(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/readyz", d.Health.Ready)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	if d.Fastpass == nil {
		return r
	}

	r.Route("/v1/fastpass", func(r chi.Router) {
		r.Use(
			mw.WithCORS(d.CORSOrigins),
			mw.WithNoStore(),
			mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.RateLimiter,
				KeyFunc: mw.IPPathRateKey(d.TrustedProxies),
				Metrics: d.Metrics,
			}),
		)

		if d.Identity != nil {
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireIdentity(d.Identity))
				r.Get("/url", d.Fastpass.GetURL)
				r.Get("/script", d.Fastpass.GetScript)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAPIKey(d.APIKey))
			r.Post("/url", d.Fastpass.PostURL)
			r.Post("/verify", d.Fastpass.PostVerify)
		})
	})
	return r
}
