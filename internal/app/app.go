// Package app arma el grafo de dependencias del servicio a partir de la
// config: stores, limiter, audit, métricas y el router HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/fastpass/internal/audit"
	"github.com/dropDatabas3/fastpass/internal/config"
	"github.com/dropDatabas3/fastpass/internal/fastpass"
	fpctrl "github.com/dropDatabas3/fastpass/internal/http/controllers/fastpass"
	healthctrl "github.com/dropDatabas3/fastpass/internal/http/controllers/health"
	mw "github.com/dropDatabas3/fastpass/internal/http/middlewares"
	"github.com/dropDatabas3/fastpass/internal/http/router"
	svc "github.com/dropDatabas3/fastpass/internal/http/services/fastpass"
	"github.com/dropDatabas3/fastpass/internal/identity"
	"github.com/dropDatabas3/fastpass/internal/metrics"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	"github.com/dropDatabas3/fastpass/internal/rate"
	"github.com/dropDatabas3/fastpass/internal/replay"
)

// Container agrupa los componentes construidos. Close libera conexiones.
type Container struct {
	Config  *config.Config
	Service svc.Service
	Metrics *metrics.Metrics
	Handler http.Handler

	redis  *rdb.Client
	pool   *pgxpool.Pool
	replay replay.Store
}

// Build construye todo. Falla con ConfigurationError si faltan credenciales.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = c.Close()
		}
	}()

	log := logger.Named("app")

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	builder, err := fastpass.NewBuilder(cfg.Endpoint(), creds, nil)
	if err != nil {
		return nil, err
	}

	if c.Metrics, err = metrics.New(); err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	var limiter rate.Limiter
	if cfg.Store.Kind == "redis" {
		c.redis = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Store.Redis.Addr,
			DB:       cfg.Store.Redis.DB,
			Password: cfg.Store.Redis.Password,
		})
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("app: redis ping: %w", err)
		}
		if cfg.Replay.Enabled {
			c.replay = replay.NewRedis(c.redis, cfg.Store.Redis.Prefix)
		}
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(c.redis, cfg.Store.Redis.Prefix+"rl:", cfg.Rate.MaxRequests, config.Dur(cfg.Rate.Window))
		}
	} else {
		if cfg.Replay.Enabled {
			ttl := config.Dur(cfg.Replay.TTL)
			c.replay = replay.NewMemory(ttl, ttl)
		}
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, config.Dur(cfg.Rate.Window))
		}
	}

	sinks := audit.Multi{audit.LogSink{Logger: logger.Named("audit")}}
	if cfg.Audit.Enabled {
		pg, pool, err := audit.NewPGSink(ctx, cfg.Audit.DSN)
		if err != nil {
			return nil, err
		}
		c.pool = pool
		sinks = append(sinks, pg)
	}

	deps := svc.Deps{
		Builder:     builder,
		Credentials: creds,
		Audit:       sinks,
		Metrics:     c.Metrics,
	}
	deps.MaxAge = config.Dur(cfg.Replay.MaxAge)
	if c.replay != nil {
		deps.Replay = c.replay
		deps.ReplayTTL = config.Dur(cfg.Replay.TTL)
	}
	if c.Service, err = svc.New(deps); err != nil {
		return nil, err
	}

	var verifier mw.IdentityVerifier
	if cfg.Identity.JWTSecret != "" {
		v, err := identity.NewVerifier(cfg.Identity.JWTSecret, cfg.Identity.Issuer, cfg.Identity.Audience, config.Dur(cfg.Identity.Leeway))
		if err != nil {
			return nil, err
		}
		verifier = v
	} else {
		log.Warn("identity.jwt_secret not set: GET /v1/fastpass/* disabled")
	}
	if cfg.API.Key == "" {
		log.Warn("api.key not set: POST /v1/fastpass/* will reject every request")
	}

	proxies, err := mw.NewProxyTrust(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	checks := map[string]healthctrl.Pinger{"fastpass": c.Service}
	if c.pool != nil {
		checks["audit"] = c.pool
	}

	c.Handler = router.New(router.Deps{
		Fastpass:       fpctrl.NewController(c.Service),
		Health:         healthctrl.NewController(cfg.Log.ServiceName, checks),
		Identity:       verifier,
		APIKey:         cfg.API.Key,
		RateLimiter:    limiter,
		TrustedProxies: proxies,
		Metrics:        c.Metrics,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		Logger:         logger.L(),
	})

	log.Info("app built",
		logger.Host(cfg.Endpoint().HostOrDefault()),
		logger.ConsumerKey(creds.Key()),
		zap.String("store", cfg.Store.Kind),
		zap.Bool("replay", c.replay != nil),
		zap.Bool("rate", limiter != nil),
		zap.Bool("audit_pg", c.pool != nil),
	)
	ok = true
	return c, nil
}

// Close cierra stores y pools.
func (c *Container) Close() error {
	var errs []error
	if c.replay != nil {
		errs = append(errs, c.replay.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.pool != nil {
		c.pool.Close()
	}
	return errors.Join(errs...)
}
