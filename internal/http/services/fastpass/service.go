// Package fastpass contiene el service que emite y verifica URLs Fastpass
// para los controllers HTTP.
package fastpass

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/fastpass/internal/audit"
	fp "github.com/dropDatabas3/fastpass/internal/fastpass"
	"github.com/dropDatabas3/fastpass/internal/metrics"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	"github.com/dropDatabas3/fastpass/internal/replay"
)

// ErrNonceReused: la URL ya fue verificada antes.
var ErrNonceReused = errors.New("fastpass: nonce already used")

// Surfaces para métricas.
const (
	SurfaceURL    = "url"
	SurfaceScript = "script"
)

// Deps agrupa las dependencias del service. Replay, Audit y Metrics son
// opcionales.
type Deps struct {
	Builder     *fp.Builder
	Credentials fp.Credentials
	Clock       fp.Clock

	// Replay nil deshabilita la detección de nonces reutilizados. Con Replay
	// MaxAge es obligatorio y ReplayTTL nunca queda por debajo de MaxAge.
	Replay    replay.Store
	ReplayTTL time.Duration
	// MaxAge 0 no chequea el timestamp.
	MaxAge time.Duration

	Audit   audit.Sink
	Metrics *metrics.Metrics
}

// Issued es una URL recién firmada.
type Issued struct {
	URL       string
	Script    string
	Nonce     string
	Timestamp time.Time
}

// Service emite y verifica URLs Fastpass.
type Service interface {
	Issue(ctx context.Context, id fp.Identity, surface, source string) (*Issued, error)
	Verify(ctx context.Context, rawURL string) (*fp.Verification, error)
	Ping(ctx context.Context) error
}

type service struct {
	d Deps
}

// New valida que haya Builder.
func New(d Deps) (Service, error) {
	if d.Builder == nil {
		return nil, errors.New("fastpass service: builder is required")
	}
	if d.Clock == nil {
		d.Clock = fp.SystemClock
	}
	if d.Replay != nil {
		// sin MaxAge la URL no vence y el nonce se olvidaría antes que ella
		if d.MaxAge <= 0 {
			return nil, errors.New("fastpass service: replay detection requires a max age")
		}
		if d.ReplayTTL < d.MaxAge {
			d.ReplayTTL = d.MaxAge
		}
	}
	return &service{d: d}, nil
}

func (s *service) Issue(ctx context.Context, id fp.Identity, surface, source string) (*Issued, error) {
	log := logger.From(ctx).With(logger.Op("fastpass.Issue"), logger.Source(source))

	req, err := s.d.Builder.Sign(id)
	if err != nil {
		log.Warn("sign failed", logger.Err(err))
		return nil, err
	}

	out := &Issued{URL: req.URL()}
	if surface == SurfaceScript {
		out.Script = s.d.Builder.ScriptFor(req)
	}
	out.Nonce, _ = req.Params.Get(fp.ParamNonce)
	if ts, _ := req.Params.Get(fp.ParamTimestamp); ts != "" {
		if n, err := strconv.ParseInt(ts, 10, 64); err == nil {
			out.Timestamp = time.Unix(n, 0)
		}
	}

	if s.d.Metrics != nil {
		s.d.Metrics.Issued.WithLabelValues(surface, source).Inc()
	}
	s.record(ctx, audit.Event{
		Kind:        audit.KindIssued,
		ConsumerKey: s.d.Credentials.Key(),
		UID:         id.UID,
		Email:       id.Email,
		Nonce:       out.Nonce,
		SignedAt:    out.Timestamp,
		Source:      source,
	})
	log.Info("fastpass issued", logger.UID(id.UID), logger.Nonce(out.Nonce))
	return out, nil
}

func (s *service) Verify(ctx context.Context, rawURL string) (*fp.Verification, error) {
	log := logger.From(ctx).With(logger.Op("fastpass.Verify"))

	var opts []fp.VerifyOption
	if s.d.MaxAge > 0 {
		opts = append(opts, fp.WithMaxAge(s.d.MaxAge, s.d.Clock))
	}
	v, err := fp.Verify(rawURL, s.d.Credentials, opts...)
	if err != nil {
		s.countVerification(err)
		log.Info("fastpass rejected", logger.Err(err))
		return nil, err
	}

	want := "://" + s.d.Builder.Endpoint().HostOrDefault() + "/fastpass"
	if !strings.HasSuffix(v.BaseURL, want) {
		err := fmt.Errorf("%w: unexpected endpoint %s", fp.ErrMalformedURL, v.BaseURL)
		s.countVerification(err)
		return nil, err
	}

	if s.d.Replay != nil {
		fresh, err := s.d.Replay.Remember(ctx, replay.Key(s.d.Credentials.Key(), v.Nonce), s.rememberFor(v.Timestamp))
		if err != nil {
			return nil, fmt.Errorf("fastpass: replay store: %w", err)
		}
		if !fresh {
			s.countVerification(ErrNonceReused)
			log.Warn("fastpass nonce reused", logger.Nonce(v.Nonce))
			return nil, ErrNonceReused
		}
	}

	s.countVerification(nil)
	s.record(ctx, audit.Event{
		Kind:        audit.KindVerified,
		ConsumerKey: s.d.Credentials.Key(),
		UID:         v.Claims[fp.ClaimUID],
		Email:       v.Claims[fp.ClaimEmail],
		Nonce:       v.Nonce,
		SignedAt:    v.Timestamp,
		Source:      metrics.SourceAPI,
	})
	return v, nil
}

// rememberFor devuelve cuánto guardar el nonce: hasta que la URL deje de pasar
// el chequeo de MaxAge (timestamps futuros incluidos), nunca menos que ReplayTTL.
func (s *service) rememberFor(signedAt time.Time) time.Duration {
	ttl := s.d.ReplayTTL
	if left := signedAt.Add(s.d.MaxAge).Sub(s.d.Clock.Now()) + time.Second; left > ttl {
		ttl = left
	}
	return ttl
}

// Ping verifica el replay store (si hay).
func (s *service) Ping(ctx context.Context) error {
	if s.d.Replay == nil {
		return nil
	}
	return s.d.Replay.Ping(ctx)
}

// record no falla la operación: un audit caído se loguea y se cuenta.
func (s *service) record(ctx context.Context, ev audit.Event) {
	if s.d.Audit == nil {
		return
	}
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		ev.RequestID = rid
	}
	if err := s.d.Audit.Record(ctx, ev); err != nil {
		logger.From(ctx).Error("audit record failed", logger.Err(err), logger.Nonce(ev.Nonce))
		if s.d.Metrics != nil {
			s.d.Metrics.AuditFailures.Inc()
		}
	}
}

func (s *service) countVerification(err error) {
	if s.d.Metrics == nil {
		return
	}
	result := metrics.ResultValid
	switch {
	case err == nil:
	case errors.Is(err, ErrNonceReused):
		result = metrics.ResultReplayed
	case errors.Is(err, fp.ErrStaleTimestamp):
		result = metrics.ResultStale
	default:
		result = metrics.ResultInvalid
	}
	s.d.Metrics.Verifications.WithLabelValues(result).Inc()
}

type requestIDKey struct{}

// WithRequestID deja el request id disponible para los eventos de audit.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}
