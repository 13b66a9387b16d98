// Package metrics define las métricas Prometheus del servicio.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels de source/result.
const (
	SourceJWT = "jwt"
	SourceAPI = "api"
	SourceCLI = "cli"

	ResultValid    = "valid"
	ResultInvalid  = "invalid"
	ResultReplayed = "replayed"
	ResultStale    = "stale"
)

type Metrics struct {
	reg      *prometheus.Registry
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInflight  *prometheus.GaugeVec
	Issued        *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	RateLimited   prometheus.Counter
	AuditFailures prometheus.Counter
}

// New registra todo en un registry propio (más go/process collectors).
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg:      reg,
		gatherer: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método",
		}, []string{"method"}),
		Issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fastpass_urls_issued_total",
			Help: "URLs Fastpass firmadas por superficie y origen de identidad",
		}, []string{"surface", "source"}), // surface: url|script
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fastpass_verifications_total",
			Help: "Verificaciones de URLs Fastpass por resultado",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_audit_failures_total",
			Help: "Eventos de auditoría que no se pudieron persistir",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration, m.HTTPInflight,
		m.Issued, m.Verifications, m.RateLimited, m.AuditFailures,
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Registry para tests o collectors extra.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Instrument mide un request. El path se pasa al final porque el patrón de ruta
// sólo se conoce después del routing; debe ser un patrón, no el path crudo.
func (m *Metrics) Instrument(method string) func(pathLabel string, status int) {
	method = strings.ToUpper(method)
	m.HTTPInflight.WithLabelValues(method).Inc()
	start := time.Now()
	return func(pathLabel string, status int) {
		m.HTTPInflight.WithLabelValues(method).Dec()
		if pathLabel == "" {
			pathLabel = "unmatched"
		}
		m.HTTPDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
	}
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
