// Package health contiene el controller de /readyz.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/fastpass/internal/http/errors"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

// Pinger es cualquier dependencia que se pueda chequear.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	checks  map[string]Pinger
	version string
}

func NewController(version string, checks map[string]Pinger) *Controller {
	return &Controller{checks: checks, version: version}
}

type readyResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Ready maneja GET /readyz: 200 si todas las dependencias responden, 503 si no.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readyResponse{Status: "ok", Version: c.version, Checks: map[string]string{}}
	for name, p := range c.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Status = "degraded"
			resp.Checks[name] = "error"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("dependencies not ready"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
