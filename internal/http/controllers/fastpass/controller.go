// Package fastpass contiene el controller de /v1/fastpass.
package fastpass

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	fp "github.com/dropDatabas3/fastpass/internal/fastpass"
	dto "github.com/dropDatabas3/fastpass/internal/http/dto/fastpass"
	httperrors "github.com/dropDatabas3/fastpass/internal/http/errors"
	mw "github.com/dropDatabas3/fastpass/internal/http/middlewares"
	svc "github.com/dropDatabas3/fastpass/internal/http/services/fastpass"
	"github.com/dropDatabas3/fastpass/internal/metrics"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

const maxJSONBody = 64 << 10 // 64KB

// Controller maneja las rutas /v1/fastpass.
type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// GetURL maneja GET /v1/fastpass/url (identidad por Bearer JWT).
func (c *Controller) GetURL(w http.ResponseWriter, r *http.Request) {
	id, ok := mw.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}
	c.issueURL(w, r, id, metrics.SourceJWT)
}

// PostURL maneja POST /v1/fastpass/url (identidad en el body, X-API-Key).
func (c *Controller) PostURL(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueRequest
	if !readJSON(w, r, &req) {
		return
	}
	fields, err := fp.FieldsFromAny(req.Fields)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	id := fp.Identity{
		Email:  strings.TrimSpace(req.Email),
		Name:   strings.TrimSpace(req.Name),
		UID:    strings.TrimSpace(req.UID),
		Fields: fields,
	}
	c.issueURL(w, r, id, metrics.SourceAPI)
}

func (c *Controller) issueURL(w http.ResponseWriter, r *http.Request, id fp.Identity, source string) {
	ctx := svc.WithRequestID(r.Context(), mw.GetRequestID(r.Context()))
	out, err := c.service.Issue(ctx, id, svc.SurfaceURL, source)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.URLResponse{
		URL:       out.URL,
		Nonce:     out.Nonce,
		Timestamp: out.Timestamp.Unix(),
	})
}

// GetScript maneja GET /v1/fastpass/script: devuelve el snippet como text/html.
func (c *Controller) GetScript(w http.ResponseWriter, r *http.Request) {
	id, ok := mw.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}
	ctx := svc.WithRequestID(r.Context(), mw.GetRequestID(r.Context()))
	out, err := c.service.Issue(ctx, id, svc.SurfaceScript, metrics.SourceJWT)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.Script)
}

// PostVerify maneja POST /v1/fastpass/verify.
func (c *Controller) PostVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("url"))
		return
	}

	ctx := svc.WithRequestID(r.Context(), mw.GetRequestID(r.Context()))
	v, err := c.service.Verify(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		if stderrors.Is(err, svc.ErrNonceReused) {
			httperrors.WriteError(w, httperrors.ErrNonceReused)
			return
		}
		if appErr := httperrors.FromError(err); appErr.HTTPStatus >= 500 {
			logger.From(ctx).Error("verify failed", logger.Err(err))
		}
		httperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyResponse{
		Valid:     true,
		UID:       v.Claims[fp.ClaimUID],
		Email:     v.Claims[fp.ClaimEmail],
		Name:      v.Claims[fp.ClaimName],
		Claims:    v.Claims,
		Nonce:     v.Nonce,
		Timestamp: v.Timestamp.Unix(),
	})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrUnsupportedMediaType)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		detail := "json inválido"
		if err == io.EOF {
			detail = "body vacío"
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail(detail))
		return false
	}
	if dec.More() {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail("sobran datos en el body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
