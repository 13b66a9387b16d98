// Package audit registra cada URL Fastpass emitida o verificada.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	"go.uber.org/zap"
)

// Kinds de evento.
const (
	KindIssued   = "issued"
	KindVerified = "verified"
)

// Event es un registro de auditoría. Nunca incluye el secret ni la firma.
type Event struct {
	Kind        string
	ConsumerKey string
	UID         string
	Email       string
	Nonce       string
	SignedAt    time.Time
	// Source: "jwt" | "api" | "cli"
	Source    string
	RequestID string
}

// Sink persiste eventos.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// LogSink escribe eventos con zap. El email se enmascara.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Record(ctx context.Context, ev Event) error {
	l := s.Logger
	if l == nil {
		l = logger.From(ctx)
	}
	l.Info("fastpass audit",
		zap.String("event", ev.Kind),
		logger.ConsumerKey(ev.ConsumerKey),
		logger.UID(ev.UID),
		logger.Email(ev.Email),
		logger.Nonce(ev.Nonce),
		logger.Source(ev.Source),
		logger.RequestID(ev.RequestID),
		zap.Time("signed_at", ev.SignedAt),
	)
	return nil
}

// Multi reparte el evento a todos los sinks y junta los errores.
type Multi []Sink

func (m Multi) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
