// Package http expone el servicio Fastpass.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

// ServerConfig son los timeouts del http.Server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server envuelve http.Server con shutdown ordenado.
type Server struct {
	cfg ServerConfig
	srv *http.Server
}

func NewServer(cfg ServerConfig, handler http.Handler) *Server {
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       2 * cfg.WriteTimeout,
		},
	}
}

// Run sirve en l hasta que ctx se cancela y entonces hace Shutdown.
// l nil escucha en cfg.Addr.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	if l == nil {
		var err error
		l, err = net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return err
		}
	}
	log := logger.Named("http")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.Any("addr", l.Addr().String()))
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// también corre si Serve falló: Shutdown sobre un server caído no hace nada
		<-gctx.Done()
		log.Info("shutdown requested, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
