package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mehmetcc/flightdesk/internal/config"
	"go.uber.org/zap"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer      *http.Server
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

func New(cfg *config.AppConfig, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort("", cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// SetHandler installs the root handler; it must be called before Run.
func (s *Server) SetHandler(h http.Handler) {
	s.httpServer.Handler = h
}

func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// Run serves until ctx is cancelled, then drains open connections for at most
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)
	s.logger.Info("shutting down http server", zap.Duration("timeout", s.shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
