package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/pkg/controlplane/api/handlers"
	"github.com/streamshard/megaflow/pkg/controlplane/store"
	"github.com/streamshard/megaflow/pkg/metrics"
)

// Server is the control ingestion HTTP server: health probes plus
// the POST /api/v1/control and GET /api/v1/control/history endpoints.
//
// The server supports graceful shutdown with a fixed 5s timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new control ingestion HTTP server backed by the audit
// store db, forwarding admitted messages to sink. db must be non-nil and
// already connected — the ingestion handler requires it for sequence and
// idempotency checks. m may be nil, in which case control admission metrics
// are not recorded.
func NewServer(config APIConfig, db *store.GORMStore, sink handlers.ControlSink, m metrics.DataflowMetrics) (*Server, error) {
	config.applyDefaults()

	router := NewRouter(db, sink, m)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}, nil
}

// Start starts the HTTP server and blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("control ingestion server listening", logger.Port(s.config.Port))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("control ingestion server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("control ingestion server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("control ingestion server shutdown error: %w", err)
			logger.Error("control ingestion server shutdown error", "error", err)
		} else {
			logger.Info("control ingestion server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
