package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/pkg/controlplane/api/handlers"
	"github.com/streamshard/megaflow/pkg/controlplane/store"
	"github.com/streamshard/megaflow/pkg/metrics"
)

// NewRouter creates and configures the chi router for the control
// ingestion service. m may be nil, in which case control admission
// metrics are not recorded.
//
// Routes:
//   - GET  /health                  - Liveness probe
//   - GET  /health/ready            - Readiness probe (pings the audit store)
//   - POST /api/v1/control          - Admit one Control message
//   - GET  /api/v1/control/history  - Paginated read of the audit log
func NewRouter(db *store.GORMStore, sink handlers.ControlSink, m metrics.DataflowMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(db)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	controlHandler := handlers.NewControlHandler(db, sink)
	controlHandler.SetMetrics(m)
	r.Route("/api/v1/control", func(r chi.Router) {
		r.Post("/", controlHandler.Ingest)
		r.Get("/history", controlHandler.History)
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the
// internal structured logger instead of chi's default access log.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("control API request started",
			logger.RequestID(requestID),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.RemoteAddr(r.RemoteAddr),
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logArgs := []any{
			logger.RequestID(requestID),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(ww.Status()),
			logger.Bytes(ww.BytesWritten()),
			logger.DurationMs(float64(time.Since(start).Microseconds()) / 1000.0),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("control API request completed", logArgs...)
		} else {
			logger.Info("control API request completed", logArgs...)
		}
	})
}
