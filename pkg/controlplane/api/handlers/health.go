package handlers

import (
	"context"
	"net/http"
)

// auditStore is the subset of *store.GORMStore the health handler needs.
// Defined narrowly here, rather than imported, so this package only depends
// on the store package through the request handlers that actually use it.
type auditStore interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes for the control
// ingestion service. Readiness additionally checks the audit store
// connection when one is configured; liveness never touches it.
type HealthHandler struct {
	db auditStore
}

// NewHealthHandler returns a HealthHandler. db may be nil if the audit
// store is disabled — the audit log is a side log, never required for
// the core to run.
func NewHealthHandler(db auditStore) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness always reports healthy once the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(nil))
}

// Readiness reports healthy only if the audit store (when configured)
// answers a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusOK, healthyResponse(nil))
		return
	}
	if err := h.db.Healthcheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(nil))
}
