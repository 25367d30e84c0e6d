package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
)

// HealthHandler returns uptime, session state and whether fetches are in
// flight.
type HealthHandler struct {
	startedAt time.Time
	sessions  *session.Manager
	store     *store.Store
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, sessions *session.Manager, st *store.Store) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, sessions: sessions, store: st}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
		"session": h.sessions.State().String(),
		"loading": h.store.Loading(),
	})
}
