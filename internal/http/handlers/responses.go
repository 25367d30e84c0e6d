package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/middleware"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// screen is embedded by every handler that serves store-backed screens.
type screen struct {
	sessions *session.Manager
	store    *store.Store
}

// expired redirects to login when the backend rejected the session during
// the request.
func (s screen) expired(w http.ResponseWriter, r *http.Request) bool {
	if s.sessions.Current() != nil {
		return false
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
	return true
}

// result turns a store Result into a response. Failures are reported as 400
// since the store only fails on rejected input or a backend refusal.
func (s screen) result(w http.ResponseWriter, r *http.Request, successStatus int, res store.Result) {
	if res.Success {
		respond.JSON(w, successStatus, res.Message, res.Data)
		return
	}
	if s.expired(w, r) {
		return
	}
	respond.Error(w, http.StatusBadRequest, res.Message)
}

// fetchFailed reports a failed fetch; the cached collection has already
// been reset.
func (s screen) fetchFailed(w http.ResponseWriter, r *http.Request, err error, what string) bool {
	if err == nil {
		return false
	}
	if !s.expired(w, r) {
		respond.Error(w, http.StatusBadGateway, "Failed to load "+what)
	}
	return true
}

// guarded wraps fn with the role guard.
func guarded(sessions *session.Manager, fn http.HandlerFunc, roles ...models.Role) http.Handler {
	return middleware.RequireRole(sessions, roles, fn)
}

func queryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && n > 0 {
		return n
	}
	return def
}

// respondJSON writes payload without the envelope, for probes.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
