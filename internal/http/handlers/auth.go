package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
	"github.com/hongminglow/ledgerdash/internal/validate"
)

// AuthHandler owns login, logout and the active session.
type AuthHandler struct {
	sessions *session.Manager
	store    *store.Store
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(sessions *session.Manager, st *store.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, store: st, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /login", h.handleLoginScreen)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /session", h.handleSession)
	mux.Handle("POST /session/branch", guarded(h.sessions, h.handleSwitchBranch))
}

type sessionView struct {
	State string       `json:"state"`
	User  *models.User `json:"user,omitempty"`
	Home  string       `json:"home"`
}

func (h *AuthHandler) view() sessionView {
	v := sessionView{State: h.sessions.State().String(), Home: models.Role("").HomePath()}
	if sess := h.sessions.Current(); sess != nil {
		v.User = &sess.User
		v.Home = sess.Role.HomePath()
	}
	return v
}

func (h *AuthHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.view().Home, http.StatusFound)
}

func (h *AuthHandler) handleLoginScreen(w http.ResponseWriter, r *http.Request) {
	if sess := h.sessions.Current(); sess != nil {
		http.Redirect(w, r, sess.Role.HomePath(), http.StatusFound)
		return
	}
	respond.JSON(w, http.StatusOK, "Please log in", h.view())
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	_, err := h.sessions.Login(r.Context(), req.Phone, req.Password)
	var verr *validate.ValidationError
	var authErr *session.AuthError
	switch {
	case err == nil:
		h.store.Reset()
		respond.JSON(w, http.StatusOK, "Login successful", h.view())
	case errors.As(err, &verr):
		respond.ErrorData(w, http.StatusBadRequest, verr.Error(), verr.Fields)
	case errors.As(err, &authErr):
		respond.Error(w, http.StatusUnauthorized, authErr.Message)
	default:
		h.logger.Error("login", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Login failed")
	}
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.Warn("logout", zap.Error(err))
	}
	respond.JSON(w, http.StatusOK, "Logged out", h.view())
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "", h.view())
}

func (h *AuthHandler) handleSwitchBranch(w http.ResponseWriter, r *http.Request) {
	var req dto.SwitchBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !h.sessions.SwitchBranch(r.Context(), req.BranchID) {
		respond.Error(w, http.StatusForbidden, "Branch is not assigned to you")
		return
	}
	respond.JSON(w, http.StatusOK, "Branch switched", h.view())
}
