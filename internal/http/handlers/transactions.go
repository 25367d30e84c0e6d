package handlers

import (
	"net/http"

	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
	"github.com/hongminglow/ledgerdash/internal/validate"
	"github.com/hongminglow/ledgerdash/internal/views"
)

// TransactionHandler records, inspects and deletes transactions.
type TransactionHandler struct {
	screen
}

// NewTransactionHandler constructs the handler.
func NewTransactionHandler(sessions *session.Manager, st *store.Store) *TransactionHandler {
	return &TransactionHandler{screen{sessions: sessions, store: st}}
}

// Register attaches transaction routes to the mux.
func (h *TransactionHandler) Register(mux *http.ServeMux) {
	s := h.sessions
	mux.Handle("POST /transactions", guarded(s, h.create, models.RoleAdmin, models.RoleStaff))
	mux.Handle("DELETE /transactions/{id}", guarded(s, h.delete, models.RoleAdmin, models.RoleStaff))
	mux.Handle("GET /transactions/{id}", guarded(s, h.get))
	mux.Handle("POST /transactions/preview", guarded(s, h.preview))
	mux.Handle("GET /staff/branches", guarded(s, h.staffBranches, models.RoleStaff))
	mux.Handle("GET /staff/transactions/draft", guarded(s, h.draft, models.RoleStaff))
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusCreated, h.store.CreateTransaction(r.Context(), req))
}

func (h *TransactionHandler) delete(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.DeleteTransaction(r.Context(), r.PathValue("id")))
}

func (h *TransactionHandler) get(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.Transaction(r.Context(), r.PathValue("id")))
}

// preview estimates commission with the server's rate when settings have
// been loaded, else the configured default.
func (h *TransactionHandler) preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, "", views.CommissionPreview(req.Amount, req.Type, h.store.CommissionRate()))
}

func (h *TransactionHandler) staffBranches(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchStaffBranches(r.Context()), "branches") {
		return
	}
	respond.JSON(w, http.StatusOK, "", h.store.StaffBranches())
}

// draft prepares the new-transaction form: the staff member's branches with
// the first one and its client preselected.
func (h *TransactionHandler) draft(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchStaffBranches(r.Context()), "branches") {
		return
	}
	respond.JSON(w, http.StatusOK, "", views.NewTransactionDraft(h.store.StaffBranches()))
}
