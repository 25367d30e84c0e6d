package handlers

import (
	"net/http"

	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
	"github.com/hongminglow/ledgerdash/internal/views"
)

// AdminHandler serves the admin management screens.
type AdminHandler struct {
	screen
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(sessions *session.Manager, st *store.Store) *AdminHandler {
	return &AdminHandler{screen{sessions: sessions, store: st}}
}

// Register attaches admin routes to the mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	admin := func(fn http.HandlerFunc) http.Handler { return guarded(h.sessions, fn, models.RoleAdmin) }

	mux.Handle("GET /admin/clients", admin(h.listClients))
	mux.Handle("POST /admin/clients", admin(h.createClient))
	mux.Handle("DELETE /admin/clients/{id}", admin(h.deleteClient))

	mux.Handle("GET /admin/branches", admin(h.listBranches))
	mux.Handle("POST /admin/branches", admin(h.createBranch))
	mux.Handle("DELETE /admin/branches/{id}", admin(h.deleteBranch))
	mux.Handle("GET /admin/branches/{id}/staff", admin(h.branchStaff))

	mux.Handle("GET /admin/staff", admin(h.listStaff))
	mux.Handle("GET /admin/staff/unassigned", admin(h.unassignedStaff))
	mux.Handle("POST /admin/staff", admin(h.createStaff))
	mux.Handle("DELETE /admin/staff/{id}", admin(h.deleteStaff))
	mux.Handle("POST /admin/staff/{id}/assign-branches", admin(h.assignBranches))
	mux.Handle("DELETE /admin/staff/{id}/remove-branch/{branchId}", admin(h.removeBranch))

	mux.Handle("GET /admin/settings", admin(h.getSettings))
	mux.Handle("PUT /admin/settings", admin(h.putSettings))
}

func (h *AdminHandler) listClients(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchClients(r.Context()), "clients") {
		return
	}
	respond.JSON(w, http.StatusOK, "", views.FilterClients(h.store.Clients(), r.URL.Query().Get("q")))
}

func (h *AdminHandler) createClient(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusCreated, h.store.CreateClient(r.Context(), req))
}

func (h *AdminHandler) deleteClient(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.DeleteClient(r.Context(), r.PathValue("id")))
}

// listBranches returns the flat list, or the client grouping with
// ?group=client as the assignment screen shows it.
func (h *AdminHandler) listBranches(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchBranches(r.Context()), "branches") {
		return
	}
	q := r.URL.Query()
	if q.Get("group") == "client" {
		respond.JSON(w, http.StatusOK, "", views.GroupBranchesByClient(views.SearchAssignableBranches(h.store.Branches(), q.Get("q"))))
		return
	}
	respond.JSON(w, http.StatusOK, "", views.FilterBranches(h.store.Branches(), q.Get("q")))
}

func (h *AdminHandler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusCreated, h.store.CreateBranch(r.Context(), req))
}

func (h *AdminHandler) deleteBranch(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.DeleteBranch(r.Context(), r.PathValue("id")))
}

func (h *AdminHandler) branchStaff(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.BranchStaff(r.Context(), r.PathValue("id")))
}

func (h *AdminHandler) listStaff(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchStaff(r.Context()), "staff") {
		return
	}
	q := r.URL.Query()
	respond.JSON(w, http.StatusOK, "", views.FilterStaff(h.store.Staff(), q.Get("q"), views.Assignment(q.Get("filter"))))
}

func (h *AdminHandler) unassignedStaff(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.UnassignedStaff(r.Context()))
}

func (h *AdminHandler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusCreated, h.store.CreateStaff(r.Context(), req))
}

func (h *AdminHandler) deleteStaff(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.DeleteStaff(r.Context(), r.PathValue("id")))
}

func (h *AdminHandler) assignBranches(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignBranchesRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusOK, h.store.AssignStaffToBranches(r.Context(), r.PathValue("id"), req.BranchIDs))
}

func (h *AdminHandler) removeBranch(w http.ResponseWriter, r *http.Request) {
	h.result(w, r, http.StatusOK, h.store.RemoveStaffFromBranch(r.Context(), r.PathValue("id"), r.PathValue("branchId")))
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	if h.fetchFailed(w, r, h.store.FetchSettings(r.Context()), "settings") {
		return
	}
	settings, _ := h.store.Settings()
	respond.JSON(w, http.StatusOK, "", settings)
}

func (h *AdminHandler) putSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.result(w, r, http.StatusOK, h.store.UpdateSettings(r.Context(), req))
}
