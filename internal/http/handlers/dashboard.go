package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/middleware"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/store"
	"github.com/hongminglow/ledgerdash/internal/views"
)

const dateLayout = "2006-01-02"

// DashboardHandler serves each role's dashboard and transaction history.
type DashboardHandler struct {
	screen
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(sessions *session.Manager, st *store.Store) *DashboardHandler {
	return &DashboardHandler{screen{sessions: sessions, store: st}}
}

// Register attaches dashboard and ledger routes to the mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleStaff, models.RoleClient} {
		base := "GET /" + string(role)
		mux.Handle(base+"/dashboard", guarded(h.sessions, h.dashboard, role))
		mux.Handle(base+"/transactions", guarded(h.sessions, h.transactions, role))
	}
}

// branchScope resolves ?branchId for the session. Staff default to their
// current branch and may not look at unassigned ones; clients are never
// narrowed.
func branchScope(sess *models.Session, r *http.Request) (string, bool) {
	requested := r.URL.Query().Get("branchId")
	switch sess.Role {
	case models.RoleClient:
		return "", true
	case models.RoleStaff:
		if requested == "" {
			return sess.CurrentBranchID, true
		}
		return requested, sess.HasBranch(requested)
	default:
		return requested, true
	}
}

type dashboardView struct {
	Summary  models.DashboardSummary `json:"summary"`
	BranchID string                  `json:"branchId,omitempty"`
}

func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	branchID, allowed := branchScope(sess, r)
	if !allowed {
		respond.Error(w, http.StatusForbidden, "Branch is not assigned to you")
		return
	}
	if h.fetchFailed(w, r, h.store.FetchDashboard(r.Context(), sess.Role, branchID), "dashboard") {
		return
	}
	respond.JSON(w, http.StatusOK, "", dashboardView{Summary: h.store.Dashboard(), BranchID: branchID})
}

type historyView struct {
	Transactions []models.Transaction `json:"transactions"`
	Stats        views.HistoryStats   `json:"stats"`
}

func (h *DashboardHandler) transactions(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	branchID, allowed := branchScope(sess, r)
	if !allowed {
		respond.Error(w, http.StatusForbidden, "Branch is not assigned to you")
		return
	}
	f, err := parseTransactionFilter(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 50
	if sess.Role == models.RoleClient {
		limit = 100
	}
	q := dto.TransactionQuery{BranchID: branchID, Limit: queryInt(r, "limit", limit)}
	if h.fetchFailed(w, r, h.store.FetchTransactions(r.Context(), sess.Role, q), "transactions") {
		return
	}
	txs := views.FilterTransactions(h.store.Transactions(), f)
	respond.JSON(w, http.StatusOK, "", historyView{Transactions: txs, Stats: views.Stats(txs)})
}

type filterError string

// Error returns the message shown to the caller.
func (e filterError) Error() string { return string(e) }

func parseTransactionFilter(r *http.Request) (views.TransactionFilter, error) {
	q := r.URL.Query()
	f := views.TransactionFilter{Query: q.Get("q")}
	if t := models.TransactionType(q.Get("type")); t != "" && t != "all" {
		if !t.Valid() {
			return f, filterError("type must be credit or debit")
		}
		f.Type = t
	}
	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = time.Parse(dateLayout, v); err != nil {
			return f, filterError("from must be a date (YYYY-MM-DD)")
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = time.Parse(dateLayout, v); err != nil {
			return f, filterError("to must be a date (YYYY-MM-DD)")
		}
	}
	return f, nil
}
