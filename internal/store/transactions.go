package store

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/validate"
)

// FetchTransactions loads the ledger visible to role. The scope is kept so
// creating a transaction can refetch the same view.
func (s *Store) FetchTransactions(ctx context.Context, role models.Role, q dto.TransactionQuery) error {
	s.mu.Lock()
	s.lastTx = &txScope{role: role, query: q}
	s.mu.Unlock()

	return fetch(ctx, s, colTransactions,
		func(ctx context.Context) ([]models.Transaction, error) { return s.api.Transactions(ctx, role, q) },
		func(v []models.Transaction) { s.transactions = v },
		func() { s.transactions = nil })
}

// FetchDashboard loads the summary for role, narrowed to branchID for admin
// and staff.
func (s *Store) FetchDashboard(ctx context.Context, role models.Role, branchID string) error {
	s.mu.Lock()
	s.lastDash = &dashScope{role: role, branchID: branchID}
	s.mu.Unlock()

	return fetch(ctx, s, colDashboard,
		func(ctx context.Context) (models.DashboardSummary, error) { return s.api.Dashboard(ctx, role, branchID) },
		func(v models.DashboardSummary) { s.dashboard = v },
		func() { s.dashboard = models.EmptyDashboard() })
}

// RefreshDashboard refetches the dashboard with the last scope used. It is
// the polling tick.
func (s *Store) RefreshDashboard(ctx context.Context) error {
	s.mu.RLock()
	scope := s.lastDash
	s.mu.RUnlock()
	if scope == nil {
		return nil
	}
	return s.FetchDashboard(ctx, scope.role, scope.branchID)
}

// FetchStaffBranches loads the branches assigned to the logged-in staff member.
func (s *Store) FetchStaffBranches(ctx context.Context) error {
	return fetch(ctx, s, colStaffBranches, s.api.StaffBranches,
		func(v []models.Branch) { s.staffBranches = v },
		func() { s.staffBranches = nil })
}

// Transaction looks up a single transaction without caching it.
func (s *Store) Transaction(ctx context.Context, id string) Result {
	tx, err := s.api.Transaction(ctx, id)
	if err != nil {
		return fail(err, "Failed to load transaction")
	}
	return ok("", tx)
}

// CreateTransaction records a transaction and refetches the ledger and
// dashboard last shown. Data carries the server's transaction.
func (s *Store) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) Result {
	if err := validate.Struct(req); err != nil {
		return fail(err, "")
	}
	tx, err := s.api.CreateTransaction(ctx, req)
	if err != nil {
		return fail(err, "Failed to create transaction")
	}
	if !tx.Consistent() {
		s.logger.Warn("server transaction amounts disagree",
			zap.String("transaction_id", tx.ID),
			zap.String("type", string(tx.Type)),
			zap.String("amount", tx.Amount.String()),
			zap.String("commission", tx.Commission.String()),
			zap.String("final_amount", tx.FinalAmount.String()))
	}

	s.mu.RLock()
	lastTx, lastDash := s.lastTx, s.lastDash
	s.mu.RUnlock()
	if lastTx != nil {
		_ = s.FetchTransactions(ctx, lastTx.role, lastTx.query)
	}
	if lastDash != nil {
		_ = s.FetchDashboard(ctx, lastDash.role, lastDash.branchID)
	}
	return ok("Transaction created successfully", tx)
}

// DeleteTransaction deletes on the server, then drops the transaction from
// the cache and patches the cached wallet balance if the server echoed one
// and a dashboard has been loaded.
// An id that is not cached is simply not found locally.
func (s *Store) DeleteTransaction(ctx context.Context, id string) Result {
	res, err := s.api.DeleteTransaction(ctx, id)
	if err != nil {
		return fail(err, "Failed to delete transaction")
	}

	s.mu.Lock()
	s.touch(colTransactions)
	s.transactions = slices.DeleteFunc(s.transactions, func(t models.Transaction) bool { return t.ID == id })
	if res.NewBalance != nil && s.lastDash != nil {
		s.touch(colDashboard)
		balance := *res.NewBalance
		s.dashboard.WalletBalance = &balance
	}
	s.mu.Unlock()

	return ok("Transaction deleted successfully", res)
}
