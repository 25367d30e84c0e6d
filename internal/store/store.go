// Package store caches backend entities for the screens. Fetches replace a
// collection wholesale; creates refetch; deleting a transaction patches the
// cache in place. Every mutation returns a Result instead of an error.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/metrics"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
)

// Result is the uniform outcome of a store operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(err error, fallback string) Result {
	return Result{Success: false, Message: apiclient.Message(err, fallback)}
}

// API is the slice of the backend the store uses. *apiclient.Client
// satisfies it.
type API interface {
	Clients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, req dto.CreateClientRequest) error
	DeleteClient(ctx context.Context, id string) error

	Branches(ctx context.Context) ([]models.Branch, error)
	CreateBranch(ctx context.Context, req dto.CreateBranchRequest) error
	DeleteBranch(ctx context.Context, id string) error
	BranchStaff(ctx context.Context, branchID string) ([]models.StaffMember, error)

	Staff(ctx context.Context) ([]models.StaffMember, error)
	UnassignedStaff(ctx context.Context) ([]models.StaffMember, error)
	CreateStaff(ctx context.Context, req dto.CreateStaffRequest) error
	DeleteStaff(ctx context.Context, id string) error
	AssignStaffBranches(ctx context.Context, staffID string, branchIDs []string) error
	RemoveStaffFromBranch(ctx context.Context, staffID, branchID string) error

	Settings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error)

	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (models.Transaction, error)
	Transaction(ctx context.Context, id string) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (dto.DeleteTransactionResult, error)
	Transactions(ctx context.Context, role models.Role, q dto.TransactionQuery) ([]models.Transaction, error)
	StaffBranches(ctx context.Context) ([]models.Branch, error)
	Dashboard(ctx context.Context, role models.Role, branchID string) (models.DashboardSummary, error)
}

var _ API = (*apiclient.Client)(nil)

type collection string

const (
	colClients       collection = "clients"
	colBranches      collection = "branches"
	colStaff         collection = "staff"
	colTransactions  collection = "transactions"
	colStaffBranches collection = "staff_branches"
	colDashboard     collection = "dashboard"
	colSettings      collection = "settings"
)

type txScope struct {
	role  models.Role
	query dto.TransactionQuery
}

type dashScope struct {
	role     models.Role
	branchID string
}

// Store is the entity cache. It is safe for concurrent use.
type Store struct {
	api          API
	logger       *zap.Logger
	fallbackRate decimal.Decimal

	mu       sync.RWMutex
	gen      map[collection]uint64
	inflight int

	clients       []models.Client
	branches      []models.Branch
	staff         []models.StaffMember
	transactions  []models.Transaction
	staffBranches []models.Branch
	dashboard     models.DashboardSummary
	settings      *models.Settings

	lastTx   *txScope
	lastDash *dashScope
}

// New creates an empty store. fallbackRate is the commission percentage used
// by previews until settings have been fetched.
func New(api API, fallbackRate decimal.Decimal, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:          api,
		logger:       logger,
		fallbackRate: fallbackRate,
		gen:          make(map[collection]uint64),
		dashboard:    models.EmptyDashboard(),
	}
}

// Loading reports whether any fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Reset drops every cached collection, e.g. after logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range []collection{colClients, colBranches, colStaff, colTransactions, colStaffBranches, colDashboard, colSettings} {
		s.gen[c]++
	}
	s.clients, s.branches, s.staff, s.transactions, s.staffBranches = nil, nil, nil, nil, nil
	s.dashboard = models.EmptyDashboard()
	s.settings = nil
	s.lastTx, s.lastDash = nil, nil
}

// fetch runs call and hands its result to apply under the write lock, unless
// a later fetch or local mutation of the same collection has happened in the
// meantime. On failure reset runs instead. A superseded response is dropped
// without touching the cache; its error is still returned.
func fetch[T any](ctx context.Context, s *Store, c collection, call func(context.Context) (T, error), apply func(T), reset func()) error {
	s.mu.Lock()
	s.gen[c]++
	stamp := s.gen[c]
	s.inflight++
	s.mu.Unlock()

	value, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.gen[c] != stamp {
		// The cache has moved on; the caller still sees its own failure.
		metrics.RecordStaleResponse(string(c))
		s.logger.Debug("discarding superseded response", zap.String("collection", string(c)), zap.Error(err))
		return err
	}
	if err != nil {
		metrics.RecordFetchFailure(string(c))
		s.logger.Warn("fetch failed", zap.String("collection", string(c)), zap.Error(err))
		reset()
		return err
	}
	apply(value)
	return nil
}

// touch invalidates in-flight fetches of c. Callers hold s.mu.
func (s *Store) touch(c collection) {
	s.gen[c]++
}

// Clients returns the cached clients.
func (s *Store) Clients() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.clients)
}

// Branches returns the cached branches.
func (s *Store) Branches() []models.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.branches)
}

// Staff returns the cached staff members.
func (s *Store) Staff() []models.StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.staff)
}

// Transactions returns the cached ledger page.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

// StaffBranches returns the logged-in staff member's branches.
func (s *Store) StaffBranches() []models.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.staffBranches)
}

// Dashboard returns the cached dashboard summary.
func (s *Store) Dashboard() models.DashboardSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.dashboard
	if out.WalletBalance != nil {
		wb := *out.WalletBalance
		out.WalletBalance = &wb
	}
	return out
}

// Settings returns the cached settings and whether they have been loaded.
func (s *Store) Settings() (models.Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return models.Settings{}, false
	}
	return *s.settings, true
}

// CommissionRate is the percentage used for previews: the server's setting
// when loaded, otherwise the configured fallback.
func (s *Store) CommissionRate() decimal.Decimal {
	if settings, loaded := s.Settings(); loaded {
		return settings.CommissionRate
	}
	return s.fallbackRate
}
