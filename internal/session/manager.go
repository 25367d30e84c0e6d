// Package session owns the logged-in user: login, logout, restoring the
// persisted session on start and switching the active branch.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/auth"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/storage"
	"github.com/hongminglow/ledgerdash/internal/validate"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Authenticator performs the login call. *apiclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginData, error)
}

// Navigator is told to show the login screen after the server rejects the
// session.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ToLogin calls f.
func (f NavigatorFunc) ToLogin() { f() }

// Manager holds the single active session.
type Manager struct {
	api    Authenticator
	store  storage.StateStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	state   State
	session *models.Session
	nav     Navigator
}

// NewManager creates a manager in the Unauthenticated state. Call Restore to
// pick up a persisted session.
func NewManager(api Authenticator, store storage.StateStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		api:    api,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Bind makes the manager the client's token source and 401 handler.
func (m *Manager) Bind(client *apiclient.Client) {
	client.SetTokenSource(m)
	client.OnUnauthorized(m.expire)
}

// SetNavigator installs the handler for forced navigation to login.
func (m *Manager) SetNavigator(nav Navigator) {
	m.mu.Lock()
	m.nav = nav
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.session)
}

// Authorize returns the session when its role is one of roles. With no roles
// any logged-in user passes.
func (m *Manager) Authorize(roles ...models.Role) (*models.Session, error) {
	sess := m.Current()
	if sess == nil {
		return nil, ErrLoginRequired
	}
	if len(roles) > 0 && !slices.Contains(roles, sess.Role) {
		return nil, ErrLoginRequired
	}
	return sess, nil
}

// Restore loads the persisted session. Anything unusable (a missing half,
// a user record that does not decode, an expired token) is cleared so no
// partial session survives. It reports whether a session was restored.
func (m *Manager) Restore(ctx context.Context) bool {
	persisted, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		m.logger.Warn("persisted session unreadable; clearing", zap.Error(err))
		m.clearPersisted(ctx)
		return false
	}

	sess, err := decodePersisted(persisted)
	if err == nil && auth.Expired(sess.Token, m.now()) {
		err = errors.New("token expired")
	}
	if err != nil {
		m.logger.Info("discarding persisted session", zap.Error(err))
		m.clearPersisted(ctx)
		return false
	}

	repaired := false
	if !sess.HasBranch(sess.CurrentBranchID) && sess.CurrentBranchID != sess.DefaultBranch() {
		sess.CurrentBranchID = sess.DefaultBranch()
		repaired = true
	}

	m.mu.Lock()
	m.session = sess
	m.state = Authenticated
	m.mu.Unlock()

	if repaired {
		if err := m.persist(ctx, sess); err != nil {
			m.logger.Warn("persist repaired branch", zap.Error(err))
		}
	}
	m.logger.Info("session restored", zap.String("user_id", sess.ID), zap.String("role", string(sess.Role)))
	return true
}

// Login authenticates against the backend and persists the new session. The
// current branch defaults to the first assigned branch.
func (m *Manager) Login(ctx context.Context, phone, password string) (*models.Session, error) {
	req := dto.LoginRequest{Phone: validate.NormalizePhone(phone), Password: password}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state == Authenticating {
		m.mu.Unlock()
		return nil, &AuthError{Message: "Login already in progress"}
	}
	prevState, prevSession := m.state, m.session
	m.state = Authenticating
	m.mu.Unlock()

	data, err := m.api.Login(ctx, req)
	if err == nil && data.Token == "" {
		err = errors.New("login response carried no token")
	}
	if err != nil {
		// A failed attempt leaves any existing session in place.
		m.mu.Lock()
		m.state, m.session = prevState, prevSession
		m.mu.Unlock()
		m.logger.Info("login failed", zap.String("phone", req.Phone), zap.Error(err))
		return nil, &AuthError{Message: apiclient.Message(err, "Login failed"), Err: err}
	}

	sess := &models.Session{User: data.User(), Token: data.Token}
	if err := m.persist(ctx, sess); err != nil {
		// The in-memory session still works; it just will not survive a restart.
		m.logger.Warn("persist session", zap.Error(err))
	}

	m.mu.Lock()
	m.session = sess
	m.state = Authenticated
	m.mu.Unlock()

	m.logger.Info("logged in", zap.String("user_id", sess.ID), zap.String("role", string(sess.Role)), zap.Int("branches", len(sess.BranchIDs)))
	return cloneSession(sess), nil
}

// Logout clears the in-memory and persisted session. Calling it while logged
// out is harmless.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.state = Unauthenticated
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// SwitchBranch makes branchID current when it is assigned to the user and
// re-persists the session. Unassigned ids are ignored.
func (m *Manager) SwitchBranch(ctx context.Context, branchID string) bool {
	m.mu.Lock()
	if m.session == nil || !m.session.HasBranch(branchID) {
		m.mu.Unlock()
		m.logger.Debug("branch switch rejected", zap.String("branch_id", branchID))
		return false
	}
	m.session.CurrentBranchID = branchID
	snapshot := cloneSession(m.session)
	m.mu.Unlock()

	if err := m.persist(ctx, snapshot); err != nil {
		m.logger.Warn("persist branch switch", zap.Error(err))
	}
	return true
}

// expire handles a 401 on an authenticated call.
func (m *Manager) expire() {
	m.mu.Lock()
	had := m.session != nil
	m.session = nil
	m.state = Unauthenticated
	nav := m.nav
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.clearPersisted(ctx)

	if had {
		m.logger.Info("session expired; redirecting to login")
	}
	if nav != nil {
		nav.ToLogin()
	}
}

func (m *Manager) persist(ctx context.Context, sess *models.Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return m.store.Save(ctx, storage.State{Token: sess.Token, User: user})
}

func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear persisted session", zap.Error(err))
	}
}

func decodePersisted(p storage.State) (*models.Session, error) {
	if p.Token == "" || len(p.User) == 0 {
		return nil, errors.New("incomplete persisted session")
	}
	var user models.User
	if err := json.Unmarshal(p.User, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" || !user.Role.Valid() {
		return nil, errors.New("persisted user missing id or role")
	}
	return &models.Session{User: user, Token: p.Token}, nil
}

func cloneSession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	out := *s
	out.BranchIDs = slices.Clone(s.BranchIDs)
	return &out
}
