// Package app builds the shared object graph used by both front ends.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/config"
	"github.com/hongminglow/ledgerdash/internal/poller"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/storage"
	"github.com/hongminglow/ledgerdash/internal/storage/file"
	"github.com/hongminglow/ledgerdash/internal/storage/postgres"
	"github.com/hongminglow/ledgerdash/internal/store"
)

// App is the wired client: API gateway, session, entity store and poller.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	API      *apiclient.Client
	Sessions *session.Manager
	Store    *store.Store
	Poller   *poller.Scheduler

	closers []func()

	mu      sync.Mutex
	expired func()
}

// New wires every component and restores any persisted session.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	state, closeState, err := openState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	api := apiclient.New(apiclient.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.RequestTimeout}, logger.Named("api"))
	sessions := session.NewManager(api, state, logger.Named("session"))
	sessions.Bind(api)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		API:      api,
		Sessions: sessions,
		Store:    store.New(api, cfg.DefaultCommissionRate, logger.Named("store")),
		Poller:   poller.New(logger.Named("poller")),
	}
	sessions.SetNavigator(session.NavigatorFunc(a.sessionExpired))
	if closeState != nil {
		a.closers = append(a.closers, closeState)
	}
	a.closers = append(a.closers, a.Poller.Close)

	if sessions.Restore(ctx) {
		logger.Info("resumed session", zap.String("role", string(sessions.Current().Role)))
	}
	return a, nil
}

// OnSessionExpired registers fn to run after the server rejects the session
// and the cache has been dropped.
func (a *App) OnSessionExpired(fn func()) {
	a.mu.Lock()
	a.expired = fn
	a.mu.Unlock()
}

func (a *App) sessionExpired() {
	a.Store.Reset()
	a.mu.Lock()
	fn := a.expired
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Logout ends the session and drops every cached entity.
func (a *App) Logout(ctx context.Context) error {
	a.Store.Reset()
	return a.Sessions.Logout(ctx)
}

// Close releases the poller and state backend.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openState(ctx context.Context, cfg config.Config) (storage.StateStore, func(), error) {
	switch cfg.StateBackend {
	case config.StateBackendPostgres:
		pg, err := postgres.NewStateStore(ctx, cfg.DatabaseURL, cfg.StateProfile)
		if err != nil {
			return nil, nil, fmt.Errorf("init state store: %w", err)
		}
		return pg, pg.Close, nil
	default:
		return file.NewStore(cfg.StateFile, cfg.StateKey), nil, nil
	}
}
