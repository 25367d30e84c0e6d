package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/ledgerdash/internal/app"
	"github.com/hongminglow/ledgerdash/internal/http/handlers"
	"github.com/hongminglow/ledgerdash/internal/metrics"
	"github.com/hongminglow/ledgerdash/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Routes builds the handler tree for a wired app.
func Routes(a *app.App) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())

	handlers.NewHealthHandler(time.Now(), a.Sessions, a.Store).Register(mux)
	handlers.NewAuthHandler(a.Sessions, a.Store, a.Logger.Named("http")).Register(mux)
	handlers.NewAdminHandler(a.Sessions, a.Store).Register(mux)
	handlers.NewDashboardHandler(a.Sessions, a.Store).Register(mux)
	handlers.NewTransactionHandler(a.Sessions, a.Store).Register(mux)

	return middleware.CORS(a.Config.CORSOrigins, middleware.Logging(a.Logger.Named("http"), metrics.InstrumentHandler(mux)))
}

// New wires up middleware, routes, and returns a ready server.
func New(a *app.App) *Server {
	// Backend calls run inside handlers, so the write timeout has to cover
	// a refetch after a mutation.
	write := 2*a.Config.RequestTimeout + 5*time.Second

	httpServer := &http.Server{
		Addr:              a.Config.HTTPAddress(),
		Handler:           Routes(a),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
