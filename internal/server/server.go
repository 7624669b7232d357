// Package server wires handlers, middleware and routes, and runs the HTTP
// listener with graceful shutdown.
//
// ROUTES:
//
//	GET  /health          liveness
//	GET  /metrics         prometheus exposition
//	POST /user/register   create identity
//	POST /user/token      password login, returns bearer token
//	GET  /user/profile    caller identity            (bearer)
//	POST /account/        create account             (bearer)
//	GET  /account/        list the caller's accounts (bearer)
//
// The account routes answer with and without the trailing slash.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/handler"
	"github.com/sakif/daily-real/internal/middleware"
	"github.com/sakif/daily-real/internal/observability"
	"github.com/sakif/daily-real/internal/service"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Deps are the services the routes call into.
type Deps struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	Metrics  *observability.Metrics
}

// Server owns the router and the listen address.
type Server struct {
	router *chi.Mux
	addr   string
	logger *slog.Logger
}

// New builds the router. Nothing listens until Run or Serve is called.
func New(addr string, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.Auth == nil || deps.Accounts == nil {
		return nil, errors.New("server: auth and account services are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}

	s := &Server{
		router: chi.NewRouter(),
		addr:   addr,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s, nil
}

// setupRoutes mounts middleware and routes.
//
// Order: request ID first so the logger can read it, then the logger and
// metrics so they see the final status, then Recoverer closest to the
// handlers so a panic still becomes a logged 500.
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(deps.Metrics))
	s.router.Use(chimiddleware.Recoverer)

	users := handler.NewUserHandler(deps.Auth, s.logger)
	accounts := handler.NewAccountHandler(deps.Accounts, s.logger)
	requireBearer := auth.RequireBearer(deps.Auth)

	s.router.Get("/health", handler.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/register", users.HandleRegister)
		r.Post("/token", users.HandleToken)
		r.With(requireBearer).Get("/profile", users.HandleProfile)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(requireBearer)
		for _, path := range []string{"/account", "/account/"} {
			r.Post(path, accounts.HandleCreate)
			r.Get(path, accounts.HandleList)
		}
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then gives
// in-flight requests up to 30 seconds to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
