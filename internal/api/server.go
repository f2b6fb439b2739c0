// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/famvault/internal/platform/config"
	"github.com/taibuivan/famvault/internal/platform/constants"
	"github.com/taibuivan/famvault/internal/platform/middleware"
	"github.com/taibuivan/famvault/internal/platform/respond"
	"github.com/taibuivan/famvault/internal/users/account"
	"github.com/taibuivan/famvault/internal/users/auth"
	"github.com/taibuivan/famvault/internal/vault/contact"
	"github.com/taibuivan/famvault/internal/vault/document"
	"github.com/taibuivan/famvault/internal/vault/folder"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, verification, login and password recovery.
	Auth *auth.Handler

	// Account handles the profile, emergency mode and account deletion.
	Account *account.Handler

	// Document handles uploads, listings, downloads and reminders.
	Document *document.Handler

	// Folder handles the flat folder list.
	Folder *folder.Handler

	// Contact handles emergency contacts.
	Contact *contact.Handler
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

Parameters:
  - cfg: Loaded configuration
  - log: Root logger
  - limiter: Per-IP rate limiter; the caller runs its cleanup loop
  - verifier: Resolves session cookies for the protected routes
  - h: Domain handlers
*/
func NewServer(cfg *config.Config, log *slog.Logger, limiter *middleware.RateLimiter, verifier middleware.SessionVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(limiter.Handler)
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg.ExtraOrigins, cfg.IsDevelopment()))
	r.Use(chimw.CleanPath)

	protect := middleware.Protect(h.Auth.RejectSession, middleware.SessionGuard(verifier))

	// # Infrastructure Endpoints
	r.Get("/", landing)
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Vault
	// Everything a signed-in user owns sits behind the session gate.
	r.Group(func(vault chi.Router) {
		vault.Use(protect)

		h.Document.RegisterRoutes(vault)
		h.Account.RegisterRoutes(vault)
		vault.Mount("/folders", h.Folder.Routes())
		vault.Mount("/emergency-contacts", h.Contact.Routes())
	})

	// # Auth Flow
	r.Mount("/", h.Auth.Routes(protect))

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// landing handles GET /.
func landing(writer http.ResponseWriter, _ *http.Request) {
	respond.Page(writer, http.StatusOK, "FamVault: your family's documents and medical records in one place.")
}

// # Server Lifecycle

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
