// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

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

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/config"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/middleware"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/cart"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/checkout"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/wishlist"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/account"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/guard"
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
	// Liveness is the /health handler. Always 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 when Postgres and Redis answer.
	Readiness http.HandlerFunc

	// Auth handles sign-up, sign-in, sign-out, refresh and confirmation.
	Auth *auth.Handler

	// Catalog serves products, categories and the seller dashboard.
	Catalog *catalog.Handler

	// Cart and Wishlist act on the state of the requesting device.
	Cart     *cart.Handler
	Wishlist *wishlist.Handler

	// Checkout places orders and lists them on the account page.
	Checkout *checkout.Handler

	// Account serves the settings tab: profile name and sessions.
	Account *account.Handler
}

// Sessions carries the per-device session plumbing.
type Sessions struct {
	// Verifier checks bearer tokens for the claims middleware.
	Verifier middleware.TokenVerifier

	// Restore brings the device's session mirror in line with its token.
	Restore func(http.Handler) http.Handler

	// Guard gates routes on the mirrored user and role.
	Guard *guard.Guard
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds background work of the middleware.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, sessions Sessions, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Device(cfg.CookieSecure))
		api.Use(middleware.Notices)
		api.Use(middleware.Authenticate(sessions.Verifier))
		api.Use(sessions.Restore)

		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/products", h.Catalog.Routes())
		api.Mount("/categories", h.Catalog.CategoryRoutes())
		api.Mount("/cart", h.Cart.Routes())
		api.Mount("/wishlist", h.Wishlist.Routes())

		api.Group(func(buyer chi.Router) {
			buyer.Use(sessions.Guard.Require(guard.AnyRole))
			buyer.Mount("/checkout", h.Checkout.Routes())
			buyer.Route("/account", func(settings chi.Router) {
				settings.Mount("/", h.Account.Routes())
				settings.Mount("/orders", h.Checkout.OrderRoutes())
			})
		})

		api.Group(func(seller chi.Router) {
			seller.Use(sessions.Guard.Require(sec.RoleSeller))
			seller.Mount("/dashboard", h.Catalog.DashboardRoutes())
		})
	})

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

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
