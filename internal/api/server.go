// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires the HTTP router, middleware chain and domain handlers into a
runnable [http.Server].

Architecture:

  - This package is the composition root of the HTTP transport (chi router).
  - Domain packages expose chi sub-routers; this package decides where they mount
    and which of them need a bearer token.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/krishimitra/internal/advisory"
	"github.com/taibuivan/krishimitra/internal/auth"
	"github.com/taibuivan/krishimitra/internal/platform/config"
	"github.com/taibuivan/krishimitra/internal/platform/constants"
	"github.com/taibuivan/krishimitra/internal/platform/middleware"
	"github.com/taibuivan/krishimitra/internal/platform/respond"
)

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups the handler sets mounted by [NewServer].
type Handlers struct {
	// Liveness answers /health and never touches dependencies.
	Liveness http.HandlerFunc

	// Readiness answers /ready after checking storage backends.
	Readiness http.HandlerFunc

	Auth     *auth.Handler
	Advisory *advisory.Handler
}

const welcomeText = "Welcome to the Krishi Mitra API"

// NewServer constructs the router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins, cfg.IsDevelopment() && len(cfg.AllowedOrigins) == 0))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Get("/", welcome)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Get("/welcome", apiWelcome)

		// Bearer token required. Public routes never look at the header.
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticate(verifier), middleware.RequireAuth)
			protected.Post("/suggest-crops", h.Advisory.SuggestCrops)
			protected.Get("/me", h.Auth.Me)
		})

		api.Mount("/", h.Auth.Routes())
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

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until it is closed.
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

// # Welcome Endpoints

func welcome(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = writer.Write([]byte(welcomeText))
}

func apiWelcome(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]any{
		"id":      1,
		"message": "Welcome to Krishi Mitra! Data loaded from the backend.",
	})
}
