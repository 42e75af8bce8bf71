// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides which store backs the API,
// which routes need a bearer token, and how the process shuts down.
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and a logger, then:
//
//	Server.New() opens:   repository.Store (SQLite or Postgres, by DATABASE_URL)
//	and builds:           PasswordService, TokenService → Resolver
//	                      AuthService, ItineraryService and one service
//	                      per trip detail (destinations, expenses,
//	                      transports, collaborators)
//	                      a handler for each service, plus HealthHandler
//
// Everything is constructed here (the "composition root"); no other package
// builds its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/config"
	"github.com/sakif/hodeway/internal/handler"
	"github.com/sakif/hodeway/internal/middleware"
	"github.com/sakif/hodeway/internal/repository"
	pgRepo "github.com/sakif/hodeway/internal/repository/postgres"
	sqliteRepo "github.com/sakif/hodeway/internal/repository/sqlite"
	"github.com/sakif/hodeway/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. Start() closes it after the HTTP server has
// drained, so in-flight requests never see a closed connection pool.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the store named by cfg.DatabaseURL and wires every dependency.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := newWithStore(cfg, store, logger)
	if err != nil {
		store.Close() // Clean up the store if wiring fails
		return nil, err
	}
	return s, nil
}

// openStore picks the backend from the URL scheme.
//
//	postgres://…, postgresql://…  → pgx pool
//	sqlite://path, path, :memory: → embedded SQLite
func openStore(ctx context.Context, dsn string) (repository.Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return pgRepo.New(ctx, dsn)
	}
	return sqliteRepo.New(ctx, dsn)
}

// newWithStore builds a Server around an already-open store.
// Tests use it with an in-memory SQLite store.
func newWithStore(cfg config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE (prefix = API_V1_STR, default /api/v1):
// GET    /                              → welcome message
// GET    /health-check                  → database ping
// POST   {prefix}/auth/register         → create account, returns token
// POST   {prefix}/auth/login            → form login, returns token
// GET    {prefix}/auth/me               → current user          [auth]
// GET    {prefix}/itineraries           → list own itineraries  [auth]
// POST   {prefix}/itineraries           → create itinerary      [auth]
// GET    {prefix}/itineraries/{id}      → get itinerary         [auth]
// PUT    {prefix}/itineraries/{id}      → replace itinerary     [auth]
// DELETE {prefix}/itineraries/{id}      → delete itinerary      [auth]
//
// Trip details live under {prefix}/itineraries/{id} and only answer the
// itinerary's owner:
//
//	/destinations, /expenses, /transports   GET list, POST create
//	  /{destinationID|expenseID|transportID} GET, PUT, DELETE
//	/collaborators                          GET list, POST add by email
//	  /{userID}                             DELETE
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: tags the request so Logger can print the ID
// 2. RealIP: trusts X-Forwarded-For from the proxy in front of us
// 3. Logger: sits outside Recoverer so a recovered panic is logged as a 500
// 4. Recoverer: turns a panic into a 500 instead of killing the process
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Auth core ===
	passwords, err := auth.NewPasswordService(s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}
	tokens, err := auth.NewTokenService(s.config.SecretKey, s.config.Algorithm, s.config.TokenTTL())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	resolver := auth.NewResolver(tokens, s.store.Users())
	requireAuth := auth.RequireAuth(resolver, s.logger)

	// === Services and handlers ===
	// The handlers never touch the store directly and the services never
	// touch HTTP.
	authService := service.NewAuthService(s.store.Users(), tokens, passwords, s.logger)
	itineraryService := service.NewItineraryService(s.store.Itineraries(), s.logger)
	destinationService := service.NewDestinationService(s.store.Itineraries(), s.store.Destinations(), s.logger)
	expenseService := service.NewExpenseService(s.store.Itineraries(), s.store.Expenses(), s.store.Destinations(), s.logger)
	transportService := service.NewTransportService(s.store.Itineraries(), s.store.Transports(), s.logger)
	collaboratorService := service.NewCollaboratorService(s.store.Itineraries(), s.store.Collaborators(), s.store.Users(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	itineraryHandler := handler.NewItineraryHandler(itineraryService, s.logger)
	destinationHandler := handler.NewDestinationHandler(destinationService, s.logger)
	expenseHandler := handler.NewExpenseHandler(expenseService, s.logger)
	transportHandler := handler.NewTransportHandler(transportService, s.logger)
	collaboratorHandler := handler.NewCollaboratorHandler(collaboratorService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	// === Public routes ===
	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/health-check", healthHandler.HandleHealthCheck)

	// === API routes ===
	s.router.Route(s.config.APIV1Str, func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Protected routes: RequireAuth resolves the bearer token to a user
		// or answers 401 before the handler runs.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authHandler.HandleMe)

			r.Route("/itineraries", func(r chi.Router) {
				r.Get("/", itineraryHandler.HandleList)
				r.Post("/", itineraryHandler.HandleCreate)
				r.Get("/{id}", itineraryHandler.HandleGet)
				r.Put("/{id}", itineraryHandler.HandleUpdate)
				r.Delete("/{id}", itineraryHandler.HandleDelete)

				r.Route("/{id}/destinations", func(r chi.Router) {
					r.Get("/", destinationHandler.HandleList)
					r.Post("/", destinationHandler.HandleCreate)
					r.Get("/{destinationID}", destinationHandler.HandleGet)
					r.Put("/{destinationID}", destinationHandler.HandleUpdate)
					r.Delete("/{destinationID}", destinationHandler.HandleDelete)
				})
				r.Route("/{id}/expenses", func(r chi.Router) {
					r.Get("/", expenseHandler.HandleList)
					r.Post("/", expenseHandler.HandleCreate)
					r.Get("/{expenseID}", expenseHandler.HandleGet)
					r.Put("/{expenseID}", expenseHandler.HandleUpdate)
					r.Delete("/{expenseID}", expenseHandler.HandleDelete)
				})
				r.Route("/{id}/transports", func(r chi.Router) {
					r.Get("/", transportHandler.HandleList)
					r.Post("/", transportHandler.HandleCreate)
					r.Get("/{transportID}", transportHandler.HandleGet)
					r.Put("/{transportID}", transportHandler.HandleUpdate)
					r.Delete("/{transportID}", transportHandler.HandleDelete)
				})
				r.Route("/{id}/collaborators", func(r chi.Router) {
					r.Get("/", collaboratorHandler.HandleList)
					r.Post("/", collaboratorHandler.HandleAdd)
					r.Delete("/{userID}", collaboratorHandler.HandleRemove)
				})
			})
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (flushes the SQLite WAL / releases pooled Postgres connections)
func (s *Server) Start() error {
	// Runs AFTER everything else in this function finishes.
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("api", s.config.APIV1Str),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
