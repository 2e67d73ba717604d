package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"startiq/internal/config"
	"startiq/internal/logger"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	config     config.Server
	log        *slog.Logger
	metrics    *observability.Collector
	validate   *validator.Validate

	insights  services.InsightProvider
	scores    services.StartupScorer
	dealNotes services.DealNoteGenerator
	users     services.UserRegistrar
}

// New creates a new HTTP server instance
func New(db persistence.Database, svc *services.Services, cfg config.Server, metrics *observability.Collector) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		db:        db,
		config:    cfg,
		log:       logger.Get(),
		metrics:   metrics,
		validate:  newValidator(),
		insights:  svc.Insights,
		scores:    svc.Scores,
		dealNotes: svc.DealNotes,
		users:     svc.Users,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.ParseDuration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: config.ParseDuration(cfg.WriteTimeout, 180*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	// Deal notes run three completions in a row, so the default is generous.
	s.router.Use(middleware.Timeout(config.ParseDuration(s.config.RequestTimeout, 170*time.Second)))

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(securityHeaders)
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(noCache)

		r.Post("/analyse-with-ai", s.handleAnalyseStartup)
		r.Post("/analyse-investor", s.handleAnalyseInvestor)
		r.Post("/generate-deal-note", s.handleGenerateDealNote)
		r.Post("/score-startup", s.handleScoreStartup)
		r.Post("/users/register", s.handleRegister)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
