package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gomonte/app"
	"gomonte/internal"
	"gomonte/internal/report"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port           string
	RequestTimeout time.Duration
}

// Server is the HTTP face of the simulation service. It holds no state of
// its own; every request resolves, runs, and returns in one round trip.
type Server struct {
	router   *chi.Mux
	service  *app.SimulationService
	renderer *report.Renderer
	logger   *internal.Logger
	config   Config
}

// NewServer wires the simulation service into a chi router.
func NewServer(service *app.SimulationService, config Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		renderer: report.NewRenderer(),
		logger:   logger,
		config:   config,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.config.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.config.RequestTimeout))
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/simulations", s.handleSimulate)
		r.Post("/simulations/compare", s.handleCompare)
		r.Post("/simulations/converge", s.handleConverge)
		r.Post("/reports", s.handleReport)
		r.Get("/scenarios", s.handleScenarioList)
		r.Post("/scenarios/{name}/run", s.handleScenarioRun)
	})
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.logger.Info("simulation API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
