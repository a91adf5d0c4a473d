// Package server exposes a world's state over HTTP for inspection: entity
// dumps, resources, schedules, WQL queries and a health probe. It is a
// read-only surface; nothing here mutates the world.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/types"
)

const (
	defaultPort     = "4040"
	shutdownTimeout = 5 * time.Second
)

// Provider is the slice of the app the handlers read from. Implementations
// must be safe to call while frames are running.
type Provider interface {
	IsFrameLoopRunning() bool
	DebugState(componentFilter filter.ComponentFilter) (types.DebugState, error)
	DebugResources() ([]types.DebugResourceElement, error)
	GetRegisteredSchedules() []types.ScheduleInfo
	ParseFilter(query string) (filter.ComponentFilter, error)
}

type Server struct {
	app      *fiber.App
	provider Provider

	port     string
	withCORS bool
}

// New returns an HTTP server with handlers for every inspection endpoint.
func New(provider Provider, opts ...Option) (*Server, error) {
	if provider == nil {
		return nil, eris.New("server requires a non-nil provider")
	}

	app := fiber.New(fiber.Config{
		Network:               "tcp", // Enable server listening on both ipv4 & ipv6 (default: ipv4 only)
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})

	s := &Server{
		app:      app,
		provider: provider,
		port:     defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.withCORS {
		app.Use(cors.New())
	}
	s.setupRoutes()

	return s, nil
}

// Serve serves the application, blocking the calling thread.
// Call this in a new go routine to prevent blocking.
func (s *Server) Serve() error {
	log.Info().Msgf("Starting HTTP server at port %s", s.port)
	return eris.Wrap(s.app.Listen(":"+s.port), "")
}

// Shutdown gracefully shuts down the server, letting in-flight requests
// finish.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return eris.Wrap(err, "error shutting down server")
	}
	log.Info().Msg("Successfully shut down server")
	return nil
}

func (s *Server) setupRoutes() {
	// Route: /health
	s.app.Get("/health", GetHealth(s.provider))

	// Route: /debug/...
	debug := s.app.Group("/debug")
	debug.Post("/state", GetDebugState(s.provider))
	debug.Post("/resources", GetDebugResources(s.provider))
	debug.Get("/schedules", GetSchedules(s.provider))

	// Route: /wql
	s.app.Post("/wql", PostWQL(s.provider))
}
