// Package server provides the HTTP server and routing for the risk server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	holdingshandlers "github.com/rainmaker/riskd/internal/modules/holdings/handlers"
	priceshandlers "github.com/rainmaker/riskd/internal/modules/prices/handlers"
	profilehandlers "github.com/rainmaker/riskd/internal/modules/profile/handlers"
	riskhandlers "github.com/rainmaker/riskd/internal/modules/risk/handlers"
	snapshothandlers "github.com/rainmaker/riskd/internal/modules/snapshots/handlers"
)

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	Port             int
	DevMode          bool
	ProfileHandlers  *profilehandlers.Handler
	HoldingsHandlers *holdingshandlers.Handler
	PriceHandlers    *priceshandlers.Handler
	RiskHandlers     *riskhandlers.Handler
	SnapshotHandlers *snapshothandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		systemHandlers: NewSystemHandlers(cfg.Log),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger(s.log))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Route("/api", func(r chi.Router) {
		s.systemHandlers.RegisterRoutes(r)
		if cfg.ProfileHandlers != nil {
			cfg.ProfileHandlers.RegisterRoutes(r)
		}
		if cfg.HoldingsHandlers != nil {
			cfg.HoldingsHandlers.RegisterRoutes(r)
		}
		if cfg.PriceHandlers != nil {
			cfg.PriceHandlers.RegisterRoutes(r)
		}
		if cfg.RiskHandlers != nil {
			cfg.RiskHandlers.RegisterRoutes(r)
		}
		if cfg.SnapshotHandlers != nil {
			cfg.SnapshotHandlers.RegisterRoutes(r)
		}
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Router returns the chi router (used in tests)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// requestLogger logs each request with method, path, status and duration
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}
