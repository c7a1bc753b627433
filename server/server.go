// Package server exposes the watch-history store over HTTP for `deepfocus serve`.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/user/deepfocus-cli/config"
	"github.com/user/deepfocus-cli/progress"
)

// Version is reported by /api/health.
var Version = "dev"

type Server struct {
	cfg        config.ServerConfig
	logger     zerolog.Logger
	store      progress.Store
	limiter    *RateLimiter
	router     *chi.Mux
	httpServer *http.Server
}

func New(cfg config.ServerConfig, store progress.Store, logger zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: NewRateLimiter(cfg.RateLimit, cfg.RateBurst, nil),
		router:  chi.NewRouter(),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.cfg.JWTSecret))
			r.Use(s.limiter.Middleware)

			r.Get("/watch-history", s.listHistory)
			r.Get("/watch-history/{videoId}", s.getHistory)
			r.Post("/watch-history", s.saveHistory)
			r.Delete("/watch-history", s.deleteHistory)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
