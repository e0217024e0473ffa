// Package api serves the scoring core over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/irtcat/internal/config"
	"github.com/abhisek/irtcat/internal/metrics"
	"github.com/abhisek/irtcat/internal/scoring"
)

// Server provides HTTP endpoints for the scoring service.
type Server struct {
	echo     *echo.Echo
	svc      scoring.Service
	logger   *zap.Logger
	config   *config.ServerConfig
	gatherer prometheus.Gatherer
	http     *metrics.HTTP
}

// Option configures a Server.
type Option func(*Server)

// WithPrometheus exposes gatherer on GET /metrics and records request
// metrics into m.
func WithPrometheus(gatherer prometheus.Gatherer, m *metrics.HTTP) Option {
	return func(s *Server) {
		s.gatherer = gatherer
		s.http = m
	}
}

// NewServer creates a new HTTP server.
func NewServer(svc scoring.Service, logger *zap.Logger, cfg *config.ServerConfig, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("scoring service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		def := config.Default().Server
		cfg = &def
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		svc:    svc,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(s.requestLogger)
	if s.http != nil {
		e.Use(s.requestMetrics)
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	v1.POST("/estimate", s.handleEstimate)
	v1.POST("/select", s.handleSelect)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Commit the error response so the logged status is the real one.
			c.Error(err)
		}

		s.logger.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return nil
	}
}

func (s *Server) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		endpoint := c.Path()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		done := s.http.Begin(c.Request().Method, endpoint)
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		done(c.Response().Status)
		return nil
	}
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
