// Package server exposes the research pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/agent/core"
	"github.com/orbiterhq/deepdive/internal/agent/telemetry"
)

// Runner executes one research query end to end.
type Runner interface {
	Run(ctx context.Context, query string) (*core.WorkflowResult, error)
}

// Server wires the HTTP surface around a workflow runner.
type Server struct {
	echo     *echo.Echo
	runner   Runner
	cfg      config.ServerConfig
	log      *log.Logger
	registry http.Handler
}

// New builds the server. tel may be nil; /metrics then serves the default
// registry.
func New(cfg config.ServerConfig, runner Runner, tel *telemetry.Telemetry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	metrics := promhttp.Handler()
	if tel != nil && tel.Registry() != nil {
		metrics = promhttp.HandlerFor(tel.Registry(), promhttp.HandlerOpts{})
	}

	s := &Server{echo: e, runner: runner, cfg: cfg, log: logger, registry: metrics}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(metrics))
	e.POST("/api/research", s.handleResearch)

	return s
}

type researchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleResearch(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	ctx := c.Request().Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := s.runner.Run(ctx, req.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("research failed: %v", err))
	}
	return c.JSON(http.StatusOK, result)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on the configured address.
func (s *Server) Start() error {
	s.log.Printf("listening on %s", s.cfg.Address)
	return s.echo.Start(s.cfg.Address)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
