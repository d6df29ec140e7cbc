// Package server exposes the pipeline over HTTP for health checks,
// metrics scraping and direct summarization requests.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/pipeline"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/telemetry"
)

type Server struct {
	echo    *echo.Echo
	orch    *pipeline.Orchestrator
	metrics *telemetry.Metrics
	logger  *log.Logger
}

func New(orch *pipeline.Orchestrator, metrics *telemetry.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
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

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	s := &Server{echo: e, orch: orch, metrics: metrics, logger: logger}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.POST("/api/summarize", s.handleSummarize)

	return s
}

type summarizeRequest struct {
	Message string `json:"message"`
}

type summarizeResponse struct {
	Summary          string `json:"summary,omitempty"`
	ScreenshotBase64 string `json:"screenshot_base64,omitempty"`
	Cached           bool   `json:"cached,omitempty"`
	Error            string `json:"error,omitempty"`
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	resp, err := s.orch.Run(c.Request().Context(), req.Message)

	out := summarizeResponse{
		Summary: resp.Text,
		Cached:  resp.CacheHit,
	}
	if len(resp.Screenshot) > 0 {
		out.ScreenshotBase64 = base64.StdEncoding.EncodeToString(resp.Screenshot)
	}
	if err != nil {
		out.Error = err.Error()
		// A partial payload is still a 200; only a run with nothing to
		// deliver is an error response.
		if out.Summary == "" && out.ScreenshotBase64 == "" {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) Start(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
