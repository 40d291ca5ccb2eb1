// Package api serves the answer pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("api: answer service is required")

// maxBodySize caps request bodies.
const maxBodySize = "1M"

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Ports aggregates everything the HTTP server needs.
type Ports struct {
	// Answer runs the full question answering pipeline. Required.
	Answer driving.AnswerService

	// Retrieval serves POST /v1/retrieve when set.
	Retrieval driving.RetrievalService

	// Users enables HTTP basic authentication when set.
	Users driving.UserService

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// Ready holds named checks run by /readyz.
	Ready map[string]ReadinessCheck
}

// Server is the refrag HTTP server.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer creates the server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil || ports.Answer == nil {
		return nil, ErrMissingAnswerService
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(maxBodySize))

	s := &Server{ports: ports, echo: e}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/readyz", s.ready)
	if ports.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(ports.Metrics))
	}

	v1 := e.Group("/v1")
	if ports.Users != nil {
		v1.Use(middleware.BasicAuth(s.authenticate))
	}
	v1.POST("/answer", s.answer)
	if ports.Retrieval != nil {
		v1.POST("/retrieve", s.retrieve)
	}

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.echo.Server.ReadHeaderTimeout = 10 * time.Second

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP server listening on %s", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) authenticate(id, password string, c echo.Context) (bool, error) {
	user, err := s.ports.Users.Login(c.Request().Context(), id, password)
	if errors.Is(err, domain.ErrAuthInvalid) {
		logger.Debug("Rejected credentials for %q", id)
		return false, nil
	}
	if err != nil {
		logger.Error("authenticate %q: %v", id, err)
		return false, echo.NewHTTPError(http.StatusInternalServerError, "authentication unavailable").WithInternal(err)
	}
	c.Set(userIDKey, user.ID)
	return true, nil
}

// errorHandler renders every error as {"error": msg}.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	logger.Warn("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
