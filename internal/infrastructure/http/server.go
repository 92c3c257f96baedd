// Package http exposes a query session as a local JSON API for web front ends.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/usecases"
)

const httpModule = "http"

// Server is the HTTP server for the session API.
type Server struct {
	session *usecases.QuerySession
	catalog ports.Catalog
	logger  ports.Logger
	addr    string
	echo    *echo.Echo
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(
	session *usecases.QuerySession,
	catalog ports.Catalog,
	metrics http.Handler,
	logger ports.Logger,
	addr string,
) *Server {
	s := &Server{
		session: session,
		catalog: catalog,
		logger:  logger,
		addr:    addr,
	}
	s.echo = s.routes(metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug(httpModule, "request", map[string]interface{}{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			return nil
		},
	}))
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/personas", s.handlePersonas)
	api.GET("/documents", s.handleDocuments)
	api.GET("/documents/search", s.handleSearch)

	sess := api.Group("/session")
	sess.GET("", s.handleSession)
	sess.PUT("/query", s.handleSetQuery)
	sess.PUT("/persona", s.handleSetPersona)
	sess.POST("/submit", s.handleSubmit)
	sess.POST("/examples/:n", s.handleExample)

	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
	return e
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the HTTP server until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	s.logger.Info(httpModule, "server starting", map[string]interface{}{"address": s.addr})
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleError renders every failure as {"error": msg}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error(httpModule, "request failed", map[string]interface{}{
			"path":  c.Request().URL.Path,
			"error": err.Error(),
		})
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]interface{}{"error": msg})
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type personaResponse struct {
	Mode  entities.Persona `json:"mode"`
	Label string           `json:"label"`
}

func (s *Server) handlePersonas(c echo.Context) error {
	personas := entities.Personas()
	out := make([]personaResponse, len(personas))
	for i, p := range personas {
		out[i] = personaResponse{Mode: p, Label: p.Label()}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDocuments(c echo.Context) error {
	return c.JSON(http.StatusOK, entities.GroupByCategory(s.catalog.Documents()))
}

type searchHitResponse struct {
	entities.Document
	Score float64 `json:"score"`
}

func (s *Server) handleSearch(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	hits, err := s.catalog.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	out := make([]searchHitResponse, len(hits))
	for i, h := range hits {
		out[i] = searchHitResponse{Document: h.Document, Score: h.Score}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handleSetQuery(c echo.Context) error {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.session.SetQueryText(req.Query)
	return c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handleSetPersona(c echo.Context) error {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := entities.ParsePersona(req.Mode)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := s.session.SelectPersona(p); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, s.session.View())
}

// handleSubmit starts a submission and answers 202 with the submitting view.
// With ?wait=true it blocks until the answer arrives and answers 200.
func (s *Server) handleSubmit(c echo.Context) error {
	done, err := s.session.Submit()
	switch {
	case errors.Is(err, usecases.ErrBlankQuery):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "query is blank")
	case errors.Is(err, usecases.ErrInFlight):
		return echo.NewHTTPError(http.StatusConflict, "a submission is already in flight")
	case err != nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); wait {
		select {
		case view, ok := <-done:
			if ok {
				return c.JSON(http.StatusOK, view)
			}
			return c.JSON(http.StatusOK, s.session.View())
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}
	return c.JSON(http.StatusAccepted, s.session.View())
}

func (s *Server) handleExample(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "example number must be an integer")
	}
	if err := s.session.UseExample(n); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, s.session.View())
}
