package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"stockroom/internal/service"
)

// Server is the JSON transport over the item service. It owns request
// parsing, upload staging, and status-code mapping; every mutation of the
// record/attachment pairing is delegated to the service.
type Server struct {
	svc            *service.ItemService
	echo           *echo.Echo
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewServer(svc *service.ItemService, logger *slog.Logger, maxUploadBytes int64) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		svc:            svc,
		echo:           e,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"duration_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.GET("/healthz", s.handleHealth)
	e.POST("/items", s.handleCreateItem)
	e.GET("/items", s.handleListItems)
	e.GET("/items/:id", s.handleGetItem)
	e.PATCH("/items/:id", s.handleUpdateItem)
	e.DELETE("/items/:id", s.handleDeleteItem)
	e.PUT("/items/:id/photo", s.handleReplacePhoto)
	e.GET("/items/:id/photo", s.handleGetPhoto)
	e.DELETE("/items/:id/photo", s.handleRemovePhoto)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.echo.StartServer(srv)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
