package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
	srv    *http.Server
}

// NewServer - builds the HTTP server with the game page, its static assets and the websocket endpoint.
func NewServer(logger *slog.Logger, port string, store sessions.Store, game GameHandler, ping PingHandler, ws http.Handler) *Server {
	log := logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newTemplateRenderer()

	e.Use(requestLogger(log), recoverer(log))

	e.StaticFS("/static", echo.MustSubFS(staticFS, "static"))
	e.GET("/ping", ping.Ping)

	if ws != nil {
		e.GET("/ws", echo.WrapHandler(ws))
	}

	pages := e.Group("", session.Middleware(store), withSession(log))
	pages.GET("/", game.Index)
	pages.POST("/move/:cell", game.Move)
	pages.POST("/jump/:step", game.Jump)
	pages.POST("/restart", game.Restart)

	return &Server{
		logger: log,
		echo:   e,
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      e,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start - starts HTTP server, returns nil after Shutdown.
func (that *Server) Start() error {
	that.logger.Info("Starting HTTP server", "addr", that.srv.Addr)

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (that *Server) Handler() http.Handler {
	return that.echo
}
