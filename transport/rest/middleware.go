package rest

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
)

const sessionKey = "session"

// withSession makes sure every page request carries a session id and keeps the cookie alive.
// It must run after session.Middleware.
func withSession(logger *slog.Logger) echo.MiddlewareFunc {
	log := logger.With("method", "withSession")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := session.Get(pkg.SessionCookieName, ctx)
			if sess == nil {
				return fmt.Errorf("failed to get session: %w", err)
			}

			if err != nil {
				log.Debug("session cookie rejected, starting a new session", "error", err)
			}

			sessionID, created := pkg.SessionID(sess)
			if created {
				log.Info("new session created", "session", sessionID)
			}

			// saved on every request so the cookie expires together with the stored game
			if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			ctx.Set(sessionKey, sessionID)

			return next(ctx)
		}
	}
}

func sessionFrom(ctx echo.Context) string {
	sessionID, _ := ctx.Get(sessionKey).(string)
	return sessionID
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.Warn("request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
				return nil
			}

			log.Debug("request handled", "method", v.Method, "uri", v.URI, "status", v.Status, "duration", v.Latency)

			return nil
		},
	})
}

func recoverer(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(_ echo.Context, err error, stack []byte) error {
			log.Error("recovered from panic", "error", err, "stack", string(stack))
			return err
		},
	})
}
