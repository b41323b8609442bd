package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// Context keys set by the middlewares in this package.
const (
	KeySession = "session"
	KeyRole    = "role"
	KeyRoute   = "route"
)

// RequireSession rejects requests until the session is hydrated and signed
// in, then injects the snapshot and its role into the context.
func RequireSession(session ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.Snapshot()
			if !s.IsInitialized {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still loading")
			}
			if !s.IsAuthenticated || s.User == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}

			c.Set(KeySession, s)
			c.Set(KeyRole, string(s.Role()))

			return next(c)
		}
	}
}

// Session returns the snapshot injected by RequireSession or Gate.
func Session(c echo.Context) (domain.SessionState, bool) {
	s, ok := c.Get(KeySession).(domain.SessionState)
	return s, ok
}
