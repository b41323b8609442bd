package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
)

// RequireRole admits only sessions whose role is one of roles. It runs after
// RequireSession.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
