package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
)

// ctxRoute extracts the screen resolved by the Gate middleware. Its absence
// means the handler was mounted without the gate.
func ctxRoute(c echo.Context) (domain.Route, error) {
	route, _ := c.Get("route").(domain.Route)
	if route == "" {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "screen route not resolved")
	}
	return route, nil
}

// queryParams flattens the query string to its first value per key.
func queryParams(c echo.Context) map[string]string {
	q := c.QueryParams()
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
