package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/api/metrics"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
	"github.com/medlink/session-client/internal/core/service"
)

// ScreenPrefix is the path every screen is served under.
const ScreenPrefix = "/screens/"

// LoadingView is rendered instead of any screen while the session is not
// hydrated yet.
type LoadingView struct {
	Loading bool         `json:"loading"`
	Phase   domain.Phase `json:"phase"`
}

// Gate resolves the :route path parameter and applies the navigation rules
// to it. A redirect answers 302 to the target screen; otherwise the route and
// session snapshot are injected for the screen handler.
func Gate(session ports.SessionReader, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := domain.ParseRoute(c.Param(KeyRoute))
			s := session.Snapshot()

			d := service.Decide(service.GateInputFor(s, route))
			switch {
			case d.Loading:
				return c.JSON(http.StatusOK, LoadingView{Loading: true, Phase: s.Phase})
			case d.Redirect:
				metrics.GateRedirectsTotal.WithLabelValues(string(route), string(d.Target)).Inc()
				log.Debug().
					Str("from", string(route)).
					Str("to", string(d.Target)).
					Msg("gate redirect")
				return c.Redirect(http.StatusFound, ScreenPrefix+string(d.Target))
			}

			c.Set(KeyRoute, route)
			c.Set(KeySession, s)
			if s.IsAuthenticated {
				c.Set(KeyRole, string(s.Role()))
			}
			return next(c)
		}
	}
}
