package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

type ScreenHandler struct {
	screens ports.ScreenLoader
	session ports.SessionReader
}

func NewScreenHandler(screens ports.ScreenLoader, session ports.SessionReader) *ScreenHandler {
	return &ScreenHandler{screens: screens, session: session}
}

type screenResponse struct {
	Route   domain.Route `json:"route"`
	Session sessionView  `json:"session"`
	Data    any          `json:"data,omitempty"`
}

// Show renders one screen after the navigation gate admitted it.
//
// @Summary      Screen
// @Tags         screens
// @Produce      json
// @Param        route  path      string  true   "Screen name, e.g. home, doctor-home, book-consultation"
// @Param        id     query     string  false  "Entity id for detail screens"
// @Success      200    {object}  screenResponse
// @Success      302
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /screens/{route} [get]
func (h *ScreenHandler) Show(c echo.Context) error {
	route, err := ctxRoute(c)
	if err != nil {
		return err
	}

	data, err := h.screens.Load(c.Request().Context(), route, queryParams(c))
	if err != nil {
		return err
	}

	// Loading may have expired the session.
	return c.JSON(http.StatusOK, screenResponse{
		Route:   route,
		Session: newSessionView(h.session.Snapshot()),
		Data:    data,
	})
}
