package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

type AppointmentHandler struct {
	flow ports.AppointmentFlow
}

func NewAppointmentHandler(flow ports.AppointmentFlow) *AppointmentHandler {
	return &AppointmentHandler{flow: flow}
}

type bookRequest struct {
	SlotID domain.ID `json:"slotId" validate:"required"`
}

type addSlotsRequest struct {
	Date  string   `json:"date"`
	Times []string `json:"time"`
}

// Book reserves a slot for the signed-in patient.
//
// @Summary      Book a slot
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body  bookRequest  true  "Slot to book"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /appointments/book [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.flow.Book(c.Request().Context(), req.SlotID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSlots publishes open slots for the signed-in doctor.
//
// @Summary      Add slots
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body  addSlotsRequest  true  "Date and times"
// @Success      201
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /appointments/slots [post]
func (h *AppointmentHandler) AddSlots(c echo.Context) error {
	var req addSlotsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.flow.AddSlots(c.Request().Context(), req.Date, req.Times); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// DeleteSlot removes an unbooked slot of the signed-in doctor.
//
// @Summary      Delete a slot
// @Tags         appointments
// @Param        id   path  string  true  "Slot id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /appointments/slots/{id} [delete]
func (h *AppointmentHandler) DeleteSlot(c echo.Context) error {
	if err := h.flow.DeleteSlot(c.Request().Context(), domain.ID(c.Param("id"))); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
