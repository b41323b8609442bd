package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/infrastructure/sessionstore"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps session errors and backend error kinds to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var input *domain.InputError
	if errors.As(err, &input) {
		return http.StatusBadRequest, errorResponse{Error: input.Reason}
	}

	// Backend failures carry the message the user is shown.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiStatus(apiErr), errorResponse{Error: apiErr.Message, Kind: string(apiErr.Kind)}
	}

	switch {
	case errors.Is(err, domain.ErrNotInitialized):
		return http.StatusServiceUnavailable, errorResponse{Error: "session is still loading"}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not signed in"}
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusForbidden, errorResponse{Error: "not available for this account type"}
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict, errorResponse{Error: "a submission is already in progress"}
	case errors.Is(err, domain.ErrSlotBooked):
		return http.StatusConflict, errorResponse{Error: "slot is already booked"}
	case errors.Is(err, domain.ErrSlotNotFound):
		return http.StatusNotFound, errorResponse{Error: "slot not found"}
	case errors.Is(err, domain.ErrStaleFlow):
		return http.StatusRequestTimeout, errorResponse{Error: "request abandoned"}
	case errors.Is(err, sessionstore.ErrSealedSession):
		return http.StatusInternalServerError, errorResponse{Error: "stored session cannot be opened"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func apiStatus(e *domain.APIError) int {
	switch e.Kind {
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindValidation:
		if e.Status == http.StatusUnprocessableEntity {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
