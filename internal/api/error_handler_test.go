package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"input", fmt.Errorf("login: %w", &domain.InputError{Reason: "email is required"}), http.StatusBadRequest, "email is required"},
		{"backend validation", &domain.APIError{Kind: domain.KindValidation, Message: "Invalid credentials", Status: 422}, http.StatusUnprocessableEntity, "Invalid credentials"},
		{"backend bad request", &domain.APIError{Kind: domain.KindValidation, Message: "bad", Status: 400}, http.StatusBadRequest, "bad"},
		{"backend auth", fmt.Errorf("book: %w", &domain.APIError{Kind: domain.KindAuth, Message: domain.MessageSessionExpired}), http.StatusUnauthorized, domain.MessageSessionExpired},
		{"backend timeout", &domain.APIError{Kind: domain.KindTimeout, Message: domain.MessageTimeout}, http.StatusGatewayTimeout, domain.MessageTimeout},
		{"backend unreachable", &domain.APIError{Kind: domain.KindConnectivity, Message: domain.MessageConnectivity}, http.StatusServiceUnavailable, domain.MessageConnectivity},
		{"backend unexpected", &domain.APIError{Kind: domain.KindUnexpected, Message: domain.MessageServerError}, http.StatusBadGateway, domain.MessageServerError},
		{"not initialized", fmt.Errorf("login: %w", domain.ErrNotInitialized), http.StatusServiceUnavailable, "session is still loading"},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "not signed in"},
		{"role mismatch", domain.ErrRoleMismatch, http.StatusForbidden, "not available for this account type"},
		{"in flight", fmt.Errorf("login: %w", domain.ErrSubmissionInFlight), http.StatusConflict, "a submission is already in progress"},
		{"slot booked", domain.ErrSlotBooked, http.StatusConflict, "slot is already booked"},
		{"slot not found", fmt.Errorf("delete slot 9: %w", domain.ErrSlotNotFound), http.StatusNotFound, "slot not found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, resp := resolveError(tc.err, zerolog.Nop(), c)
			if code != tc.code || resp.Error != tc.msg {
				t.Fatalf("got %d %q, want %d %q", code, resp.Error, tc.code, tc.msg)
			}
		})
	}
}
