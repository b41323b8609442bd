package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
)

type stubSession struct {
	state domain.SessionState
}

func (s stubSession) Snapshot() domain.SessionState { return s.state }

func (s stubSession) Subscribe(func(domain.SessionState)) func() { return func() {} }

func signedInAs(role domain.Role) stubSession {
	return stubSession{state: domain.SessionState{
		Phase:           domain.PhaseReady,
		IsInitialized:   true,
		IsAuthenticated: true,
		User:            &domain.User{ID: "5", Role: role},
	}}
}

func TestRequireSession_InjectsSnapshot(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := RequireSession(signedInAs(domain.RoleDoctor))(func(c echo.Context) error {
		s, ok := Session(c)
		if !ok || s.User.ID != "5" {
			t.Fatalf("session not injected: %+v", s)
		}
		if c.Get(KeyRole) != "doctor" {
			t.Fatalf("role not set")
		}
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestRequireSession_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		state domain.SessionState
		code  int
	}{
		{"loading", domain.SessionState{Phase: domain.PhaseChecking}, http.StatusServiceUnavailable},
		{"signed out", domain.SessionState{Phase: domain.PhaseReady, IsInitialized: true}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

			err := RequireSession(stubSession{state: tc.state})(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})(c)

			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != tc.code {
				t.Fatalf("expected %d, got %v", tc.code, err)
			}
		})
	}
}
