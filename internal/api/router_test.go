package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/api/handler"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSession struct {
	mu    sync.Mutex
	state domain.SessionState
}

func (s *stubSession) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubSession) Subscribe(func(domain.SessionState)) func() { return func() {} }

func (s *stubSession) set(state domain.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

type stubAuth struct{ ports.AuthFlow }

type stubAppointments struct {
	ports.AppointmentFlow
	booked domain.ID
}

func (s *stubAppointments) Book(_ context.Context, slotID domain.ID) error {
	s.booked = slotID
	return nil
}

type stubScreens struct{}

func (stubScreens) Load(context.Context, domain.Route, map[string]string) (any, error) {
	return nil, nil
}

func as(role domain.Role) domain.SessionState {
	return domain.SessionState{
		Phase:           domain.PhaseReady,
		IsInitialized:   true,
		IsAuthenticated: true,
		User:            &domain.User{ID: "5", Role: role},
	}
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

// The router registers its HTTP metrics globally, so it is built once.
func TestRouter(t *testing.T) {
	session := &stubSession{}
	appts := &stubAppointments{}
	e := NewRouter(Deps{
		Session:      session,
		Auth:         stubAuth{},
		Appointments: appts,
		Screens:      stubScreens{},
		Checks:       map[string]handler.Check{"backend": func(context.Context) error { return nil }},
		Log:          zerolog.Nop(),
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("loading shell before hydration", func(t *testing.T) {
		session.set(domain.SessionState{Phase: domain.PhaseChecking})
		rec := do(http.MethodGet, "/screens/home", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"loading":true`) {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("signed out is sent to landing", func(t *testing.T) {
		session.set(domain.SessionState{Phase: domain.PhaseReady, IsInitialized: true})
		rec := do(http.MethodGet, "/screens/appointments", "")
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/screens/landing" {
			t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("doctor screen renders", func(t *testing.T) {
		session.set(as(domain.RoleDoctor))
		rec := do(http.MethodGet, "/screens/doctor-home", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"route":"doctor-home"`) {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("doctor cannot book", func(t *testing.T) {
		session.set(as(domain.RoleDoctor))
		rec := do(http.MethodPost, "/appointments/book", `{"slotId":"1"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("signed out cannot book", func(t *testing.T) {
		session.set(domain.SessionState{Phase: domain.PhaseReady, IsInitialized: true})
		rec := do(http.MethodPost, "/appointments/book", `{"slotId":"1"}`)
		if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("patient books", func(t *testing.T) {
		session.set(as(domain.RolePatient))
		rec := do(http.MethodPost, "/appointments/book", `{"slotId":"9"}`)
		if rec.Code != http.StatusNoContent || appts.booked != "9" {
			t.Fatalf("got %d booked=%q", rec.Code, appts.booked)
		}
	})

	t.Run("session snapshot", func(t *testing.T) {
		session.set(as(domain.RolePatient))
		rec := do(http.MethodGet, "/session", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"role":"patient"`) {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("probes", func(t *testing.T) {
		for _, path := range []string{"/health", "/health/ready", "/metrics"} {
			if rec := do(http.MethodGet, path, ""); rec.Code != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", path, rec.Code)
			}
		}
	})
}
