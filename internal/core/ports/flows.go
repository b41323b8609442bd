package ports

import (
	"context"

	"github.com/medlink/session-client/internal/core/domain"
)

// LoginInput carries a login form plus the role whose endpoint is used.
type LoginInput struct {
	domain.Credentials
	Role domain.Role `json:"role" validate:"required,oneof=patient doctor"`
}

// AuthFlow runs the sign-in, sign-up and sign-out flows. It is the only
// writer of the session store.
type AuthFlow interface {
	Login(ctx context.Context, in LoginInput) (domain.SessionState, error)
	RegisterPatient(ctx context.Context, in domain.PatientRegistration) (domain.SessionState, error)
	RegisterDoctor(ctx context.Context, in domain.DoctorRegistration, picture *domain.Picture) (domain.SessionState, error)
	Logout(ctx context.Context) (domain.SessionState, error)
	Refresh(ctx context.Context) (domain.SessionState, error)
	// Expire drops the session after the backend rejected the token.
	Expire(ctx context.Context) domain.SessionState
}

// AppointmentFlow runs the booking screens on behalf of the signed-in user.
type AppointmentFlow interface {
	MyAppointments(ctx context.Context) ([]domain.Appointment, error)
	OpenSlots(ctx context.Context, doctorID domain.ID) ([]domain.DaySlots, error)
	Book(ctx context.Context, slotID domain.ID) error
	Roster(ctx context.Context) ([]domain.RosterEntry, error)
	AddSlots(ctx context.Context, date string, times []string) error
	DeleteSlot(ctx context.Context, slotID domain.ID) error
}

// ScreenLoader fetches the data one screen shows.
type ScreenLoader interface {
	Load(ctx context.Context, route domain.Route, params map[string]string) (any, error)
}
