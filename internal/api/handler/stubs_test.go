package handler

import (
	"context"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

type stubSession struct {
	state domain.SessionState
}

func (s *stubSession) Snapshot() domain.SessionState { return s.state }

func (s *stubSession) Subscribe(func(domain.SessionState)) func() { return func() {} }

func signedOut() *stubSession {
	return &stubSession{state: domain.SessionState{Phase: domain.PhaseReady, IsInitialized: true}}
}

func signedInAs(role domain.Role) domain.SessionState {
	return domain.SessionState{
		Phase:           domain.PhaseReady,
		IsInitialized:   true,
		IsAuthenticated: true,
		User:            &domain.User{ID: "5", Name: "Amina", Role: role},
	}
}

type stubAuthFlow struct {
	loginFn           func(ctx context.Context, in ports.LoginInput) (domain.SessionState, error)
	registerPatientFn func(ctx context.Context, in domain.PatientRegistration) (domain.SessionState, error)
	registerDoctorFn  func(ctx context.Context, in domain.DoctorRegistration, p *domain.Picture) (domain.SessionState, error)
	logoutFn          func(ctx context.Context) (domain.SessionState, error)
	refreshFn         func(ctx context.Context) (domain.SessionState, error)
}

func (s *stubAuthFlow) Login(ctx context.Context, in ports.LoginInput) (domain.SessionState, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthFlow) RegisterPatient(ctx context.Context, in domain.PatientRegistration) (domain.SessionState, error) {
	return s.registerPatientFn(ctx, in)
}

func (s *stubAuthFlow) RegisterDoctor(ctx context.Context, in domain.DoctorRegistration, p *domain.Picture) (domain.SessionState, error) {
	return s.registerDoctorFn(ctx, in, p)
}

func (s *stubAuthFlow) Logout(ctx context.Context) (domain.SessionState, error) {
	return s.logoutFn(ctx)
}

func (s *stubAuthFlow) Refresh(ctx context.Context) (domain.SessionState, error) {
	return s.refreshFn(ctx)
}

func (s *stubAuthFlow) Expire(context.Context) domain.SessionState {
	return domain.SessionState{Phase: domain.PhaseReady, IsInitialized: true}
}

type stubAppointmentFlow struct {
	bookFn       func(ctx context.Context, slotID domain.ID) error
	addSlotsFn   func(ctx context.Context, date string, times []string) error
	deleteSlotFn func(ctx context.Context, slotID domain.ID) error
}

func (s *stubAppointmentFlow) MyAppointments(context.Context) ([]domain.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentFlow) OpenSlots(context.Context, domain.ID) ([]domain.DaySlots, error) {
	return nil, nil
}

func (s *stubAppointmentFlow) Book(ctx context.Context, slotID domain.ID) error {
	return s.bookFn(ctx, slotID)
}

func (s *stubAppointmentFlow) Roster(context.Context) ([]domain.RosterEntry, error) {
	return nil, nil
}

func (s *stubAppointmentFlow) AddSlots(ctx context.Context, date string, times []string) error {
	return s.addSlotsFn(ctx, date, times)
}

func (s *stubAppointmentFlow) DeleteSlot(ctx context.Context, slotID domain.ID) error {
	return s.deleteSlotFn(ctx, slotID)
}

type stubScreens struct {
	loadFn func(ctx context.Context, route domain.Route, params map[string]string) (any, error)
}

func (s *stubScreens) Load(ctx context.Context, route domain.Route, params map[string]string) (any, error) {
	return s.loadFn(ctx, route, params)
}
