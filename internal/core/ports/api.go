package ports

import (
	"context"

	"github.com/medlink/session-client/internal/core/domain"
)

type AuthAPI interface {
	LoginPatient(ctx context.Context, email, password string) domain.Result[domain.AuthPayload]
	LoginDoctor(ctx context.Context, email, password string) domain.Result[domain.AuthPayload]
	RegisterPatient(ctx context.Context, in domain.PatientRegistration) domain.Result[domain.AuthPayload]
	RegisterDoctor(ctx context.Context, in domain.DoctorRegistration, picture *domain.Picture) domain.Result[domain.AuthPayload]
	Logout(ctx context.Context) domain.Result[struct{}]
	GetCurrentUser(ctx context.Context, role domain.Role) domain.Result[*domain.User]
}

type DoctorAPI interface {
	ListDoctors(ctx context.Context, f domain.DoctorFilter) domain.Result[domain.DoctorPage]
	GetDoctorByID(ctx context.Context, id domain.ID) domain.Result[*domain.Doctor]
	GetDoctorStats(ctx context.Context) domain.Result[domain.DoctorStats]
}

type AppointmentAPI interface {
	GetAppointmentsForPatient(ctx context.Context, patientID domain.ID) domain.Result[[]domain.Appointment]
	GetAvailableSlots(ctx context.Context, doctorID domain.ID) domain.Result[[]domain.Slot]
	BookSlot(ctx context.Context, slotID, patientID domain.ID) domain.Result[struct{}]
	GetDoctorAppointments(ctx context.Context, doctorID domain.ID) domain.Result[[]domain.Slot]
	AddSlots(ctx context.Context, in domain.NewSlots) domain.Result[struct{}]
	DeleteSlot(ctx context.Context, slotID domain.ID) domain.Result[struct{}]
}

type ChatAPI interface {
	ListSavedDoctorSessions(ctx context.Context) domain.Result[[]domain.ChatSession]
	GetChatMessages(ctx context.Context, sessionID domain.ID) domain.Result[[]domain.ChatMessage]
	ListPatientsForDoctor(ctx context.Context) domain.Result[[]domain.User]
}

type UserAPI interface {
	GetUserByID(ctx context.Context, id domain.ID) domain.Result[*domain.User]
}

// Backend is the full API surface.
type Backend interface {
	AuthAPI
	DoctorAPI
	AppointmentAPI
	ChatAPI
	UserAPI
}
