package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// DoctorHome is the doctor dashboard.
type DoctorHome struct {
	Stats domain.DoctorStats `json:"stats"`
}

// DoctorSchedule is the doctor's appointments screen.
type DoctorSchedule struct {
	Booked []domain.RosterEntry `json:"booked"`
	Open   []domain.DaySlots    `json:"open"`
}

// Consultation is the booking screen for one doctor.
type Consultation struct {
	Doctor *domain.Doctor    `json:"doctor"`
	Slots  []domain.DaySlots `json:"slots"`
}

// Screens loads the data behind each screen. Screens without remote data
// load nothing.
type Screens struct {
	backend ports.Backend
	appts   ports.AppointmentFlow
	session ports.SessionReader
	expirer Expirer
}

var _ ports.ScreenLoader = (*Screens)(nil)

func NewScreens(backend ports.Backend, appts ports.AppointmentFlow, session ports.SessionReader, expirer Expirer) *Screens {
	return &Screens{backend: backend, appts: appts, session: session, expirer: expirer}
}

// Load returns the data for route. params carries the route's query
// parameters: filters for doctor lists and "id" for detail screens.
func (s *Screens) Load(ctx context.Context, route domain.Route, params map[string]string) (any, error) {
	switch route {
	case domain.RouteHome, domain.RouteDoctors:
		filter, err := doctorFilter(params)
		if err != nil {
			return nil, err
		}
		return unwrap(ctx, s, "doctors", s.backend.ListDoctors(ctx, filter))

	case domain.RouteMyChats:
		return unwrap(ctx, s, "chats", s.backend.ListSavedDoctorSessions(ctx))

	case domain.RouteChatDetail:
		id, err := requireID(params)
		if err != nil {
			return nil, err
		}
		return unwrap(ctx, s, "chat messages", s.backend.GetChatMessages(ctx, id))

	case domain.RouteAppointments:
		return s.appts.MyAppointments(ctx)

	case domain.RouteProfile:
		return s.session.Snapshot().User, nil

	case domain.RouteDoctorProfile:
		if id := params["id"]; id != "" {
			return unwrap(ctx, s, "doctor", s.backend.GetDoctorByID(ctx, domain.ID(id)))
		}
		return s.session.Snapshot().User, nil

	case domain.RouteBookConsultation:
		id, err := requireID(params)
		if err != nil {
			return nil, err
		}
		doctor, err := unwrap(ctx, s, "doctor", s.backend.GetDoctorByID(ctx, id))
		if err != nil {
			return nil, err
		}
		slots, err := s.appts.OpenSlots(ctx, id)
		if err != nil {
			return nil, err
		}
		return Consultation{Doctor: doctor, Slots: slots}, nil

	case domain.RouteDoctorHome:
		stats, err := unwrap(ctx, s, "doctor stats", s.backend.GetDoctorStats(ctx))
		if err != nil {
			return nil, err
		}
		return DoctorHome{Stats: stats}, nil

	case domain.RouteDoctorAppointments:
		user, err := currentUser(s.session, domain.RoleDoctor)
		if err != nil {
			return nil, err
		}
		booked, err := s.appts.Roster(ctx)
		if err != nil {
			return nil, err
		}
		open, err := s.appts.OpenSlots(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return DoctorSchedule{Booked: booked, Open: open}, nil

	case domain.RoutePatients:
		return unwrap(ctx, s, "patients", s.backend.ListPatientsForDoctor(ctx))
	}
	return nil, nil
}

func unwrap[T any](ctx context.Context, s *Screens, op string, res domain.Result[T]) (T, error) {
	if !res.Success {
		var zero T
		return zero, fmt.Errorf("%s: %w", op, s.expirer.ExpireOnAuth(ctx, res.Err()))
	}
	return res.Data, nil
}

func requireID(params map[string]string) (domain.ID, error) {
	id := params["id"]
	if id == "" {
		return "", &domain.InputError{Reason: "id is required"}
	}
	return domain.ID(id), nil
}

func doctorFilter(params map[string]string) (domain.DoctorFilter, error) {
	f := domain.DoctorFilter{
		Name:       params["name"],
		City:       params["city"],
		Speciality: params["speciality"],
		Gender:     params["gender"],
		Status:     params["status"],
	}
	if p := params["page"]; p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return f, &domain.InputError{Reason: "page must be a positive number"}
		}
		f.Page = n
	}
	return f, nil
}
