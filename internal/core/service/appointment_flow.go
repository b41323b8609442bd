package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
	"github.com/medlink/session-client/internal/infrastructure/queue"
)

const (
	flowBook       = "book"
	flowAddSlots   = "add_slots"
	flowDeleteSlot = "delete_slot"
)

// Expirer drops the session when the backend rejects the token.
type Expirer interface {
	ExpireOnAuth(ctx context.Context, err error) error
}

// AppointmentFlow runs the booking screens for the signed-in user.
type AppointmentFlow struct {
	appts   ports.AppointmentAPI
	users   ports.UserAPI
	session ports.SessionReader
	expirer Expirer
	guard   ports.SubmissionGuard
	workers int
	log     zerolog.Logger
}

var _ ports.AppointmentFlow = (*AppointmentFlow)(nil)

// NewAppointmentFlow returns an AppointmentFlow. workers bounds the number
// of concurrent patient lookups when building the doctor's roster.
func NewAppointmentFlow(
	appts ports.AppointmentAPI,
	users ports.UserAPI,
	session ports.SessionReader,
	expirer Expirer,
	guard ports.SubmissionGuard,
	workers int,
	log zerolog.Logger,
) *AppointmentFlow {
	return &AppointmentFlow{
		appts:   appts,
		users:   users,
		session: session,
		expirer: expirer,
		guard:   guard,
		workers: workers,
		log:     log,
	}
}

// MyAppointments lists the signed-in patient's appointments.
func (f *AppointmentFlow) MyAppointments(ctx context.Context) ([]domain.Appointment, error) {
	user, err := currentUser(f.session, domain.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("my appointments: %w", err)
	}
	res := f.appts.GetAppointmentsForPatient(ctx, user.ID)
	if !res.Success {
		return nil, f.fail(ctx, "my appointments", res.Err())
	}
	return res.Data, nil
}

// OpenSlots returns the unbooked slots of a doctor grouped by date.
func (f *AppointmentFlow) OpenSlots(ctx context.Context, doctorID domain.ID) ([]domain.DaySlots, error) {
	if _, err := currentUser(f.session, ""); err != nil {
		return nil, fmt.Errorf("open slots: %w", err)
	}
	if doctorID == "" {
		return nil, fmt.Errorf("open slots: %w", &domain.InputError{Reason: "doctor id is required"})
	}
	res := f.appts.GetAvailableSlots(ctx, doctorID)
	if !res.Success {
		return nil, f.fail(ctx, "open slots", res.Err())
	}

	open := make([]domain.Slot, 0, len(res.Data))
	for _, s := range res.Data {
		if !s.Booked() {
			open = append(open, s)
		}
	}
	return domain.GroupSlotsByDate(open), nil
}

// Book binds the signed-in patient to slotID.
func (f *AppointmentFlow) Book(ctx context.Context, slotID domain.ID) error {
	user, err := currentUser(f.session, domain.RolePatient)
	if err != nil {
		return fmt.Errorf("book: %w", err)
	}
	if slotID == "" {
		return fmt.Errorf("book: %w", &domain.InputError{Reason: "slot id is required"})
	}

	release, err := acquire(ctx, f.guard, flowBook)
	if err != nil {
		return err
	}
	defer release()

	res := f.appts.BookSlot(ctx, slotID, user.ID)
	if !res.Success {
		return f.fail(ctx, "book", res.Err())
	}
	f.log.Info().Str("slot_id", slotID.String()).Msg("slot booked")
	return nil
}

// Roster lists the signed-in doctor's booked appointments joined with each
// patient's record. A patient that cannot be fetched gets placeholders.
func (f *AppointmentFlow) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	user, err := currentUser(f.session, domain.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	res := f.appts.GetDoctorAppointments(ctx, user.ID)
	if !res.Success {
		return nil, f.fail(ctx, "roster", res.Err())
	}

	ids := make([]string, 0, len(res.Data))
	for _, s := range res.Data {
		if s.Booked() {
			ids = append(ids, s.PatientID.String())
		}
	}

	var (
		rejectedOnce sync.Once
		rejected     error
	)
	lookup := queue.NewDispatcher(f.workers, func(ctx context.Context, id string) (*domain.User, error) {
		r := f.users.GetUserByID(ctx, domain.ID(id))
		if !r.Success {
			if r.Kind == domain.KindAuth {
				rejectedOnce.Do(func() { rejected = r.Err() })
			}
			return nil, r.Err()
		}
		return r.Data, nil
	}, f.log)
	patients := lookup.Collect(ctx, ids)
	if rejected != nil {
		return nil, f.fail(ctx, "roster", rejected)
	}

	entries := make([]domain.RosterEntry, 0, len(res.Data))
	for _, s := range res.Data {
		if !s.Booked() {
			continue
		}
		entries = append(entries, domain.NewRosterEntry(s, patients[s.PatientID.String()]))
	}
	return entries, nil
}

// AddSlots publishes one slot per non-empty time on date for the signed-in
// doctor.
func (f *AppointmentFlow) AddSlots(ctx context.Context, date string, times []string) error {
	user, err := currentUser(f.session, domain.RoleDoctor)
	if err != nil {
		return fmt.Errorf("add slots: %w", err)
	}

	in := domain.NewSlots{DoctorID: user.ID, Date: strings.TrimSpace(date)}
	for _, t := range times {
		if t = strings.TrimSpace(t); t != "" {
			in.Times = append(in.Times, t)
		}
	}
	if err := ValidateInput(in); err != nil {
		return fmt.Errorf("add slots: %w", err)
	}

	release, err := acquire(ctx, f.guard, flowAddSlots)
	if err != nil {
		return err
	}
	defer release()

	res := f.appts.AddSlots(ctx, in)
	if !res.Success {
		return f.fail(ctx, "add slots", res.Err())
	}
	f.log.Info().Str("date", in.Date).Int("count", len(in.Times)).Msg("slots added")
	return nil
}

// DeleteSlot removes one of the signed-in doctor's slots. A slot bound to a
// patient is refused with domain.ErrSlotBooked.
func (f *AppointmentFlow) DeleteSlot(ctx context.Context, slotID domain.ID) error {
	user, err := currentUser(f.session, domain.RoleDoctor)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if slotID == "" {
		return fmt.Errorf("delete slot: %w", &domain.InputError{Reason: "slot id is required"})
	}

	release, err := acquire(ctx, f.guard, flowDeleteSlot)
	if err != nil {
		return err
	}
	defer release()

	booked := f.appts.GetDoctorAppointments(ctx, user.ID)
	if !booked.Success {
		return f.fail(ctx, "delete slot", booked.Err())
	}
	found := false
	for _, s := range booked.Data {
		if s.ID != slotID {
			continue
		}
		if s.Booked() {
			return fmt.Errorf("delete slot %s: %w", slotID, domain.ErrSlotBooked)
		}
		found = true
	}
	if !found {
		return fmt.Errorf("delete slot %s: %w", slotID, domain.ErrSlotNotFound)
	}

	res := f.appts.DeleteSlot(ctx, slotID)
	if !res.Success {
		return f.fail(ctx, "delete slot", res.Err())
	}
	f.log.Info().Str("slot_id", slotID.String()).Msg("slot deleted")
	return nil
}

func (f *AppointmentFlow) fail(ctx context.Context, op string, err error) error {
	return fmt.Errorf("%s: %w", op, f.expirer.ExpireOnAuth(ctx, err))
}

// currentUser returns the signed-in user, checking role when set.
func currentUser(session ports.SessionReader, role domain.Role) (*domain.User, error) {
	s := session.Snapshot()
	switch {
	case !s.IsInitialized:
		return nil, domain.ErrNotInitialized
	case !s.IsAuthenticated || s.User == nil:
		return nil, domain.ErrNotAuthenticated
	case role != "" && s.User.Role != role:
		return nil, domain.ErrRoleMismatch
	}
	return s.User, nil
}
