package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medlink/session-client/internal/core/domain"
)

func newAppointmentFlow(b *stubBackend, m *SessionManager, store *stubStore) *AppointmentFlow {
	auth := NewAuthFlow(b, store, m, newStubGuard(), discardLogger)
	return NewAppointmentFlow(b, b, m, auth, newStubGuard(), 3, discardLogger)
}

func idPtr(s string) *domain.ID {
	id := domain.ID(s)
	return &id
}

// ---------------------------------------------------------------------------
// Patient side
// ---------------------------------------------------------------------------

func TestAppointmentFlow_MyAppointments(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	b := &stubBackend{patientAppts: func(id domain.ID) domain.Result[[]domain.Appointment] {
		if id != "3" {
			t.Errorf("patient id = %q", id)
		}
		return domain.OK([]domain.Appointment{{ID: "a1", Date: "2024-05-01", Time: "09:00"}})
	}}

	got, err := newAppointmentFlow(b, m, store).MyAppointments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("appointments = %+v", got)
	}
}

func TestAppointmentFlow_MyAppointmentsDoctorRejected(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	_, err := newAppointmentFlow(&stubBackend{}, m, store).MyAppointments(context.Background())
	if !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("err = %v, want ErrRoleMismatch", err)
	}
}

func TestAppointmentFlow_SignedOut(t *testing.T) {
	store := newStubStore()
	f := newAppointmentFlow(&stubBackend{}, readyManager(store), store)

	if _, err := f.OpenSlots(context.Background(), "5"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("open slots err = %v", err)
	}
	if err := f.Book(context.Background(), "s1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("book err = %v", err)
	}
}

func TestAppointmentFlow_OpenSlotsGroupsUnbooked(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	b := &stubBackend{openSlots: func(domain.ID) domain.Result[[]domain.Slot] {
		return domain.OK([]domain.Slot{
			{ID: "1", Date: "2024-05-02", Time: "10:00"},
			{ID: "2", Date: "2024-05-01", Time: "11:00"},
			{ID: "3", Date: "2024-05-01", Time: "09:00"},
			{ID: "4", Date: "2024-05-01", Time: "08:00", PatientID: idPtr("9")},
		})
	}}

	days, err := newAppointmentFlow(b, m, store).OpenSlots(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 || days[0].Date != "2024-05-01" {
		t.Fatalf("days = %+v", days)
	}
	first := days[0].Slots
	if len(first) != 2 || first[0].ID != "3" || first[1].ID != "2" {
		t.Fatalf("first day = %+v", first)
	}
}

func TestAppointmentFlow_OpenSlotsRequiresDoctorID(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	_, err := newAppointmentFlow(&stubBackend{}, m, store).OpenSlots(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestAppointmentFlow_BookBindsSessionUser(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	var gotSlot, gotPatient domain.ID
	b := &stubBackend{bookSlot: func(slotID, patientID domain.ID) domain.Result[struct{}] {
		gotSlot, gotPatient = slotID, patientID
		return domain.OK(struct{}{})
	}}

	if err := newAppointmentFlow(b, m, store).Book(context.Background(), "s7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSlot != "s7" || gotPatient != "3" {
		t.Fatalf("booked %s for %s", gotSlot, gotPatient)
	}
}

func TestAppointmentFlow_BookAuthFailureExpires(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	b := &stubBackend{bookSlot: func(domain.ID, domain.ID) domain.Result[struct{}] {
		return domain.Fail[struct{}](authFail(domain.MessageSessionExpired))
	}}

	err := newAppointmentFlow(b, m, store).Book(context.Background(), "s7")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != domain.KindAuth {
		t.Fatalf("err = %v", err)
	}
	if m.Snapshot().IsAuthenticated || store.has(domain.KeyToken) {
		t.Fatal("auth failure must drop the session")
	}
}

func TestAppointmentFlow_BookConnectivityKeepsSession(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	b := &stubBackend{bookSlot: func(domain.ID, domain.ID) domain.Result[struct{}] {
		return domain.Fail[struct{}](&domain.APIError{Kind: domain.KindConnectivity, Message: domain.MessageConnectivity})
	}}

	if err := newAppointmentFlow(b, m, store).Book(context.Background(), "s7"); err == nil {
		t.Fatal("expected error")
	}
	if !m.Snapshot().IsAuthenticated {
		t.Fatal("connectivity failure must keep the session")
	}
}

// ---------------------------------------------------------------------------
// Doctor side
// ---------------------------------------------------------------------------

func TestAppointmentFlow_Roster(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	b := &stubBackend{
		doctorAppts: func(domain.ID) domain.Result[[]domain.Slot] {
			return domain.OK([]domain.Slot{
				{ID: "1", Date: "2024-05-01", Time: "09:00", PatientID: idPtr("3")},
				{ID: "2", Date: "2024-05-01", Time: "10:00"},
				{ID: "3", Date: "2024-05-02", Time: "09:00", PatientID: idPtr("3")},
				{ID: "4", Date: "2024-05-02", Time: "10:00", PatientID: idPtr("404")},
			})
		},
		userByID: func(id domain.ID) domain.Result[*domain.User] {
			if id == "404" {
				return domain.Fail[*domain.User](&domain.APIError{Kind: domain.KindValidation, Message: "not found", Status: 404})
			}
			return domain.OK(&domain.User{ID: id, Name: "Lina", Email: "lina@x.com", BloodGroup: "A+"})
		},
	}

	roster, err := newAppointmentFlow(b, m, store).Roster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("roster has %d entries, want 3 booked", len(roster))
	}
	if roster[0].PatientName != "Lina" || roster[0].PhoneNumber != domain.NoPhone || roster[0].BloodGroup != "A+" {
		t.Fatalf("first entry = %+v", roster[0])
	}
	if roster[2].PatientName != domain.UnknownPatient || roster[2].Email != domain.NoEmail {
		t.Fatalf("missing patient entry = %+v", roster[2])
	}
	if b.userLookups != 2 {
		t.Fatalf("user lookups = %d, want 2 distinct patients", b.userLookups)
	}
}

func TestAppointmentFlow_RosterLookupAuthFailureExpires(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	b := &stubBackend{
		doctorAppts: func(domain.ID) domain.Result[[]domain.Slot] {
			return domain.OK([]domain.Slot{{ID: "1", Date: "2024-05-01", Time: "09:00", PatientID: idPtr("3")}})
		},
		userByID: func(domain.ID) domain.Result[*domain.User] {
			return domain.Fail[*domain.User](authFail(domain.MessageSessionExpired))
		},
	}

	_, err := newAppointmentFlow(b, m, store).Roster(context.Background())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != domain.KindAuth {
		t.Fatalf("err = %v, want auth failure", err)
	}
	if m.Snapshot().IsAuthenticated || store.has(domain.KeyToken) {
		t.Fatal("auth failure during lookups must drop the session")
	}
}

func TestAppointmentFlow_RosterPatientRejected(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "3", Role: domain.RolePatient})
	_, err := newAppointmentFlow(&stubBackend{}, m, store).Roster(context.Background())
	if !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestAppointmentFlow_AddSlots(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	var got domain.NewSlots
	b := &stubBackend{addSlots: func(in domain.NewSlots) domain.Result[struct{}] {
		got = in
		return domain.OK(struct{}{})
	}}

	err := newAppointmentFlow(b, m, store).AddSlots(context.Background(), " 2024-05-01 ", []string{"09:00", " ", "10:30 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DoctorID != "5" || got.Date != "2024-05-01" || len(got.Times) != 2 || got.Times[1] != "10:30" {
		t.Fatalf("request = %+v", got)
	}
}

func TestAppointmentFlow_AddSlotsValidation(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	b := &stubBackend{}
	f := newAppointmentFlow(b, m, store)

	cases := []struct {
		name  string
		date  string
		times []string
	}{
		{"no date", "", []string{"09:00"}},
		{"no times", "2024-05-01", nil},
		{"only blank times", "2024-05-01", []string{" ", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := f.AddSlots(context.Background(), tc.date, tc.times); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAppointmentFlow_DeleteSlotRefusesBooked(t *testing.T) {
	m, store := signedIn(&domain.User{ID: "5", Role: domain.RoleDoctor})
	b := &stubBackend{
		doctorAppts: func(domain.ID) domain.Result[[]domain.Slot] {
			return domain.OK([]domain.Slot{{ID: "1", PatientID: idPtr("3")}, {ID: "2"}})
		},
		deleteSlot: func(domain.ID) domain.Result[struct{}] { return domain.OK(struct{}{}) },
	}
	f := newAppointmentFlow(b, m, store)

	if err := f.DeleteSlot(context.Background(), "1"); !errors.Is(err, domain.ErrSlotBooked) {
		t.Fatalf("err = %v, want ErrSlotBooked", err)
	}
	if b.deleteCalls != 0 {
		t.Fatal("booked slot must never reach the backend")
	}

	if err := f.DeleteSlot(context.Background(), "99"); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("err = %v, want ErrSlotNotFound", err)
	}
	if b.deleteCalls != 0 {
		t.Fatal("unknown slot must never reach the backend")
	}

	if err := f.DeleteSlot(context.Background(), "2"); err != nil {
		t.Fatalf("open slot: %v", err)
	}
	if b.deleteCalls != 1 {
		t.Fatalf("delete calls = %d", b.deleteCalls)
	}
}
