package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub session store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error            // if set, Get returns this error
	setErrs map[string]error // per-key Set failures
	writes  []string         // keys in Set order
	removes []string
	gets    int
}

func newStubStore(kv ...string) *stubStore {
	s := &stubStore{values: map[string]string{}, setErrs: map[string]error{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.values[kv[i]] = kv[i+1]
	}
	return s
}

func (s *stubStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setErrs[key]; err != nil {
		return err
	}
	s.writes = append(s.writes, key)
	s.values[key] = value
	return nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes = append(s.removes, key)
	delete(s.values, key)
	return nil
}

func (s *stubStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// ---------------------------------------------------------------------------
// Stub guard
// ---------------------------------------------------------------------------

type stubGuard struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newStubGuard() *stubGuard { return &stubGuard{busy: map[string]bool{}} }

func (g *stubGuard) Acquire(_ context.Context, flow string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[flow] {
		return nil, domain.ErrSubmissionInFlight
	}
	g.busy[flow] = true
	return func() {
		g.mu.Lock()
		g.busy[flow] = false
		g.mu.Unlock()
	}, nil
}

// ---------------------------------------------------------------------------
// Stub backend: every operation defaults to an "unexpected" failure
// ---------------------------------------------------------------------------

var errNotStubbed = &domain.APIError{Kind: domain.KindUnexpected, Message: "not stubbed"}

type stubBackend struct {
	loginPatient    func(email, password string) domain.Result[domain.AuthPayload]
	loginDoctor     func(email, password string) domain.Result[domain.AuthPayload]
	registerPatient func(in domain.PatientRegistration) domain.Result[domain.AuthPayload]
	registerDoctor  func(in domain.DoctorRegistration, p *domain.Picture) domain.Result[domain.AuthPayload]
	logout          func() domain.Result[struct{}]
	currentUser     func(role domain.Role) domain.Result[*domain.User]

	listDoctors   func(f domain.DoctorFilter) domain.Result[domain.DoctorPage]
	doctorByID    func(id domain.ID) domain.Result[*domain.Doctor]
	doctorStats   func() domain.Result[domain.DoctorStats]
	patientAppts  func(id domain.ID) domain.Result[[]domain.Appointment]
	openSlots     func(id domain.ID) domain.Result[[]domain.Slot]
	bookSlot      func(slotID, patientID domain.ID) domain.Result[struct{}]
	doctorAppts   func(id domain.ID) domain.Result[[]domain.Slot]
	addSlots      func(in domain.NewSlots) domain.Result[struct{}]
	deleteSlot    func(id domain.ID) domain.Result[struct{}]
	chatSessions  func() domain.Result[[]domain.ChatSession]
	chatMessages  func(id domain.ID) domain.Result[[]domain.ChatMessage]
	patientsList  func() domain.Result[[]domain.User]
	userByID      func(id domain.ID) domain.Result[*domain.User]
	deleteCalls   int
	userLookupsMu sync.Mutex
	userLookups   int
}

func (b *stubBackend) LoginPatient(_ context.Context, email, password string) domain.Result[domain.AuthPayload] {
	if b.loginPatient == nil {
		return domain.Fail[domain.AuthPayload](errNotStubbed)
	}
	return b.loginPatient(email, password)
}

func (b *stubBackend) LoginDoctor(_ context.Context, email, password string) domain.Result[domain.AuthPayload] {
	if b.loginDoctor == nil {
		return domain.Fail[domain.AuthPayload](errNotStubbed)
	}
	return b.loginDoctor(email, password)
}

func (b *stubBackend) RegisterPatient(_ context.Context, in domain.PatientRegistration) domain.Result[domain.AuthPayload] {
	if b.registerPatient == nil {
		return domain.Fail[domain.AuthPayload](errNotStubbed)
	}
	return b.registerPatient(in)
}

func (b *stubBackend) RegisterDoctor(_ context.Context, in domain.DoctorRegistration, p *domain.Picture) domain.Result[domain.AuthPayload] {
	if b.registerDoctor == nil {
		return domain.Fail[domain.AuthPayload](errNotStubbed)
	}
	return b.registerDoctor(in, p)
}

func (b *stubBackend) Logout(context.Context) domain.Result[struct{}] {
	if b.logout == nil {
		return domain.OK(struct{}{})
	}
	return b.logout()
}

func (b *stubBackend) GetCurrentUser(_ context.Context, role domain.Role) domain.Result[*domain.User] {
	if b.currentUser == nil {
		return domain.Fail[*domain.User](errNotStubbed)
	}
	return b.currentUser(role)
}

func (b *stubBackend) ListDoctors(_ context.Context, f domain.DoctorFilter) domain.Result[domain.DoctorPage] {
	if b.listDoctors == nil {
		return domain.Fail[domain.DoctorPage](errNotStubbed)
	}
	return b.listDoctors(f)
}

func (b *stubBackend) GetDoctorByID(_ context.Context, id domain.ID) domain.Result[*domain.Doctor] {
	if b.doctorByID == nil {
		return domain.Fail[*domain.Doctor](errNotStubbed)
	}
	return b.doctorByID(id)
}

func (b *stubBackend) GetDoctorStats(context.Context) domain.Result[domain.DoctorStats] {
	if b.doctorStats == nil {
		return domain.Fail[domain.DoctorStats](errNotStubbed)
	}
	return b.doctorStats()
}

func (b *stubBackend) GetAppointmentsForPatient(_ context.Context, id domain.ID) domain.Result[[]domain.Appointment] {
	if b.patientAppts == nil {
		return domain.Fail[[]domain.Appointment](errNotStubbed)
	}
	return b.patientAppts(id)
}

func (b *stubBackend) GetAvailableSlots(_ context.Context, id domain.ID) domain.Result[[]domain.Slot] {
	if b.openSlots == nil {
		return domain.Fail[[]domain.Slot](errNotStubbed)
	}
	return b.openSlots(id)
}

func (b *stubBackend) BookSlot(_ context.Context, slotID, patientID domain.ID) domain.Result[struct{}] {
	if b.bookSlot == nil {
		return domain.Fail[struct{}](errNotStubbed)
	}
	return b.bookSlot(slotID, patientID)
}

func (b *stubBackend) GetDoctorAppointments(_ context.Context, id domain.ID) domain.Result[[]domain.Slot] {
	if b.doctorAppts == nil {
		return domain.Fail[[]domain.Slot](errNotStubbed)
	}
	return b.doctorAppts(id)
}

func (b *stubBackend) AddSlots(_ context.Context, in domain.NewSlots) domain.Result[struct{}] {
	if b.addSlots == nil {
		return domain.Fail[struct{}](errNotStubbed)
	}
	return b.addSlots(in)
}

func (b *stubBackend) DeleteSlot(_ context.Context, id domain.ID) domain.Result[struct{}] {
	b.deleteCalls++
	if b.deleteSlot == nil {
		return domain.Fail[struct{}](errNotStubbed)
	}
	return b.deleteSlot(id)
}

func (b *stubBackend) ListSavedDoctorSessions(context.Context) domain.Result[[]domain.ChatSession] {
	if b.chatSessions == nil {
		return domain.Fail[[]domain.ChatSession](errNotStubbed)
	}
	return b.chatSessions()
}

func (b *stubBackend) GetChatMessages(_ context.Context, id domain.ID) domain.Result[[]domain.ChatMessage] {
	if b.chatMessages == nil {
		return domain.Fail[[]domain.ChatMessage](errNotStubbed)
	}
	return b.chatMessages(id)
}

func (b *stubBackend) ListPatientsForDoctor(context.Context) domain.Result[[]domain.User] {
	if b.patientsList == nil {
		return domain.Fail[[]domain.User](errNotStubbed)
	}
	return b.patientsList()
}

func (b *stubBackend) GetUserByID(_ context.Context, id domain.ID) domain.Result[*domain.User] {
	b.userLookupsMu.Lock()
	b.userLookups++
	b.userLookupsMu.Unlock()
	if b.userByID == nil {
		return domain.Fail[*domain.User](errNotStubbed)
	}
	return b.userByID(id)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errStoreDown = errors.New("store down")

func authFail(msg string) *domain.APIError {
	return &domain.APIError{Kind: domain.KindAuth, Message: msg, Status: 401}
}

// readyManager returns a hydrated manager over store.
func readyManager(store *stubStore) *SessionManager {
	m := NewSessionManager(store, discardLogger)
	m.Hydrate(context.Background())
	return m
}

// signedIn returns a hydrated manager holding u, with the store populated
// the way a sign-in leaves it.
func signedIn(u *domain.User) (*SessionManager, *stubStore) {
	raw, _ := domain.EncodeUserRecord(u)
	store := newStubStore(
		domain.KeyToken, "tok",
		domain.KeyUser, raw,
		domain.KeyUserType, u.Role.Tag(),
	)
	return readyManager(store), store
}
