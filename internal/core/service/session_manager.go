package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/api/metrics"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// SessionManager owns the in-memory session state. It reads the session
// store once, at hydration, and never writes it except to drop a token it
// found expired.
type SessionManager struct {
	store ports.SessionStore
	log   zerolog.Logger
	now   func() time.Time

	hydrateOnce sync.Once

	mu     sync.Mutex
	state  domain.SessionState
	subs   map[int]func(domain.SessionState)
	nextID int
}

var _ ports.SessionController = (*SessionManager)(nil)

func NewSessionManager(store ports.SessionStore, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store: store,
		log:   log,
		now:   time.Now,
		state: domain.SessionState{Phase: domain.PhaseUninitialized},
		subs:  make(map[int]func(domain.SessionState)),
	}
}

// Snapshot returns a copy of the current state.
func (m *SessionManager) Snapshot() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Subscribe registers fn for every state change. fn runs outside the lock
// and may call Snapshot.
func (m *SessionManager) Subscribe(fn func(domain.SessionState)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Hydrate derives the session from the store. Only the first call reads the
// store; every call returns the resulting state, and concurrent callers wait
// for the first to finish.
func (m *SessionManager) Hydrate(ctx context.Context) domain.SessionState {
	m.hydrateOnce.Do(func() {
		m.replace(func(s *domain.SessionState) { s.Phase = domain.PhaseChecking })
		metrics.SessionTransitionsTotal.WithLabelValues(string(domain.PhaseChecking)).Inc()

		user := m.restore(ctx)
		m.replace(func(s *domain.SessionState) {
			s.Phase = domain.PhaseReady
			s.IsInitialized = true
			s.IsAuthenticated = user != nil
			s.User = user
		})
		metrics.SessionTransitionsTotal.WithLabelValues(authLabel(user != nil)).Inc()
	})
	return m.Snapshot()
}

// restore returns the stored user when the store holds a usable session.
// Every failure degrades to nil.
func (m *SessionManager) restore(ctx context.Context) *domain.User {
	token, ok, err := m.store.Get(ctx, domain.KeyToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("session token unreadable, starting signed out")
		return nil
	}
	if !ok || token == "" {
		return nil
	}

	if expired(token, m.now()) {
		m.log.Info().Msg("stored session token expired")
		m.clear(ctx)
		return nil
	}

	raw, ok, err := m.store.Get(ctx, domain.KeyUser)
	if err != nil {
		m.log.Warn().Err(err).Msg("session user unreadable, starting signed out")
		return nil
	}
	if !ok {
		return nil
	}

	tag, _, err := m.store.Get(ctx, domain.KeyUserType)
	if err != nil {
		m.log.Warn().Err(err).Msg("session role tag unreadable, reconciling from record")
		tag = ""
	}

	user, err := domain.DecodeUserRecord(raw, tag)
	if err != nil {
		if !errors.Is(err, domain.ErrNoUserRecord) {
			m.log.Warn().Err(err).Msg("stored user record corrupt, starting signed out")
		}
		return nil
	}
	return user
}

func (m *SessionManager) clear(ctx context.Context) {
	for _, k := range domain.SessionKeys {
		if err := m.store.Remove(ctx, k); err != nil {
			m.log.Warn().Err(err).Str("key", k).Msg("failed to clear session key")
		}
	}
}

// expired reports whether token is a JWT whose exp lies before now. Opaque
// tokens never expire on the client.
func expired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// SetAuthenticated is a no-op until hydration has finished.
func (m *SessionManager) SetAuthenticated(authenticated bool) {
	m.mutate(func(s *domain.SessionState) { s.IsAuthenticated = authenticated })
}

// SetUser is a no-op until hydration has finished.
func (m *SessionManager) SetUser(u *domain.User) {
	u = u.Clone()
	m.mutate(func(s *domain.SessionState) { s.User = u })
}

// Apply sets both fields in one update so no reader sees one without the
// other. It is a no-op until hydration has finished.
func (m *SessionManager) Apply(authenticated bool, u *domain.User) {
	u = u.Clone()
	if m.mutate(func(s *domain.SessionState) {
		s.IsAuthenticated = authenticated
		s.User = u
	}) {
		metrics.SessionTransitionsTotal.WithLabelValues(authLabel(authenticated)).Inc()
	}
}

// mutate applies fn only after initialization and reports whether it did.
func (m *SessionManager) mutate(fn func(*domain.SessionState)) bool {
	m.mu.Lock()
	if !m.state.IsInitialized {
		m.mu.Unlock()
		m.log.Debug().Msg("session mutation ignored before initialization")
		return false
	}
	fn(&m.state)
	snap, subs := m.state.Clone(), m.subscribers()
	m.mu.Unlock()

	notify(subs, snap)
	return true
}

func (m *SessionManager) replace(fn func(*domain.SessionState)) {
	m.mu.Lock()
	fn(&m.state)
	snap, subs := m.state.Clone(), m.subscribers()
	m.mu.Unlock()

	notify(subs, snap)
}

// subscribers must be called with mu held.
func (m *SessionManager) subscribers() []func(domain.SessionState) {
	out := make([]func(domain.SessionState), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(domain.SessionState), s domain.SessionState) {
	for _, fn := range subs {
		fn(s.Clone())
	}
}

func authLabel(authenticated bool) string {
	if authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}
