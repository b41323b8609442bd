package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/api/metrics"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// Flow names used for submission guarding and metrics.
const (
	flowLogin           = "login"
	flowRegisterPatient = "register_patient"
	flowRegisterDoctor  = "register_doctor"
	flowLogout          = "logout"
	flowRefresh         = "refresh"
)

// AuthFlow performs every persistence write of the session: token, then
// user record, then role tag, then one composite state update.
type AuthFlow struct {
	// mu serializes every commit to the store and the session state.
	mu sync.Mutex

	api     ports.AuthAPI
	store   ports.SessionStore
	session ports.SessionController
	guard   ports.SubmissionGuard
	log     zerolog.Logger
}

var _ ports.AuthFlow = (*AuthFlow)(nil)

func NewAuthFlow(
	api ports.AuthAPI,
	store ports.SessionStore,
	session ports.SessionController,
	guard ports.SubmissionGuard,
	log zerolog.Logger,
) *AuthFlow {
	return &AuthFlow{api: api, store: store, session: session, guard: guard, log: log}
}

// Login signs in through the endpoint group of in.Role.
func (f *AuthFlow) Login(ctx context.Context, in ports.LoginInput) (domain.SessionState, error) {
	if err := ValidateInput(in); err != nil {
		return f.session.Snapshot(), fmt.Errorf("login: %w", err)
	}
	return f.signIn(ctx, flowLogin, func() domain.Result[domain.AuthPayload] {
		if in.Role == domain.RoleDoctor {
			return f.api.LoginDoctor(ctx, in.Email, in.Password)
		}
		return f.api.LoginPatient(ctx, in.Email, in.Password)
	})
}

func (f *AuthFlow) RegisterPatient(ctx context.Context, in domain.PatientRegistration) (domain.SessionState, error) {
	if err := ValidateInput(in); err != nil {
		return f.session.Snapshot(), fmt.Errorf("register patient: %w", err)
	}
	return f.signIn(ctx, flowRegisterPatient, func() domain.Result[domain.AuthPayload] {
		return f.api.RegisterPatient(ctx, in)
	})
}

func (f *AuthFlow) RegisterDoctor(ctx context.Context, in domain.DoctorRegistration, picture *domain.Picture) (domain.SessionState, error) {
	if err := ValidateInput(in); err != nil {
		return f.session.Snapshot(), fmt.Errorf("register doctor: %w", err)
	}
	return f.signIn(ctx, flowRegisterDoctor, func() domain.Result[domain.AuthPayload] {
		return f.api.RegisterDoctor(ctx, in, picture)
	})
}

// signIn runs one guarded sign-in flow and establishes the session from its
// payload.
func (f *AuthFlow) signIn(ctx context.Context, flow string, run func() domain.Result[domain.AuthPayload]) (domain.SessionState, error) {
	if !f.session.Snapshot().IsInitialized {
		return f.session.Snapshot(), fmt.Errorf("%s: %w", flow, domain.ErrNotInitialized)
	}

	release, err := acquire(ctx, f.guard, flow)
	if err != nil {
		return f.session.Snapshot(), err
	}
	defer release()

	res := run()
	if !res.Success {
		f.log.Info().Str("flow", flow).Str("kind", string(res.Kind)).Msg("sign-in rejected")
		return f.session.Snapshot(), fmt.Errorf("%s: %w", flow, res.Err())
	}

	// The caller may have walked away while the request was in flight.
	if err := ctx.Err(); err != nil {
		f.log.Debug().Str("flow", flow).Msg("sign-in response arrived for an abandoned flow")
		return f.session.Snapshot(), fmt.Errorf("%s: %w", flow, domain.ErrStaleFlow)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.persist(context.WithoutCancel(ctx), res.Data.Token, res.Data.User); err != nil {
		return f.session.Snapshot(), fmt.Errorf("%s: %w", flow, err)
	}

	f.session.Apply(true, res.Data.User)
	f.log.Info().Str("flow", flow).Str("role", string(res.Data.User.Role)).Msg("signed in")
	return f.session.Snapshot(), nil
}

// persist writes token, user record and role tag in that order. A failed
// write removes whatever was written so no half session survives.
func (f *AuthFlow) persist(ctx context.Context, token string, u *domain.User) error {
	record, err := domain.EncodeUserRecord(u)
	if err != nil {
		return err
	}

	writes := []struct{ key, value string }{
		{domain.KeyToken, token},
		{domain.KeyUser, record},
		{domain.KeyUserType, u.Role.Tag()},
	}
	for _, w := range writes {
		if err := f.store.Set(ctx, w.key, w.value); err != nil {
			f.clearStore(ctx)
			return fmt.Errorf("persist session %s: %w", w.key, err)
		}
	}
	return nil
}

// Logout always drops the local session. The backend's answer only decides
// the returned error; a 401 there already counts as success.
func (f *AuthFlow) Logout(ctx context.Context) (domain.SessionState, error) {
	release, err := acquire(ctx, f.guard, flowLogout)
	if err != nil {
		return f.session.Snapshot(), err
	}
	defer release()

	res := f.api.Logout(ctx)

	f.mu.Lock()
	f.clearStore(context.WithoutCancel(ctx))
	f.session.Apply(false, nil)
	f.mu.Unlock()

	if !res.Success {
		f.log.Warn().Str("kind", string(res.Kind)).Msg("backend logout failed, local session dropped")
		return f.session.Snapshot(), fmt.Errorf("logout: %w", res.Err())
	}
	f.log.Info().Msg("signed out")
	return f.session.Snapshot(), nil
}

// Refresh re-reads the signed-in account and stores the fresh record. The
// role of the session never changes.
func (f *AuthFlow) Refresh(ctx context.Context) (domain.SessionState, error) {
	snap := f.session.Snapshot()
	if !snap.IsInitialized {
		return snap, fmt.Errorf("refresh: %w", domain.ErrNotInitialized)
	}
	if !snap.IsAuthenticated || snap.User == nil {
		return snap, fmt.Errorf("refresh: %w", domain.ErrNotAuthenticated)
	}

	release, err := acquire(ctx, f.guard, flowRefresh)
	if err != nil {
		return snap, err
	}
	defer release()

	role := snap.User.Role
	res := f.api.GetCurrentUser(ctx, role)
	if !res.Success {
		err := fmt.Errorf("refresh: %w", res.Err())
		if res.Kind == domain.KindAuth {
			return f.Expire(ctx), err
		}
		return f.session.Snapshot(), err
	}
	if err := ctx.Err(); err != nil {
		return f.session.Snapshot(), fmt.Errorf("refresh: %w", domain.ErrStaleFlow)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// A logout or another sign-in may have landed while the request was out.
	if cur := f.session.Snapshot(); !cur.IsAuthenticated || cur.User == nil || cur.User.ID != snap.User.ID {
		f.log.Debug().Msg("refresh response arrived for a session that is gone")
		return cur, fmt.Errorf("refresh: %w", domain.ErrStaleFlow)
	}

	u := res.Data
	u.Role = role
	record, err := domain.EncodeUserRecord(u)
	if err != nil {
		return f.session.Snapshot(), fmt.Errorf("refresh: %w", err)
	}
	if err := f.store.Set(context.WithoutCancel(ctx), domain.KeyUser, record); err != nil {
		return f.session.Snapshot(), fmt.Errorf("refresh: persist user: %w", err)
	}
	f.session.SetUser(u)
	return f.session.Snapshot(), nil
}

// Expire drops the session after the backend rejected its token.
func (f *AuthFlow) Expire(ctx context.Context) domain.SessionState {
	f.mu.Lock()
	f.clearStore(context.WithoutCancel(ctx))
	f.session.Apply(false, nil)
	f.mu.Unlock()
	f.log.Info().Msg("session expired")
	return f.session.Snapshot()
}

// ExpireOnAuth expires the session when err is an auth rejection and
// returns err unchanged.
func (f *AuthFlow) ExpireOnAuth(ctx context.Context, err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == domain.KindAuth {
		f.Expire(ctx)
	}
	return err
}

func (f *AuthFlow) clearStore(ctx context.Context) {
	for _, k := range domain.SessionKeys {
		if err := f.store.Remove(ctx, k); err != nil {
			f.log.Warn().Err(err).Str("key", k).Msg("failed to clear session key")
		}
	}
}

func acquire(ctx context.Context, guard ports.SubmissionGuard, flow string) (func(), error) {
	release, err := guard.Acquire(ctx, flow)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionInFlight) {
			metrics.SubmissionsRejectedTotal.WithLabelValues(flow).Inc()
		}
		return nil, fmt.Errorf("%s: %w", flow, err)
	}
	return release, nil
}
