package ports

import (
	"context"

	"github.com/medlink/session-client/internal/core/domain"
)

// SessionReader is the read side every screen and the navigation gate use.
type SessionReader interface {
	Snapshot() domain.SessionState
	// Subscribe registers fn for every state change and returns a function
	// that removes it.
	Subscribe(fn func(domain.SessionState)) (unsubscribe func())
}

// SessionController adds the mutators used by auth flows. All of them are
// no-ops until hydration has finished.
type SessionController interface {
	SessionReader
	Hydrate(ctx context.Context) domain.SessionState
	SetAuthenticated(authenticated bool)
	SetUser(u *domain.User)
	Apply(authenticated bool, u *domain.User)
}
