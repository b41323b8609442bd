package sessionstore

import (
	"context"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// StoreTokenSource reads the bearer token straight from the session store
// on every request, so a logout is visible to the very next call.
type StoreTokenSource struct {
	store ports.SessionStore
}

func NewTokenSource(store ports.SessionStore) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token reports ok=false when the token is absent, empty or unreadable.
func (t *StoreTokenSource) Token(ctx context.Context) (string, bool) {
	v, ok, err := t.store.Get(ctx, domain.KeyToken)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}
