package ports

import "context"

// SessionStore is the durable key-value area holding the session. Get
// reports ok=false for an absent key; an absent key is not an error.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// TokenSource hands the current bearer token to the transport. It never
// writes.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// SubmissionGuard admits one in-flight submission per flow. Acquire fails
// with domain.ErrSubmissionInFlight while another holder has not released.
type SubmissionGuard interface {
	Acquire(ctx context.Context, flow string) (release func(), err error)
}
