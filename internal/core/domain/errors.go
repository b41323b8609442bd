package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("session not initialized")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrRoleMismatch       = errors.New("action not available for this role")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrSlotBooked         = errors.New("slot is already booked")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrNoUserRecord       = errors.New("no user record")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStaleFlow          = errors.New("flow no longer relevant")
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindConnectivity ErrorKind = "connectivity"
	KindTimeout      ErrorKind = "timeout"
	KindValidation   ErrorKind = "validation"
	KindAuth         ErrorKind = "auth"
	KindUnexpected   ErrorKind = "unexpected"
)

// Connectivity reports whether the request never got a response. Timeouts
// count as connectivity failures for user messaging.
func (k ErrorKind) Connectivity() bool {
	return k == KindConnectivity || k == KindTimeout
}

// APIError is the error form of a failed Result.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// InputError carries the human-readable reason an input was rejected.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

func (e *InputError) Unwrap() error { return ErrInvalidInput }
