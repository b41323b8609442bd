package domain

// Result is the uniform shape every API operation returns. Exactly one of
// Data and Error is meaningful: Data when Success, Error otherwise.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Status  int       `json:"-"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed result. An empty message is replaced so that a
// failure always carries something to show.
func Fail[T any](e *APIError) Result[T] {
	msg := e.Message
	if msg == "" {
		msg = MessageUnexpected
	}
	return Result[T]{Kind: e.Kind, Error: msg, Status: e.Status}
}

// Err returns nil on success and an *APIError otherwise.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return &APIError{Kind: r.Kind, Message: r.Error, Status: r.Status}
}

// User-facing messages for failures that carry no server message.
const (
	MessageConnectivity = "Cannot connect to the server. Please check:\n" +
		"1. Your internet connection\n" +
		"2. The API server is running\n" +
		"3. You are on the same network as the server"
	MessageTimeout        = "The server took too long to respond. Please check your connection and try again."
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageServerError    = "Something went wrong on the server. Please try again later."
	MessageUnexpected     = "An unexpected error occurred. Please try again."
)
