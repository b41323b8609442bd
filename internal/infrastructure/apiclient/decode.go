package apiclient

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/medlink/session-client/internal/core/domain"
)

var (
	errNoToken = errors.New("No token received from server")
	errNoUser  = errors.New("No user record received from server")
)

// decodeJSON decodes the whole body into T. An empty body yields T's zero
// value.
func decodeJSON[T any](body []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(body)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// decodeField decodes the body as an envelope and returns the part pick
// selects.
func decodeField[E, T any](pick func(E) T) func([]byte) (T, error) {
	return func(body []byte) (T, error) {
		env, err := decodeJSON[E](body)
		if err != nil {
			var zero T
			return zero, err
		}
		return pick(env), nil
	}
}

func ignoreBody([]byte) (struct{}, error) { return struct{}{}, nil }

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}"))
}

// decodeUser parses a user record and pins its role. An empty role
// reconciles it from the record's own markers.
func decodeUser(raw json.RawMessage, role domain.Role) (*domain.User, error) {
	if isNull(raw) {
		return nil, errNoUser
	}
	u, err := domain.DecodeUserRecord(string(raw), "")
	if err != nil {
		return nil, err
	}
	if role != "" {
		u.Role = role
	}
	return u, nil
}

type userEnvelope struct {
	Data   json.RawMessage `json:"data"`
	User   json.RawMessage `json:"user"`
	Doctor json.RawMessage `json:"doctor"`
}

// record returns the first non-empty of the keys the backend uses for a
// user record.
func (e userEnvelope) record(role domain.Role) json.RawMessage {
	order := []json.RawMessage{e.User, e.Doctor, e.Data}
	if role == domain.RoleDoctor {
		order = []json.RawMessage{e.Doctor, e.User, e.Data}
	}
	for _, raw := range order {
		if !isNull(raw) {
			return raw
		}
	}
	return nil
}

type authEnvelope struct {
	userEnvelope
	Token string `json:"token"`
}

// decodeAuth builds the payload of a login or registration. The endpoint
// that answered decides the role.
func decodeAuth(role domain.Role) func([]byte) (domain.AuthPayload, error) {
	return func(body []byte) (domain.AuthPayload, error) {
		env, err := decodeJSON[authEnvelope](body)
		if err != nil {
			return domain.AuthPayload{}, err
		}
		if env.Token == "" {
			return domain.AuthPayload{}, errNoToken
		}
		u, err := decodeUser(env.record(role), role)
		if err != nil {
			return domain.AuthPayload{}, err
		}
		return domain.AuthPayload{Token: env.Token, User: u}, nil
	}
}
