package domain

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// ID is a backend identifier. The backend sends numbers for some resources
// and strings for others; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := flexText(b)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Text is a free-form field the backend sends either quoted or as a number
// (age, balance).
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s, err := flexText(b)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// Number accepts 4.5 and "4.5" alike.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s, err := flexText(b)
	if err != nil {
		return err
	}
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f)
	return nil
}

// Flag accepts true, 1 and "1" alike; the backend stores booleans as tinyint.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")) {
		*f = Flag(b[0] == 't')
		return nil
	}
	s, err := flexText(b)
	if err != nil {
		return err
	}
	switch s {
	case "", "0", "false":
		*f = false
	default:
		*f = true
	}
	return nil
}

func flexText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return "", nil
	case b[0] == '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return "", err
		}
		return s, nil
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return "", fmt.Errorf("%s is neither string nor number", b)
		}
		return string(b), nil
	}
}

// User is the signed-in account, patient or doctor.
type User struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"type"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	// Patient fields.
	Age            Text   `json:"age,omitempty"`
	Sex            string `json:"sexe,omitempty"`
	ChronicDisease string `json:"chronicDisease,omitempty"`
	BloodGroup     string `json:"groupage,omitempty"`

	// Doctor fields.
	Gender           string `json:"gender,omitempty"`
	Speciality       string `json:"speciality,omitempty"`
	ConsultationType string `json:"typeConsultation,omitempty"`
	City             string `json:"city,omitempty"`
	Street           string `json:"street,omitempty"`
	Picture          string `json:"picture,omitempty"`
	Rating           Number `json:"rating,omitempty"`
	Balance          Text   `json:"balance,omitempty"`
	Approved         Flag   `json:"approved,omitempty"`
	Status           string `json:"status,omitempty"`
}

func (u *User) IsDoctor() bool { return u != nil && u.Role == RoleDoctor }

// Clone returns a copy that shares nothing with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// EncodeUserRecord serialises u for the "user" session key.
func EncodeUserRecord(u *User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user record: %w", err)
	}
	return string(b), nil
}

// DecodeUserRecord parses a stored user record and reconciles its role
// against the separately stored tag.
func DecodeUserRecord(raw, tag string) (*User, error) {
	if raw == "" || raw == "null" {
		return nil, ErrNoUserRecord
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	var markers RoleMarkers
	if err := json.Unmarshal([]byte(raw), &markers); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}

	u.Role = ReconcileRole(markers, tag)
	return &u, nil
}
