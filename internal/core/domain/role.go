package domain

import (
	"strings"
)

// Role classifies an account and picks both the navigation subtree and the
// backend endpoint group used for the rest of the session.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Values stored under the "userType" session key. Older installs wrote
// "user" for patients.
const (
	TagPatient       = "patient"
	TagDoctor        = "doctor"
	TagLegacyPatient = "user"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Tag returns the value persisted under the role tag key.
func (r Role) Tag() string {
	if r == RoleDoctor {
		return TagDoctor
	}
	return TagPatient
}

// RoleMarkers are every place a stored user record may carry its role.
type RoleMarkers struct {
	Type     string `json:"type"`
	Role     string `json:"role"`
	IsDoctor Flag   `json:"isDoctor"`
}

// ReconcileRole resolves the session role with the precedence
// explicit doctor marker > stored tag > patient.
//
// Most stored records carry a patient-shaped default, so a patient value in
// the record never overrides a doctor tag.
func ReconcileRole(m RoleMarkers, tag string) Role {
	if bool(m.IsDoctor) || isDoctor(m.Type) || isDoctor(m.Role) {
		return RoleDoctor
	}
	if isDoctor(tag) {
		return RoleDoctor
	}
	return RolePatient
}

func isDoctor(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), TagDoctor)
}
