package domain

// Keys of the persistent session store.
const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeyUserType = "userType"
)

// SessionKeys lists every key a sign-in writes, in write order.
var SessionKeys = []string{KeyToken, KeyUser, KeyUserType}

// Phase is the hydration lifecycle of the session manager.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseChecking      Phase = "checking"
	PhaseReady         Phase = "ready"
)

// SessionState is the single snapshot every screen and the navigation gate
// read. It is always replaced as a whole.
type SessionState struct {
	Phase           Phase `json:"phase"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsInitialized   bool  `json:"isInitialized"`
	User            *User `json:"user,omitempty"`
}

// Role returns the signed-in role, or "" when no user is set.
func (s SessionState) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s SessionState) clone() SessionState {
	s.User = s.User.Clone()
	return s
}

// Clone returns a copy whose user record is not shared with s.
func (s SessionState) Clone() SessionState { return s.clone() }
