package session

import "github.com/google/uuid"

// Role is the platform-wide role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the resolved profile for the current credential.
type Identity struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
}

// State is the discriminant of the session union.
type State int

const (
	// StateInitializing holds until the first Bootstrap resolves. Consumers
	// must not act on the session before it reaches a terminal state.
	StateInitializing State = iota

	// StateUnauthenticated means no valid credential is held.
	StateUnauthenticated

	// StateAuthenticated means the credential resolved to an Identity.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at a point in time.
// Identity is non-nil exactly when State is StateAuthenticated.
type Snapshot struct {
	State    State
	Identity *Identity
}

// IsAdmin reports whether the snapshot is an authenticated admin. False in
// every other state, including Initializing.
func (s Snapshot) IsAdmin() bool {
	return s.State == StateAuthenticated && s.Identity != nil && s.Identity.Role == RoleAdmin
}
