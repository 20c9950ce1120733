package guard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/streamweave/console/pkg/session"
)

func authenticated(role session.Role) session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		Identity: &session.Identity{
			ID:       uuid.New(),
			Email:    "user@example.org",
			Role:     role,
			IsActive: true,
		},
	}
}

func TestRequireAuthenticated(t *testing.T) {
	tests := []struct {
		name          string
		snap          session.Snapshot
		attemptedPath string
		want          Decision
	}{
		{
			name: "initializing waits",
			snap: session.Snapshot{State: session.StateInitializing},
			want: Decision{Action: ActionWait},
		},
		{
			name:          "unauthenticated redirects with return_to",
			snap:          session.Snapshot{State: session.StateUnauthenticated},
			attemptedPath: "/instruments?include_deleted=true",
			want:          Decision{Action: ActionRedirect, Target: "/login?return_to=%2Finstruments%3Finclude_deleted%3Dtrue"},
		},
		{
			name: "unauthenticated without attempted path",
			snap: session.Snapshot{State: session.StateUnauthenticated},
			want: Decision{Action: ActionRedirect, Target: "/login"},
		},
		{
			name: "authenticated allows",
			snap: authenticated(session.RoleUser),
			want: Decision{Action: ActionAllow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequireAuthenticated(tt.snap, tt.attemptedPath)
			assert.Equal(t, tt.want, got)

			// Guards are pure: same input, same output.
			assert.Equal(t, got, RequireAuthenticated(tt.snap, tt.attemptedPath))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{
			name: "admin allows",
			snap: authenticated(session.RoleAdmin),
			want: Decision{Action: ActionAllow},
		},
		{
			name: "plain user is silently fenced home",
			snap: authenticated(session.RoleUser),
			want: Decision{Action: ActionRedirect, Target: HomePath},
		},
		{
			name: "initializing is not admin",
			snap: session.Snapshot{State: session.StateInitializing},
			want: Decision{Action: ActionRedirect, Target: HomePath},
		},
		{
			name: "unauthenticated is not admin",
			snap: session.Snapshot{State: session.StateUnauthenticated},
			want: Decision{Action: ActionRedirect, Target: HomePath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequireAdmin(tt.snap))
		})
	}
}
