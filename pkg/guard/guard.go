// Package guard implements the two decision points composed around every
// console screen. Guards are pure functions of a session snapshot: they hold
// no state and perform no network calls, they only decide what the view
// layer should do next.
package guard

import (
	"net/url"

	"github.com/streamweave/console/pkg/session"
)

// Action tells the view layer what to do with the guarded screen.
type Action int

const (
	// ActionAllow renders the guarded content unchanged.
	ActionAllow Action = iota

	// ActionWait shows a neutral loading placeholder. Used while the
	// session is still Initializing so an authenticated user never sees a
	// flash of the login form.
	ActionWait

	// ActionRedirect navigates to Decision.Target instead of rendering.
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionWait:
		return "wait"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Action Action

	// Target is the redirect destination when Action is ActionRedirect.
	Target string
}

// LoginPath is the login boundary screens redirect to when unauthenticated.
const LoginPath = "/login"

// HomePath is the default landing screen non-admins are fenced back to.
const HomePath = "/"

// RequireAuthenticated gates a screen on any authenticated session.
// attemptedPath is carried to the login boundary as return_to so the user
// lands back where they were after re-authenticating.
func RequireAuthenticated(snap session.Snapshot, attemptedPath string) Decision {
	switch snap.State {
	case session.StateInitializing:
		return Decision{Action: ActionWait}
	case session.StateAuthenticated:
		return Decision{Action: ActionAllow}
	default:
		target := LoginPath
		if attemptedPath != "" {
			target += "?return_to=" + url.QueryEscape(attemptedPath)
		}
		return Decision{Action: ActionRedirect, Target: target}
	}
}

// RequireAdmin gates a screen on an elevated role. It assumes
// RequireAuthenticated already passed; a non-admin session is silently
// fenced back to the default landing screen. This is an authorization
// boundary, not an error: the user is never shown a failure.
func RequireAdmin(snap session.Snapshot) Decision {
	if snap.IsAdmin() {
		return Decision{Action: ActionAllow}
	}
	return Decision{Action: ActionRedirect, Target: HomePath}
}
