package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/tokenstore"
)

// AuthAPI is the slice of the backend the machine drives its transitions
// from. Implemented by api.Client.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token. The implementation
	// must tag the request auth-exempt so a 401 from bad credentials stays
	// a local error instead of a session expiry.
	Login(ctx context.Context, email, password string) (token string, err error)

	// Logout invalidates the server-side session for the current token.
	Logout(ctx context.Context) error

	// CurrentUser resolves the identity behind the current credential.
	CurrentUser(ctx context.Context) (*Identity, error)
}

// Machine is the session state machine. Construct one per process and share
// it; all transitions are serialized.
type Machine struct {
	store   tokenstore.Store
	api     AuthAPI
	logger  *observability.Logger
	metrics *observability.Metrics

	bootstrapOnce sync.Once

	mu          sync.Mutex
	snapshot    Snapshot
	subscribers map[int]chan Snapshot
	nextSubID   int

	// opMu serializes login/logout/resync so interleaved completions cannot
	// produce a torn transition.
	opMu sync.Mutex
}

// NewMachine creates a machine in StateInitializing.
func NewMachine(store tokenstore.Store, api AuthAPI, logger *observability.Logger, metrics *observability.Metrics) *Machine {
	return &Machine{
		store:       store,
		api:         api,
		logger:      logger,
		metrics:     metrics,
		snapshot:    Snapshot{State: StateInitializing},
		subscribers: make(map[int]chan Snapshot),
	}
}

// Bootstrap resolves the initial session state. It runs at most once per
// process: re-entrant calls are suppressed, not merely debounced, so a second
// consumer can never trigger a duplicate identity-resolution request. Every
// call returns the (possibly already resolved) current snapshot.
//
// With an empty token store the session settles to Unauthenticated without
// any network call. With a credential present the identity is resolved; any
// failure clears the credential and settles to Unauthenticated.
func (m *Machine) Bootstrap(ctx context.Context) Snapshot {
	m.bootstrapOnce.Do(func() {
		if _, err := m.store.Load(); err != nil {
			m.setState(Snapshot{State: StateUnauthenticated})
			return
		}
		m.resolveIdentity(ctx)
	})
	return m.Current()
}

// Login submits credentials. On success the returned token is stored, the
// identity is resolved with it and the session becomes Authenticated. On
// failure nothing changes: the credential slot is untouched, the session
// stays whatever it was, and the error is returned for local display.
func (m *Machine) Login(ctx context.Context, email, password string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := m.store.Save(token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	if ident := m.resolveIdentity(ctx); ident == nil {
		return fmt.Errorf("login succeeded but identity resolution failed")
	}
	return nil
}

// Logout invalidates the backend session and clears the local credential.
// The backend call is best-effort: a network partition must never leave the
// user unable to log out client-side, so the local transition to
// Unauthenticated happens regardless of its outcome.
func (m *Machine) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.api.Logout(ctx); err != nil {
		m.logger.WithError(err).Warn("backend logout failed, clearing local session anyway")
	}
	if err := m.store.Clear(); err != nil {
		m.logger.WithError(err).Error("failed to clear credential on logout")
	}
	m.setState(Snapshot{State: StateUnauthenticated})
}

// Resync re-derives the session from the token store. Used when the
// credential slot changed underneath a long-running console (another process
// logged in or out) and after a forced expiry.
func (m *Machine) Resync(ctx context.Context) Snapshot {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.store.Load(); err != nil {
		m.setState(Snapshot{State: StateUnauthenticated})
		return m.Current()
	}
	m.resolveIdentity(ctx)
	return m.Current()
}

// Current returns the session snapshot.
func (m *Machine) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// IsAdmin reports whether the current session is an authenticated admin.
func (m *Machine) IsAdmin() bool {
	return m.Current().IsAdmin()
}

// Subscribe returns a channel receiving session snapshots on every
// transition, plus a cancel function. Notifications coalesce: a slow
// consumer sees the latest snapshot, not every intermediate one.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan Snapshot, 1)
	m.subscribers[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
	return ch, cancel
}

// resolveIdentity calls the identity endpoint and applies the resulting
// transition. Failure is the expected path for a stale or revoked
// credential: clear it, settle Unauthenticated, no retry.
func (m *Machine) resolveIdentity(ctx context.Context) *Identity {
	ident, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.logger.WithError(err).Info("identity resolution failed, session is unauthenticated")
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.WithError(clearErr).Error("failed to clear stale credential")
		}
		m.setState(Snapshot{State: StateUnauthenticated})
		return nil
	}

	m.setState(Snapshot{State: StateAuthenticated, Identity: ident})
	return ident
}

func (m *Machine) setState(next Snapshot) {
	m.mu.Lock()
	m.snapshot = next
	if m.metrics != nil {
		m.metrics.SessionTransitionsTotal.WithLabelValues(next.State.String()).Inc()
	}
	subscribers := make([]chan Snapshot, 0, len(m.subscribers))
	for _, ch := range m.subscribers {
		subscribers = append(subscribers, ch)
	}
	m.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- next:
		default:
			// Replace the pending snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}
