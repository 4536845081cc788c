// Package session composes the auth state container, the auth check, the
// expiry watcher and the realtime bridge into one lifecycle per
// authenticated user: open on login, settle via the session check, end on
// logout, expiry or external revocation.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
	"github.com/mindhaven/counseling-system/internal/core/service"
	"github.com/mindhaven/counseling-system/internal/realtime"
)

// Manager tracks the sessions opened in this process. An ended session
// (logout, expiry, revocation) stays tracked with its settled logged-out
// snapshot until the user's next login replaces it, so the route guard
// keeps observing the logout instead of falling back to a cache lookup
// that would resurrect the user.
type Manager struct {
	tokens   ports.TokenStore
	sessions ports.SessionService
	bus      ports.EventBus
	notifs   *realtime.NotificationCenter
	log      zerolog.Logger

	mu      sync.Mutex
	tracked map[string]*userSession
}

type userSession struct {
	state      *service.StateContainer
	watcher    *service.ExpiryWatcher
	bridge     *realtime.Bridge
	unsubState func()
}

func NewManager(tokens ports.TokenStore, sessions ports.SessionService, bus ports.EventBus, notifs *realtime.NotificationCenter, log zerolog.Logger) *Manager {
	return &Manager{
		tokens:   tokens,
		sessions: sessions,
		bus:      bus,
		notifs:   notifs,
		log:      log,
		tracked:  make(map[string]*userSession),
	}
}

// Open starts the session machinery for a freshly authenticated user. Any
// previous session for the same user is closed first — at most one active
// credential, so at most one active session per user. The watcher's timer
// and revocation listener are registered before the session check settles.
func (m *Manager) Open(ctx context.Context, user *domain.User, token string) {
	if user == nil {
		return
	}
	m.Close(user.ID)

	state := service.NewStateContainer()
	watcher := service.NewExpiryWatcher(m.tokens, state, m.bus, m.log)
	bridge := realtime.NewBridge(m.bus, m.sessions, m.notifs, m.log)
	checker := service.NewAuthChecker(m.tokens, m.sessions, state, m.log)

	changes, unsub := state.Subscribe()
	sess := &userSession{state: state, watcher: watcher, bridge: bridge, unsubState: unsub}

	m.mu.Lock()
	m.tracked[user.ID] = sess
	m.mu.Unlock()

	// re-derive the bridge binding on every auth state change: a settled
	// user connects (handshake once), a logout releases the machinery but
	// keeps the session tracked so State keeps reporting the logout
	go func() {
		for st := range changes {
			if st.IsLoading {
				continue
			}
			if st.User != nil {
				bridge.Connect(context.WithoutCancel(ctx), st.User)
				continue
			}
			bridge.Teardown()
			watcher.Stop()
			return
		}
	}()

	watcher.Start(ctx, user.ID, token)
	checker.Check(ctx, user.ID)
}

// State returns the auth snapshot for a user. The second return is false
// when no session, active or ended, is tracked for them in this process.
func (m *Manager) State(userID string) (domain.AuthState, bool) {
	m.mu.Lock()
	sess, ok := m.tracked[userID]
	m.mu.Unlock()
	if !ok {
		return domain.AuthState{}, false
	}
	return sess.state.State(), true
}

// Close tears down a user's session machinery and stops tracking it. Safe
// to call when no session is open.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	sess, ok := m.tracked[userID]
	delete(m.tracked, userID)
	m.mu.Unlock()
	if !ok {
		return
	}

	sess.watcher.Stop()
	sess.bridge.Teardown()
	sess.unsubState()
}
