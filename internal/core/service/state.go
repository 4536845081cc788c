package service

import (
	"sync"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

const stateChanBuffer = 16

// StateContainer is the process-wide auth state holder. All mutation goes
// through the typed transition methods; consumers read snapshots or
// subscribe for changes. After every settled transition the invariant
// IsAuthenticated == (User != nil) holds.
type StateContainer struct {
	mu     sync.RWMutex
	state  domain.AuthState
	subs   map[int]chan domain.AuthState
	nextID int
}

func NewStateContainer() *StateContainer {
	return &StateContainer{
		state: domain.AuthState{IsLoading: true},
		subs:  make(map[int]chan domain.AuthState),
	}
}

// State returns the current snapshot.
func (s *StateContainer) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a listener. Every transition is delivered on the
// returned channel; the cancel func must be called on teardown.
func (s *StateContainer) Subscribe() (<-chan domain.AuthState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan domain.AuthState, stateChanBuffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// LoggedIn replaces the user wholesale and marks the session authenticated.
func (s *StateContainer) LoggedIn(user *domain.User) {
	if user == nil {
		s.LoggedOut()
		return
	}
	u := *user
	s.transition(domain.AuthState{User: &u, IsAuthenticated: true})
}

// LoggedOut clears the user entirely.
func (s *StateContainer) LoggedOut() {
	s.transition(domain.AuthState{})
}

// UserUpdated applies a partial profile patch (e.g. avatar change) to the
// current user. No-op when logged out.
func (s *StateContainer) UserUpdated(patch domain.UserPatch) {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return
	}
	updated := patch.Apply(*s.state.User)
	s.mu.Unlock()
	s.transition(domain.AuthState{User: &updated, IsAuthenticated: true})
}

// CheckStarted marks an in-flight session check.
func (s *StateContainer) CheckStarted() {
	s.mu.Lock()
	next := s.state
	next.IsLoading = true
	s.mu.Unlock()
	s.transition(next)
}

// CheckFinished settles the loading flag without touching the user.
func (s *StateContainer) CheckFinished() {
	s.mu.Lock()
	next := s.state
	next.IsLoading = false
	s.mu.Unlock()
	s.transition(next)
}

func (s *StateContainer) transition(next domain.AuthState) {
	next.IsAuthenticated = next.User != nil

	s.mu.Lock()
	s.state = next
	listeners := make([]chan domain.AuthState, 0, len(s.subs))
	for _, ch := range s.subs {
		listeners = append(listeners, ch)
	}
	s.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- next:
		default: // slow subscriber: drop rather than block the transition
		}
	}
}
