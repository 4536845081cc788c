package service

import (
	"context"
	"sync"
	"time"

	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// stubTokenStore is an in-memory ports.TokenStore. When bus is set, Remove
// publishes the revocation signal like the real store does.
type stubTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	removes int
	bus     ports.EventBus
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]string)}
}

func (s *stubTokenStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID], nil
}

func (s *stubTokenStore) Set(_ context.Context, userID, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *stubTokenStore) Remove(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.removes++
	bus := s.bus
	s.mu.Unlock()
	if bus != nil {
		return bus.Publish(ctx, ports.Event{Name: ports.EventSessionRevoked, UserID: userID})
	}
	return nil
}

func (s *stubTokenStore) removeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removes
}

// stubUserRepo is an in-memory ports.UserRepository that counts lookups and
// can block fetches behind a gate to provoke concurrent callers.
type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	calls int
	gate  chan struct{}
	err   error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *user
	if clone.ID == "" {
		clone.ID = user.Email
	}
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	r.calls++
	gate, err := r.gate, r.err
	u, ok := r.users[id]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// memCache is an in-memory ports.SessionCache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.User
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.User)}
}

func (c *memCache) Get(_ context.Context, tag string) (*domain.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[tag]
	if !ok {
		return nil, false, nil
	}
	clone := u
	return &clone, true, nil
}

func (c *memCache) Set(_ context.Context, tag string, user *domain.User, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tag] = *user
	return nil
}

func (c *memCache) Invalidate(_ context.Context, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		delete(c.entries, tag)
	}
	return nil
}

// stubSessionService implements ports.SessionService for the auth check
// tests.
type stubSessionService struct {
	mu    sync.Mutex
	user  *domain.User
	err   error
	calls int
}

func (s *stubSessionService) CurrentUser(_ context.Context, _ string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	clone := *s.user
	return &clone, nil
}

func (s *stubSessionService) Invalidate(_ context.Context, _ ...string) error { return nil }

func (s *stubSessionService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
