package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
	"github.com/mindhaven/counseling-system/internal/infrastructure/bus"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// countLogouts subscribes to the container and counts settled logged-out
// transitions.
func countLogouts(s *StateContainer) (func() int, func()) {
	ch, cancel := s.Subscribe()
	done := make(chan struct{})
	count := 0
	go func() {
		for st := range ch {
			if !st.IsLoading && !st.IsAuthenticated {
				count++
			}
		}
		close(done)
	}()
	return func() int {
		cancel()
		<-done
		return count
	}, cancel
}

func newWatcher(t *testing.T) (*ExpiryWatcher, *stubTokenStore, *StateContainer, *bus.Memory) {
	t.Helper()
	tokens := newStubTokenStore()
	state := NewStateContainer()
	state.LoggedIn(&domain.User{ID: "u1", Role: domain.RoleClient})
	b := bus.NewMemory()
	w := NewExpiryWatcher(tokens, state, b, zerolog.Nop())
	return w, tokens, state, b
}

func TestExpiryWatcher_NoCredentialStaysIdle(t *testing.T) {
	w, tokens, _, _ := newWatcher(t)
	defer w.Stop()

	w.Start(context.Background(), "u1", "")
	if w.State() != WatcherIdle {
		t.Fatalf("expected Idle, got %v", w.State())
	}
	if tokens.removeCount() != 0 {
		t.Fatalf("no credential should be removed")
	}
}

func TestExpiryWatcher_ElapsedExpiryLogsOutSynchronously(t *testing.T) {
	w, tokens, state, _ := newWatcher(t)
	defer w.Stop()

	w.Start(context.Background(), "u1", signedToken(t, time.Now().Add(-time.Minute)))

	if w.State() != WatcherLoggedOut {
		t.Fatalf("expected LoggedOut within the same tick, got %v", w.State())
	}
	if st := state.State(); st.IsAuthenticated {
		t.Fatalf("auth state not cleared")
	}
	if tokens.removeCount() != 1 {
		t.Fatalf("expected one credential removal, got %d", tokens.removeCount())
	}
}

func TestExpiryWatcher_MalformedCredentialLogsOut(t *testing.T) {
	w, _, state, _ := newWatcher(t)
	defer w.Stop()

	w.Start(context.Background(), "u1", "not-a-credential")

	if w.State() != WatcherLoggedOut {
		t.Fatalf("malformed credential must log out, got %v", w.State())
	}
	if st := state.State(); st.IsAuthenticated {
		t.Fatalf("auth state not cleared")
	}
}

// wholeSecond returns a future instant with no sub-second part, matching
// the resolution of the exp claim.
func wholeSecond(d time.Duration) time.Time {
	return time.Unix(time.Now().Add(d).Unix(), 0)
}

func TestExpiryWatcher_ArmsAndFiresOnce(t *testing.T) {
	w, _, state, _ := newWatcher(t)
	defer w.Stop()

	finish, _ := countLogouts(state)

	// pin the clock 50ms before the exp claim so the timer is scheduled
	// for exactly that long, independent of wall-clock time
	exp := wholeSecond(time.Hour)
	w.now = func() time.Time { return exp.Add(-50 * time.Millisecond) }

	w.Start(context.Background(), "u1", signedToken(t, exp))
	if w.State() != WatcherArmed {
		t.Fatalf("expected Armed, got %v", w.State())
	}

	deadline := time.Now().Add(2 * time.Second)
	for w.State() != WatcherLoggedOut && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.State() != WatcherLoggedOut {
		t.Fatalf("timer did not fire")
	}

	time.Sleep(20 * time.Millisecond)
	if n := finish(); n != 1 {
		t.Fatalf("expected exactly one logout transition, got %d", n)
	}
}

func TestExpiryWatcher_ExpiryAtNowLogsOutWithoutTimer(t *testing.T) {
	w, tokens, state, _ := newWatcher(t)
	defer w.Stop()

	// remaining time is exactly zero: the boundary belongs to the
	// synchronous path, no timer is armed
	exp := wholeSecond(time.Hour)
	w.now = func() time.Time { return exp }

	w.Start(context.Background(), "u1", signedToken(t, exp))

	if w.State() != WatcherLoggedOut {
		t.Fatalf("expected synchronous logout, got %v", w.State())
	}
	if st := state.State(); st.IsAuthenticated {
		t.Fatalf("auth state not cleared")
	}
	if tokens.removeCount() != 1 {
		t.Fatalf("expected one credential removal, got %d", tokens.removeCount())
	}
}

func TestExpiryWatcher_RevocationCancelsTimer(t *testing.T) {
	w, tokens, state, b := newWatcher(t)
	defer w.Stop()

	finish, _ := countLogouts(state)

	w.Start(context.Background(), "u1", signedToken(t, time.Now().Add(time.Hour)))
	if w.State() != WatcherArmed {
		t.Fatalf("expected Armed, got %v", w.State())
	}

	_ = b.Publish(context.Background(), ports.Event{Name: ports.EventSessionRevoked, UserID: "u1"})

	if w.State() != WatcherLoggedOut {
		t.Fatalf("revocation must log out, got %v", w.State())
	}
	// externally revoked: the store already cleared the credential
	if tokens.removeCount() != 0 {
		t.Fatalf("watcher must not re-remove an externally revoked credential")
	}

	time.Sleep(50 * time.Millisecond)
	if n := finish(); n != 1 {
		t.Fatalf("expected exactly one logout transition, got %d", n)
	}
}

func TestExpiryWatcher_IgnoresOtherUsersRevocation(t *testing.T) {
	w, _, _, b := newWatcher(t)
	defer w.Stop()

	w.Start(context.Background(), "u1", signedToken(t, time.Now().Add(time.Hour)))
	_ = b.Publish(context.Background(), ports.Event{Name: ports.EventSessionRevoked, UserID: "someone-else"})

	if w.State() != WatcherArmed {
		t.Fatalf("revocation for another user must be ignored, got %v", w.State())
	}
}

func TestExpiryWatcher_StopCancelsPendingTimer(t *testing.T) {
	w, _, state, _ := newWatcher(t)

	finish, _ := countLogouts(state)

	exp := wholeSecond(time.Hour)
	w.now = func() time.Time { return exp.Add(-40 * time.Millisecond) }

	w.Start(context.Background(), "u1", signedToken(t, exp))
	w.Stop()

	// well past the 40ms the timer was scheduled for
	time.Sleep(120 * time.Millisecond)
	if n := finish(); n != 0 {
		t.Fatalf("stopped watcher must not fire, got %d logouts", n)
	}
}
