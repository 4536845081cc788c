package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/api/metrics"
	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// WatcherState is the expiry watcher's lifecycle state.
type WatcherState int

const (
	WatcherIdle WatcherState = iota
	WatcherArmed
	WatcherLoggedOut
)

// ExpiryWatcher schedules an automatic logout at a credential's expiry
// instant and reacts to external revocation signals on the bus.
//
// State machine: Idle until Start; Start decodes the credential expiry and
// either stays Idle (no credential), logs out immediately (elapsed or
// malformed), or arms a one-shot timer (future expiry). Armed transitions to
// LoggedOut on timer fire or on a session_revoked event for the same user.
// Stop cancels the timer and the subscription so no callback outlives the
// watcher.
type ExpiryWatcher struct {
	tokens ports.TokenStore
	state  *StateContainer
	bus    ports.EventBus
	now    func() time.Time
	log    zerolog.Logger

	mu     sync.Mutex
	st     WatcherState
	timer  *time.Timer
	unsub  func()
	userID string
}

func NewExpiryWatcher(tokens ports.TokenStore, state *StateContainer, bus ports.EventBus, log zerolog.Logger) *ExpiryWatcher {
	return &ExpiryWatcher{
		tokens: tokens,
		state:  state,
		bus:    bus,
		now:    time.Now,
		log:    log,
		st:     WatcherIdle,
	}
}

// Start inspects the credential and arms the watcher. The revocation
// subscription is registered before the expiry is decoded, so no window
// exists where an external logout could be missed while arming.
func (w *ExpiryWatcher) Start(ctx context.Context, userID, token string) {
	w.mu.Lock()
	w.userID = userID
	w.unsub = w.bus.Subscribe(ports.EventSessionRevoked, func(e ports.Event) {
		if e.UserID == userID {
			w.logout(context.WithoutCancel(ctx), "revoked")
		}
	})
	w.mu.Unlock()

	if token == "" {
		return // Idle: nothing to watch
	}

	exp, err := domain.DecodeExpiry(token)
	if err != nil {
		// malformed credential is treated as already expired
		w.logout(ctx, "malformed")
		return
	}

	remaining := exp.Sub(w.now())
	if remaining <= 0 {
		w.logout(ctx, "expired")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st == WatcherLoggedOut {
		return // revoked while we were decoding
	}
	w.st = WatcherArmed
	w.timer = time.AfterFunc(remaining, func() {
		w.logout(context.WithoutCancel(ctx), "expired")
	})
}

// Stop releases the timer and the bus subscription. Safe to call twice.
func (w *ExpiryWatcher) Stop() {
	w.mu.Lock()
	timer, unsub := w.timer, w.unsub
	w.timer, w.unsub = nil, nil
	w.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if unsub != nil {
		unsub()
	}
}

// State reports the current lifecycle state.
func (w *ExpiryWatcher) State() WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st
}

// logout transitions to LoggedOut exactly once: it clears the credential and
// the auth state. Re-entrant calls (timer racing a revocation event, or the
// token store's own revoked signal echoing back) are no-ops.
func (w *ExpiryWatcher) logout(ctx context.Context, reason string) {
	w.mu.Lock()
	if w.st == WatcherLoggedOut {
		w.mu.Unlock()
		return
	}
	w.st = WatcherLoggedOut
	timer := w.timer
	w.timer = nil
	userID := w.userID
	w.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	if reason != "revoked" {
		// the store already cleared the credential when the signal came
		// from outside; only clear it for locally-detected expiry
		if err := w.tokens.Remove(ctx, userID); err != nil {
			w.log.Warn().Err(err).Str("user_id", userID).Msg("credential removal failed")
		}
	}
	w.state.LoggedOut()

	metrics.SessionsEndedTotal.WithLabelValues(reason).Inc()
	w.log.Info().Str("user_id", userID).Str("reason", reason).Msg("session ended")
}
