package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// AuthChecker composes the token store and the session lookup into the
// startup auth check: decide whether a verification round-trip is needed at
// all, run it if so, and settle the state container either way.
type AuthChecker struct {
	tokens   ports.TokenStore
	sessions ports.SessionService
	state    *StateContainer
	log      zerolog.Logger
}

func NewAuthChecker(tokens ports.TokenStore, sessions ports.SessionService, state *StateContainer, log zerolog.Logger) *AuthChecker {
	return &AuthChecker{tokens: tokens, sessions: sessions, state: state, log: log}
}

// Check runs the session check for userID. When no credential is stored the
// check completes immediately — no session query is issued. Any failure is
// converted to a logged-out state, never returned as a raw error to render
// paths. Check always leaves IsLoading false.
func (c *AuthChecker) Check(ctx context.Context, userID string) {
	token, err := c.tokens.Get(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("token store read failed")
	}
	if token == "" {
		// no credential plausibly exists: skip the round-trip entirely
		c.state.LoggedOut()
		return
	}

	c.state.CheckStarted()
	user, err := c.sessions.CurrentUser(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("session check failed")
		c.state.LoggedOut()
		return
	}
	c.state.LoggedIn(user)
}
