package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

func TestAuthChecker_NoCredentialSkipsSessionQuery(t *testing.T) {
	tokens := newStubTokenStore()
	sessions := &stubSessionService{}
	state := NewStateContainer()
	checker := NewAuthChecker(tokens, sessions, state, zerolog.Nop())

	checker.Check(context.Background(), "u1")

	if sessions.callCount() != 0 {
		t.Fatalf("no stored credential must not trigger a session query")
	}
	st := state.State()
	if st.IsLoading {
		t.Fatalf("check must complete immediately")
	}
	if st.IsAuthenticated {
		t.Fatalf("expected unauthenticated state")
	}
}

func TestAuthChecker_StoredCredentialVerifies(t *testing.T) {
	tokens := newStubTokenStore()
	_ = tokens.Set(context.Background(), "u1", "tok", 0)
	sessions := &stubSessionService{user: &domain.User{ID: "u1", Role: domain.RoleCounselor}}
	state := NewStateContainer()
	checker := NewAuthChecker(tokens, sessions, state, zerolog.Nop())

	checker.Check(context.Background(), "u1")

	if sessions.callCount() != 1 {
		t.Fatalf("expected one session query, got %d", sessions.callCount())
	}
	st := state.State()
	if !st.IsAuthenticated || st.User == nil || st.User.ID != "u1" {
		t.Fatalf("expected authenticated state, got %+v", st)
	}
	if st.IsLoading {
		t.Fatalf("check must settle the loading flag")
	}
}

func TestAuthChecker_QueryFailureLogsOut(t *testing.T) {
	tokens := newStubTokenStore()
	_ = tokens.Set(context.Background(), "u1", "tok", 0)
	sessions := &stubSessionService{err: errors.New("backend down")}
	state := NewStateContainer()
	checker := NewAuthChecker(tokens, sessions, state, zerolog.Nop())

	checker.Check(context.Background(), "u1")

	st := state.State()
	if st.IsAuthenticated || st.User != nil || st.IsLoading {
		t.Fatalf("transport failure must settle as logged out, got %+v", st)
	}
}
