package domain

import "strings"

// GuardDecision is the outcome of evaluating an auth snapshot against a
// route policy.
type GuardDecision int

const (
	// DecisionWait: session check still in flight — render nothing,
	// redirect nowhere.
	DecisionWait GuardDecision = iota
	// DecisionAllow: user present and role permitted.
	DecisionAllow
	// DecisionRedirectSignIn: no settled user.
	DecisionRedirectSignIn
	// DecisionRedirectRole: user present but role not permitted; send them
	// to their own landing route.
	DecisionRedirectRole
)

// Canonical client-side routes.
const (
	RouteSignIn        = "/signin"
	RouteClientRoot    = "/dashboard"
	RouteAdminRoot     = "/admin"
	RouteCounselorRoot = "/counselor"
)

// LandingRoute maps a role to its canonical landing page. Unrecognised roles
// fall back to the sign-in route.
func LandingRoute(r Role) string {
	switch r {
	case RoleClient:
		return RouteClientRoot
	case RoleAdmin:
		return RouteAdminRoot
	case RoleCounselor:
		return RouteCounselorRoot
	}
	return RouteSignIn
}

// RoutePolicy binds a path prefix to the set of roles allowed through.
// Public is an explicit marker: no auth check at all, not "all roles".
type RoutePolicy struct {
	Prefix string
	Public bool
	Roles  []Role
}

// Allows reports whether the policy admits the given role.
func (p RoutePolicy) Allows(r Role) bool {
	for _, allowed := range p.Roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// PolicyTable is the static path-prefix → policy mapping. It is built once
// at startup and never mutated afterwards; longest prefix wins so that
// /admin/reports resolves to the /admin policy, not the catch-all.
type PolicyTable struct {
	policies []RoutePolicy
	fallback RoutePolicy
}

// NewPolicyTable builds a table from the given policies. The fallback —
// applied when no prefix matches — restricts to all roles, so every path in
// the application maps to exactly one policy.
func NewPolicyTable(policies ...RoutePolicy) *PolicyTable {
	return &PolicyTable{
		policies: policies,
		fallback: RoutePolicy{Prefix: "/", Roles: AllRoles},
	}
}

// DefaultPolicyTable mirrors the application's route map.
func DefaultPolicyTable() *PolicyTable {
	return NewPolicyTable(
		RoutePolicy{Prefix: RouteSignIn, Public: true},
		RoutePolicy{Prefix: "/auth", Public: true},
		RoutePolicy{Prefix: "/health", Public: true},
		RoutePolicy{Prefix: "/metrics", Public: true},
		RoutePolicy{Prefix: RouteClientRoot, Roles: []Role{RoleClient}},
		RoutePolicy{Prefix: RouteAdminRoot, Roles: []Role{RoleAdmin}},
		RoutePolicy{Prefix: RouteCounselorRoot, Roles: []Role{RoleCounselor}},
		RoutePolicy{Prefix: "/me", Roles: AllRoles},
		RoutePolicy{Prefix: "/notifications", Roles: AllRoles},
	)
}

// Lookup resolves the policy for a path. Longest matching prefix wins.
func (t *PolicyTable) Lookup(path string) RoutePolicy {
	best := t.fallback
	bestLen := -1
	for _, p := range t.policies {
		if prefixMatch(path, p.Prefix) && len(p.Prefix) > bestLen {
			best = p
			bestLen = len(p.Prefix)
		}
	}
	return best
}

// prefixMatch matches on whole path segments: /admin matches /admin and
// /admin/x but not /administrator.
func prefixMatch(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}

// Evaluate derives the guard decision for an auth snapshot against a policy.
// It is a pure function: callers re-run it whenever the snapshot changes, so
// a logout observed mid-session flips the decision on the next evaluation.
func Evaluate(state AuthState, policy RoutePolicy) GuardDecision {
	if policy.Public {
		return DecisionAllow
	}
	if state.IsLoading {
		return DecisionWait
	}
	if state.User == nil {
		return DecisionRedirectSignIn
	}
	if !policy.Allows(state.User.Role) {
		return DecisionRedirectRole
	}
	return DecisionAllow
}

// RedirectTarget resolves where a non-Allow decision should send the client.
func RedirectTarget(d GuardDecision, state AuthState) string {
	switch d {
	case DecisionRedirectSignIn:
		return RouteSignIn
	case DecisionRedirectRole:
		if state.User != nil {
			return LandingRoute(state.User.Role)
		}
		return RouteSignIn
	}
	return ""
}
