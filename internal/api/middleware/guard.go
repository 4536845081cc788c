package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindhaven/counseling-system/internal/api/metrics"
	"github.com/mindhaven/counseling-system/internal/core/domain"
)

// AuthStateResolver produces the auth snapshot for a request. The guard
// re-resolves on every request, so a logout between two requests flips the
// decision — nothing is computed once and reused.
type AuthStateResolver interface {
	Resolve(ctx context.Context, userID string) domain.AuthState
}

// ResolverFunc adapts a function to AuthStateResolver.
type ResolverFunc func(ctx context.Context, userID string) domain.AuthState

func (f ResolverFunc) Resolve(ctx context.Context, userID string) domain.AuthState {
	return f(ctx, userID)
}

// Guard gates requests on the static route policy table. Outcomes:
//   - public path: pass through, no auth check
//   - check in flight: 503 with Retry-After, no redirect
//   - no settled user: 303 to the sign-in route
//   - role not allowed: 303 to that role's landing route
//   - otherwise: next handler
//
// Redirects are single, client-side (See Other) navigations; re-evaluating
// the same unauthorized state yields the same single redirect, never a loop.
func Guard(table *domain.PolicyTable, resolver AuthStateResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			policy := table.Lookup(c.Request().URL.Path)
			if policy.Public {
				metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
				return next(c)
			}

			userID, _ := c.Get("user_id").(string)
			state := resolver.Resolve(c.Request().Context(), userID)

			switch decision := domain.Evaluate(state, policy); decision {
			case domain.DecisionWait:
				metrics.GuardDecisionsTotal.WithLabelValues("wait").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.NoContent(http.StatusServiceUnavailable)
			case domain.DecisionRedirectSignIn:
				metrics.GuardDecisionsTotal.WithLabelValues("redirect_signin").Inc()
				return c.Redirect(http.StatusSeeOther, domain.RouteSignIn)
			case domain.DecisionRedirectRole:
				metrics.GuardDecisionsTotal.WithLabelValues("redirect_role").Inc()
				return c.Redirect(http.StatusSeeOther, domain.RedirectTarget(decision, state))
			default:
				metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
				return next(c)
			}
		}
	}
}
