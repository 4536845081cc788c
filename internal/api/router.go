package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mindhaven/counseling-system/internal/api/handler"
	"github.com/mindhaven/counseling-system/internal/api/middleware"
	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
	"github.com/mindhaven/counseling-system/internal/realtime"
	"github.com/mindhaven/counseling-system/pkg/logger"
)

// Deps bundles the wired dependencies the router needs.
type Deps struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Auth      ports.AuthService
	Sessions  ports.SessionService
	Manager   ports.SessionManager
	Tokens    ports.TokenStore
	Notifs    *realtime.NotificationCenter
	Policies  *domain.PolicyTable
	JWTSecret string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("counseling"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Manager)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	notifHandler := handler.NewNotificationHandler(deps.Notifs)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Protected routes: verified claims first, then the route guard ---
	authMiddleware := middleware.Auth(deps.JWTSecret)
	resolver := middleware.ResolverFunc(resolveState(deps.Manager, deps.Tokens, deps.Sessions))
	protected := e.Group("", authMiddleware, middleware.Guard(deps.Policies, resolver))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", sessionHandler.Me)
	protected.GET("/notifications", notifHandler.List)
	protected.POST("/notifications/:id/read", notifHandler.MarkRead)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

// resolveState builds the per-request auth snapshot. A session opened in
// this process answers from its auth state container, which includes the
// in-flight loading phase and any logout the expiry watcher observed. With
// no local session the stored credential decides: absent credential reads
// as signed out, otherwise the session query supplies the user. A lookup
// failure reads as "no user", so the guard redirects to sign-in rather than
// surfacing a transport error.
func resolveState(manager ports.SessionManager, tokens ports.TokenStore, sessions ports.SessionService) func(ctx context.Context, userID string) domain.AuthState {
	return func(ctx context.Context, userID string) domain.AuthState {
		if userID == "" {
			return domain.AuthState{}
		}
		if state, ok := manager.State(userID); ok {
			return state
		}
		token, err := tokens.Get(ctx, userID)
		if err != nil || token == "" {
			return domain.AuthState{}
		}
		user, err := sessions.CurrentUser(ctx, userID)
		if err != nil {
			return domain.AuthState{}
		}
		return domain.AuthState{User: user, IsAuthenticated: true}
	}
}
