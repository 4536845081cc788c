// Package realtime bridges server-pushed events to cache invalidation: the
// UI reflects backend state changes without polling because each push event
// drops the cache tags it affects.
package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/api/metrics"
	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// Invalidator drops cache tags. The bridge never fetches on its own; the
// next reader through the session layer does.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// eventRoute maps one bus event onto cache tags and an optional user-facing
// notification. Roles restricts which session roles may act on the event;
// empty means any role. The table below is the single, enumerated source of
// the event→tag mapping.
type eventRoute struct {
	event string
	roles []domain.Role
	tags  func(e ports.Event) []string
	title string
	typ   domain.NotificationType
}

var eventRoutes = []eventRoute{
	{
		event: ports.EventBookingUpdated,
		tags: func(e ports.Event) []string {
			return []string{domain.BookingsTag(e.UserID)}
		},
		title: "Booking updated",
		typ:   domain.NotificationInfo,
	},
	{
		event: ports.EventCounselorAssigned,
		tags: func(e ports.Event) []string {
			return []string{domain.BookingsTag(e.UserID), domain.SessionTag(e.UserID)}
		},
		title: "Counselor assigned",
		typ:   domain.NotificationSuccess,
	},
	{
		event: ports.EventNewAssignment,
		roles: []domain.Role{domain.RoleCounselor},
		tags: func(e ports.Event) []string {
			return []string{domain.AssignmentsTag(e.UserID)}
		},
		title: "New assignment",
		typ:   domain.NotificationInfo,
	},
	{
		event: ports.EventAdminUpdate,
		roles: []domain.Role{domain.RoleAdmin},
		tags: func(e ports.Event) []string {
			return []string{domain.AdminAnalyticsTag}
		},
		title: "Platform update",
		typ:   domain.NotificationWarning,
	},
	{
		event: ports.EventFeedbackReceived,
		roles: []domain.Role{domain.RoleCounselor, domain.RoleAdmin},
		tags: func(e ports.Event) []string {
			return []string{domain.FeedbackTag(e.UserID), domain.AdminAnalyticsTag}
		},
		title: "Feedback received",
		typ:   domain.NotificationInfo,
	},
}

// Bridge subscribes to the fixed realtime event set for one authenticated
// user. Connect announces the identity with a one-time authenticate
// handshake; Teardown removes every listener and resets the handshake guard
// so a future reconnection re-handshakes.
type Bridge struct {
	bus      ports.EventBus
	sessions Invalidator
	notifs   *NotificationCenter
	log      zerolog.Logger

	mu         sync.Mutex
	user       *domain.User
	handshaken bool
	unsubs     []func()
}

func NewBridge(bus ports.EventBus, sessions Invalidator, notifs *NotificationCenter, log zerolog.Logger) *Bridge {
	return &Bridge{bus: bus, sessions: sessions, notifs: notifs, log: log}
}

// Connect binds the bridge to a user. Calling it again with the same user is
// a no-op — re-runs must not re-handshake. A nil user tears the bridge down.
func (b *Bridge) Connect(ctx context.Context, user *domain.User) {
	if user == nil {
		b.Teardown()
		return
	}

	b.mu.Lock()
	if b.handshaken && b.user != nil && b.user.ID == user.ID {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	// identity changed: drop the previous subscriptions first
	b.Teardown()

	b.mu.Lock()
	defer b.mu.Unlock()

	u := *user
	b.user = &u
	b.handshaken = true

	if err := b.bus.Publish(ctx, ports.Event{
		Name:   ports.EventAuthenticate,
		UserID: u.ID,
		Role:   string(u.Role),
	}); err != nil {
		b.log.Warn().Err(err).Str("user_id", u.ID).Msg("authenticate handshake failed")
	}
	metrics.BridgeHandshakesTotal.Inc()

	for _, route := range eventRoutes {
		route := route
		b.unsubs = append(b.unsubs, b.bus.Subscribe(route.event, func(e ports.Event) {
			b.handle(ctx, route, e)
		}))
	}
}

// Teardown removes all listeners and resets the handshake guard.
func (b *Bridge) Teardown() {
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	b.user = nil
	b.handshaken = false
	b.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (b *Bridge) handle(ctx context.Context, route eventRoute, e ports.Event) {
	b.mu.Lock()
	user := b.user
	b.mu.Unlock()
	if user == nil {
		return // torn down between dispatch and handling
	}

	// the bus is shared process-wide: role-scoped events must check the
	// bound session's role, not trust the event
	if len(route.roles) > 0 && !roleIn(user.Role, route.roles) {
		metrics.BridgeEventsTotal.WithLabelValues(route.event, "skipped").Inc()
		return
	}

	tags := route.tags(e)
	if err := b.sessions.Invalidate(ctx, tags...); err != nil {
		b.log.Warn().Err(err).Str("event", route.event).Msg("cache invalidation failed")
		metrics.BridgeEventsTotal.WithLabelValues(route.event, "error").Inc()
		return
	}
	metrics.BridgeEventsTotal.WithLabelValues(route.event, "ok").Inc()

	if b.notifs != nil {
		b.notifs.Push(user.ID, route.title, e.Data["message"], route.typ)
	}
}

func roleIn(r domain.Role, roles []domain.Role) bool {
	for _, allowed := range roles {
		if allowed == r {
			return true
		}
	}
	return false
}
