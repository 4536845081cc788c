package ports

import "context"

// Realtime event names. The set is fixed: the bridge's event→tag table must
// stay exhaustive over these.
const (
	EventSessionRevoked    = "session_revoked"
	EventAuthenticate      = "authenticate"
	EventBookingUpdated    = "booking_updated"
	EventCounselorAssigned = "counselor_assigned"
	EventNewAssignment     = "new_assignment"
	EventAdminUpdate       = "admin_update"
	EventFeedbackReceived  = "feedback_received"
)

// Event is a message carried on the bus. UserID identifies the affected
// user where the event is user-scoped; Role carries the sender's role on
// the authenticate handshake.
type Event struct {
	Name   string            `json:"name"`
	UserID string            `json:"user_id,omitempty"`
	Role   string            `json:"role,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

// EventHandler consumes one bus event.
type EventHandler func(Event)

// EventBus is the explicit pub/sub channel replacing implicit storage
// events: publishers and subscribers are visible in the wiring, not hidden
// behind a storage mechanism. Subscribe returns an unsubscribe func that
// must be called on teardown so no handler outlives its owner.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(name string, fn EventHandler) (unsubscribe func())
}
