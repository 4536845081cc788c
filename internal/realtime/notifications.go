package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

const maxPerUser = 50

// NotificationCenter is the in-memory notification feed. Entries are display
// records only: bounded per user, gone on restart, never persisted.
type NotificationCenter struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Notification
}

func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{byUser: make(map[string][]domain.Notification)}
}

// Push appends a notification for the user, evicting the oldest entry once
// the per-user cap is reached. Returns the stored record.
func (n *NotificationCenter) Push(userID, title, message string, typ domain.NotificationType) domain.Notification {
	notif := domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	list := append(n.byUser[userID], notif)
	if len(list) > maxPerUser {
		list = list[len(list)-maxPerUser:]
	}
	n.byUser[userID] = list
	return notif
}

// List returns the user's notifications, newest first.
func (n *NotificationCenter) List(userID string) []domain.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()

	list := n.byUser[userID]
	out := make([]domain.Notification, len(list))
	for i, notif := range list {
		out[len(list)-1-i] = notif
	}
	return out
}

// MarkRead flags one notification as read. Reports whether it was found.
func (n *NotificationCenter) MarkRead(userID, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	list := n.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return true
		}
	}
	return false
}
