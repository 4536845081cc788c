package realtime

import (
	"fmt"
	"testing"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

func TestNotificationCenter_ListNewestFirst(t *testing.T) {
	c := NewNotificationCenter()
	c.Push("u1", "first", "", domain.NotificationInfo)
	c.Push("u1", "second", "", domain.NotificationInfo)

	list := c.List("u1")
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].Title != "second" || list[1].Title != "first" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestNotificationCenter_PerUserIsolation(t *testing.T) {
	c := NewNotificationCenter()
	c.Push("u1", "mine", "", domain.NotificationInfo)

	if len(c.List("u2")) != 0 {
		t.Fatalf("notifications leaked across users")
	}
}

func TestNotificationCenter_MarkRead(t *testing.T) {
	c := NewNotificationCenter()
	n := c.Push("u1", "hello", "", domain.NotificationSuccess)

	if !c.MarkRead("u1", n.ID) {
		t.Fatalf("expected MarkRead to find the notification")
	}
	if list := c.List("u1"); !list[0].Read {
		t.Fatalf("notification not marked read")
	}

	if c.MarkRead("u1", "missing") {
		t.Fatalf("unknown id must not be marked read")
	}
	if c.MarkRead("u2", n.ID) {
		t.Fatalf("another user's id must not be marked read")
	}
}

func TestNotificationCenter_BoundedPerUser(t *testing.T) {
	c := NewNotificationCenter()
	for i := 0; i < maxPerUser+10; i++ {
		c.Push("u1", fmt.Sprintf("n%d", i), "", domain.NotificationInfo)
	}

	list := c.List("u1")
	if len(list) != maxPerUser {
		t.Fatalf("expected cap of %d, got %d", maxPerUser, len(list))
	}
	if list[0].Title != fmt.Sprintf("n%d", maxPerUser+9) {
		t.Fatalf("newest entry missing after eviction: %+v", list[0])
	}
}
