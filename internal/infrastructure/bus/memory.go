// Package bus provides the event bus implementations: an in-process bus for
// single-instance deployments and tests, and a Redis pub/sub bus for
// multi-instance fan-out.
package bus

import (
	"context"
	"sync"

	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// Memory is a synchronous in-process event bus. Publish dispatches to every
// subscriber of the event name before returning, which keeps test assertions
// deterministic.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]map[int]ports.EventHandler
	nextID int
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]ports.EventHandler)}
}

func (b *Memory) Publish(_ context.Context, event ports.Event) error {
	b.mu.RLock()
	handlers := make([]ports.EventHandler, 0, len(b.subs[event.Name]))
	for _, fn := range b.subs[event.Name] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	// dispatch outside the lock so a handler may publish or unsubscribe
	for _, fn := range handlers {
		fn(event)
	}
	return nil
}

func (b *Memory) Subscribe(name string, fn ports.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[name] == nil {
		b.subs[name] = make(map[int]ports.EventHandler)
	}
	id := b.nextID
	b.nextID++
	b.subs[name][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[name], id)
	}
}
