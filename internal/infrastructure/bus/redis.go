package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mindhaven/counseling-system/internal/core/ports"
)

const channelPrefix = "events."

// Redis is an event bus backed by Redis pub/sub. Each event name maps to one
// channel; payloads travel as JSON. A disconnect simply stops handlers from
// firing — go-redis resubscribes under the hood once the connection returns.
type Redis struct {
	client *redis.Client
	log    zerolog.Logger

	mu     sync.Mutex
	subs   map[string]*subscription
	nextID int
}

type subscription struct {
	pubsub   *redis.PubSub
	cancel   context.CancelFunc
	handlers map[int]ports.EventHandler
}

func NewRedis(client *redis.Client, log zerolog.Logger) *Redis {
	return &Redis{client: client, log: log, subs: make(map[string]*subscription)}
}

func (b *Redis) Publish(ctx context.Context, event ports.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("bus marshal: %w", err)
	}
	if err := b.client.Publish(ctx, channelPrefix+event.Name, raw).Err(); err != nil {
		return fmt.Errorf("bus publish: %w", err)
	}
	return nil
}

// Subscribe registers a handler for the named event. The first subscriber
// for a name opens the underlying Redis channel; the last unsubscribe
// closes it.
func (b *Redis) Subscribe(name string, fn ports.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[name]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		sub = &subscription{
			pubsub:   b.client.Subscribe(ctx, channelPrefix+name),
			cancel:   cancel,
			handlers: make(map[int]ports.EventHandler),
		}
		b.subs[name] = sub
		go b.receive(ctx, name, sub.pubsub)
	}

	id := b.nextID
	b.nextID++
	sub.handlers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.subs[name]
		if !ok {
			return
		}
		delete(s.handlers, id)
		if len(s.handlers) == 0 {
			s.cancel()
			_ = s.pubsub.Close()
			delete(b.subs, name)
		}
	}
}

func (b *Redis) receive(ctx context.Context, name string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event ports.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn().Err(err).Str("event", name).Msg("dropping undecodable bus message")
				continue
			}

			b.mu.Lock()
			handlers := make([]ports.EventHandler, 0)
			if s, ok := b.subs[name]; ok {
				for _, fn := range s.handlers {
					handlers = append(handlers, fn)
				}
			}
			b.mu.Unlock()

			for _, fn := range handlers {
				fn(event)
			}
		}
	}
}
