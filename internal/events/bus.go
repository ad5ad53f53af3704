package events

import (
	"sync"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSessionStarted Type = "session.started"
	TypeSessionEnded   Type = "session.ended"
	TypeEntryCreated   Type = "entry.created"
)

// Event is one change notification. UserID scopes the event to the
// identity it concerns; Payload is the JSON-serializable detail.
type Event struct {
	Type    Type        `json:"type"`
	UserID  uuid.UUID   `json:"userId"`
	Payload interface{} `json:"payload,omitempty"`
}

const subscriberBuffer = 16

// Bus is an in-process publish/subscribe channel for session and entry
// changes. Publish never blocks: a subscriber that falls behind misses
// events rather than stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe returns a receive channel and a cancel func. Cancel is
// idempotent and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block the pipeline.
		}
	}
}
