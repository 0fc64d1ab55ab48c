// Package events carries catalog change notifications from the service to
// anything that renders catalog state. Subscribers re-read the catalog when
// they receive an event; events never carry the changed records themselves.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Type string

const (
	CategoryCreated Type = "category.created"
	CategoryUpdated Type = "category.updated"
	CategoryDeleted Type = "category.deleted"
	CatalogSeeded   Type = "catalog.seeded"
	ItemCreated     Type = "item.created"
	ItemUpdated     Type = "item.updated"
	ItemDeleted     Type = "item.deleted"
)

// Event describes one committed catalog mutation.
type Event struct {
	Type       Type      `json:"type"`
	CategoryID string    `json:"category_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	At         time.Time `json:"at"`
}

const subscriberBuffer = 64

// Broker fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full is dropped and its channel closed.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *zap.Logger
}

func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.remove(ch) })
	}
	return ch, cancel
}

func (b *Broker) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping slow event subscriber", zap.String("event", string(ev.Type)))
			delete(b.subs, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}
