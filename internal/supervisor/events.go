package supervisor

import (
	"sync"
	"time"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Publisher receives every event emitted around the managed child:
// state transitions, output lines, warnings and errors, config and
// profile changes.
type Publisher interface {
	Publish(event types.Event) error
}

type noopPublisher struct{}

func (p *noopPublisher) Publish(event types.Event) error {
	return nil
}

// NewNoopPublisher returns a publisher that discards all events.
func NewNoopPublisher() Publisher {
	return &noopPublisher{}
}

// defaultSubscriberBuffer is used when Subscribe is called with a
// non-positive buffer size.
const defaultSubscriberBuffer = 64

// Broker fans events out to any number of subscribers. Delivery is
// best-effort: when a subscriber's buffer is full the event is dropped
// for that subscriber instead of blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan types.Event
	next int
}

// NewBroker returns an empty broker. It is safe for concurrent use.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan types.Event)}
}

// Publish delivers event to every current subscriber. A zero Time is
// stamped with the current time.
func (b *Broker) Publish(event types.Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			eventsDroppedTotal.Inc()
		}
	}
	eventsPublishedTotal.WithLabelValues(event.Type).Inc()
	return nil
}

// Subscribe registers a new subscriber with the given channel buffer
// size and returns its channel plus a cancel function. Cancel closes
// the channel; callers must stop reading after cancelling.
func (b *Broker) Subscribe(buffer int) (<-chan types.Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan types.Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		close(ch)
	}
	return ch, cancel
}

// SubscriberCount reports the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
