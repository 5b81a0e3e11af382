package supervisor

import (
	"sync"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// MemoryPublisher is an in-memory event publisher for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []types.Event
}

// NewMemoryPublisher creates a new in-memory event publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish stores the event in memory.
func (p *MemoryPublisher) Publish(event types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of all published events.
func (p *MemoryPublisher) Events() []types.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Clear removes all stored events.
func (p *MemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
