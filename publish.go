package matching

import (
	"sync"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// EventPublisher receives the events produced while handling a request.
//
// Implementations must either process events synchronously before returning
// or copy what they need; the engine gives no guarantee about the events'
// lifetime after Publish returns.
type EventPublisher interface {
	Publish(...protocol.Event)
}

// MemoryEventPublisher stores events in memory, useful for testing.
type MemoryEventPublisher struct {
	mu     sync.RWMutex
	events []protocol.Event
}

// NewMemoryEventPublisher creates a new MemoryEventPublisher.
func NewMemoryEventPublisher() *MemoryEventPublisher {
	return &MemoryEventPublisher{
		events: make([]protocol.Event, 0),
	}
}

// Publish appends events to the in-memory slice.
func (m *MemoryEventPublisher) Publish(events ...protocol.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// Count returns the number of events stored.
func (m *MemoryEventPublisher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Get returns the event at the specified index.
func (m *MemoryEventPublisher) Get(index int) protocol.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events[index]
}

// Events returns a copy of all events stored.
func (m *MemoryEventPublisher) Events() []protocol.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]protocol.Event, len(m.events))
	copy(events, m.events)
	return events
}

// Reset drops all stored events.
func (m *MemoryEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = m.events[:0]
}

// DiscardEventPublisher discards all events, useful for benchmarking.
type DiscardEventPublisher struct {
}

// NewDiscardEventPublisher creates a new DiscardEventPublisher.
func NewDiscardEventPublisher() *DiscardEventPublisher {
	return &DiscardEventPublisher{}
}

// Publish does nothing.
func (p *DiscardEventPublisher) Publish(events ...protocol.Event) {

}
