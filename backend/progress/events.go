package progress

import "sync"

// Event topics. Delivery is synchronous, best-effort, at-most-once to
// the handlers registered at publish time; a listener that missed an
// event simply reads stale data until its next fetch.
const (
	EventProgressUpdated        = "progress-updated"
	EventSubjectProgressUpdated = "subject-progress-updated"
)

type Event struct {
	UserID   uint
	Snapshot Snapshot
}

type Handler func(Event)

// Bus is a minimal named-topic fan-out. Not a queue: no buffering, no
// ordering guarantee beyond "delivered after the write", no retry.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers fn for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

func (b *Bus) Publish(topic string, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}
