package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
)

// Handler consumes an event. Errors and panics are logged, never returned
// to the emitter.
type Handler func(models.Event) error

// ListenerID identifies a registration so it can be removed with Off.
type ListenerID uint64

// Emitter is the publishing side of the bus.
type Emitter interface {
	Emit(eventType models.EventType, data map[string]any)
}

type listener struct {
	id ListenerID
	fn Handler
}

// Bus delivers events synchronously to every handler registered for the
// event's type, in registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[models.EventType][]listener
	nextID    ListenerID
	now       func() time.Time
	log       *logger.Logger
}

// NewBus creates an empty Bus.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Default()
	}
	return &Bus{
		listeners: make(map[models.EventType][]listener),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.WithPrefix("events"),
	}
}

// On registers fn for eventType.
func (b *Bus) On(eventType models.EventType, fn Handler) ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners[eventType] = append(b.listeners[eventType], listener{id: b.nextID, fn: fn})
	return b.nextID
}

// Off removes a registration. Unknown ids are ignored.
func (b *Bus) Off(eventType models.EventType, id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.listeners[eventType]
	kept := make([]listener, 0, len(current))
	for _, l := range current {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(b.listeners, eventType)
		return
	}
	b.listeners[eventType] = kept
}

// Emit builds an event stamped with the current time and delivers it.
func (b *Bus) Emit(eventType models.EventType, data map[string]any) {
	b.Publish(models.Event{Type: eventType, Timestamp: b.now(), Data: data})
}

// Publish delivers a prebuilt event.
func (b *Bus) Publish(e models.Event) {
	b.mu.RLock()
	targets := append([]listener(nil), b.listeners[e.Type]...)
	b.mu.RUnlock()

	for _, l := range targets {
		if err := b.deliver(l, e); err != nil {
			b.log.Warn("event handler failed: type=%s, listener=%d: %v", e.Type, l.id, err)
		}
	}
}

// ListenerCount returns the number of handlers for eventType.
func (b *Bus) ListenerCount(eventType models.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

func (b *Bus) deliver(l listener, e models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.fn(e)
}
