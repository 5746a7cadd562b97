// Package session provides live session tracking: one session per
// connection, at most one playing session per character, and the
// per-session outbox bridging the game loop to the transport.
package session

import (
	"fmt"
	"sync"

	"github.com/thornvale/mud/internal/game/event"
)

// Outbox routes events emitted by the game loop to a channel drained by the
// transport's write goroutine. Enqueue order is preserved.
type Outbox struct {
	mu     sync.Mutex
	events chan event.Event
	closed bool
}

// NewOutbox creates an Outbox with the given buffer size.
//
// Postcondition: Returns an open Outbox; bufferSize <= 0 falls back to 64.
func NewOutbox(bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Outbox{events: make(chan event.Event, bufferSize)}
}

// Push enqueues an event for the transport to send.
//
// Postcondition: The event is enqueued, or an error is returned when the
// outbox is closed or full. A full outbox indicates a stalled client; the
// event is dropped rather than blocking the game loop.
func (o *Outbox) Push(ev event.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox is closed")
	}
	select {
	case o.events <- ev:
		return nil
	default:
		return fmt.Errorf("outbox buffer full")
	}
}

// Events returns the read-only event channel drained by the transport.
func (o *Outbox) Events() <-chan event.Event {
	return o.events
}

// Close closes the outbox. Further Push calls fail.
//
// Postcondition: The events channel is closed exactly once.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.events)
}
