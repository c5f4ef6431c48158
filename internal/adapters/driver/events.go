// Package driver holds plumbing shared by the device adapters.
package driver

import (
	"sync"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Events is a device's single event channel plus the bookkeeping needed to
// close it safely while producer goroutines may still be sending.
//
// Every producer obtains a slot with Acquire before sending and releases it
// with Release. Shutdown refuses new slots, unblocks pending sends, waits for
// the slots to drain and then closes the channel.
type Events struct {
	ch   chan domain.Event
	done chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewEvents creates an event channel with the given buffer.
func NewEvents(buffer int) *Events {
	return &Events{
		ch:   make(chan domain.Event, buffer),
		done: make(chan struct{}),
	}
}

// C returns the receive side.
func (e *Events) C() <-chan domain.Event { return e.ch }

// Done is closed when shutdown begins.
func (e *Events) Done() <-chan struct{} { return e.done }

// Acquire reserves a producer slot. It returns false after shutdown began.
func (e *Events) Acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.wg.Add(1)
	return true
}

// Release returns a producer slot.
func (e *Events) Release() { e.wg.Done() }

// Send delivers ev. The caller must hold a slot. It returns false if
// shutdown began before the event could be delivered.
func (e *Events) Send(ev domain.Event) bool {
	select {
	case e.ch <- ev:
		return true
	case <-e.done:
		return false
	}
}

// Closed reports whether shutdown has begun.
func (e *Events) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Shutdown stops producers, runs beforeWait (typically closing the transport
// so blocked readers return), waits for producers, offers final without
// blocking and closes the channel. It returns false if already shut down.
func (e *Events) Shutdown(beforeWait func(), final domain.Event) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.closed = true
	e.mu.Unlock()

	close(e.done)
	if beforeWait != nil {
		beforeWait()
	}
	e.wg.Wait()

	if final != nil {
		select {
		case e.ch <- final:
		default:
		}
	}
	close(e.ch)
	return true
}
