// Package bus implements the one-to-many broadcast channel between the
// clipboard worker and its consumers.
//
// Publish never blocks: a subscriber that falls behind its buffer capacity
// loses its oldest pending changes and observes the loss as a LaggedError
// carrying the skip count on its next Recv, then resumes from the current
// position. The publisher and the other subscribers are unaffected.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/clipmind/clipmind/internal/event"
)

// DefaultCapacity is the per-subscriber buffer used when New is given a
// non-positive capacity.
const DefaultCapacity = 1000

// ErrClosed is returned by Recv once the bus is closed and the subscriber's
// buffer has drained; it is the consumer's end-of-stream signal.
var ErrClosed = errors.New("bus: closed")

// LaggedError reports that a subscriber fell behind and skipped events.
// It is recoverable: the next Recv resumes from the current position.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("bus: subscriber lagged, %d changes skipped", e.Skipped)
}

// Bus fans out published changes to all current subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	cap    int
	closed bool
}

// New returns a Bus whose subscribers each buffer up to capacity changes.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subs: make(map[*Subscription]struct{}),
		cap:  capacity,
	}
}

// Subscribe registers a new independent consumer. Subscribing to a closed
// bus yields a subscription that immediately reports ErrClosed.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		bus: b,
		ch:  make(chan *event.Change, b.cap),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers c to every subscriber without blocking. On a full buffer
// the subscriber's oldest pending change is dropped and counted against it.
// Publishing to a closed bus is a no-op.
func (b *Bus) Publish(c *event.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		s.push(c)
	}
}

// Close ends the stream: every subscriber observes ErrClosed after draining
// its buffer. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one consumer's independent view of the stream.
type Subscription struct {
	bus    *Bus
	ch     chan *event.Change
	lagged atomic.Uint64
	done   atomic.Bool
}

// push delivers c, evicting the oldest pending change when the buffer is
// full. Called with the bus lock held; never blocks.
func (s *Subscription) push(c *event.Change) {
	for {
		select {
		case s.ch <- c:
			return
		default:
		}
		select {
		case <-s.ch:
			s.lagged.Add(1)
		default:
		}
	}
}

// Recv returns the next change in publish order. It returns a *LaggedError
// when events were skipped since the previous call, ErrClosed at end of
// stream, or the context error if ctx ends first.
func (s *Subscription) Recv(ctx context.Context) (*event.Change, error) {
	if n := s.lagged.Swap(0); n > 0 {
		return nil, &LaggedError{Skipped: n}
	}
	select {
	case c, ok := <-s.ch:
		if !ok {
			return nil, ErrClosed
		}
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close detaches the subscription from the bus. Pending buffered changes are
// discarded; a later Recv reports ErrClosed.
func (s *Subscription) Close() {
	if s.done.Swap(true) {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if s.bus.closed {
		return
	}
	delete(s.bus.subs, s)
	close(s.ch)
}
