// Package stream bridges emitter callbacks into channels for consumers
// that prefer a select loop over a callback.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/emitter"
)

const defaultBufferSize = 64

// Event wraps an emitted payload with the time it crossed the bridge.
type Event[E any] struct {
	Payload   E
	Timestamp time.Time
}

// Bridge turns categories of an emitter into subscription channels. Each
// Listen call registers one listener on the underlying emitter; the
// listener forwards emissions into a buffered channel without blocking
// the emitting goroutine.
type Bridge[C comparable, E any] struct {
	src        emitter.Subscriber[C, E]
	mu         sync.Mutex
	conduits   map[*conduit[E]]emitter.ListenerID
	done       chan struct{}
	bufferSize int
}

// NewBridge creates a bridge over src with the default channel buffer (64).
func NewBridge[C comparable, E any](src emitter.Subscriber[C, E]) *Bridge[C, E] {
	return NewBridgeWithBuffer(src, defaultBufferSize)
}

// NewBridgeWithBuffer creates a bridge with a custom channel buffer size.
func NewBridgeWithBuffer[C comparable, E any](src emitter.Subscriber[C, E], size int) *Bridge[C, E] {
	return &Bridge[C, E]{
		src:        src,
		conduits:   make(map[*conduit[E]]emitter.ListenerID),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Listen registers a listener for category and returns a channel carrying
// its emissions. Events are dropped when the channel buffer is full, so a
// slow consumer never blocks the emitting goroutine. The listener is
// removed and the channel closed when ctx is cancelled or the bridge is
// closed.
func (b *Bridge[C, E]) Listen(ctx context.Context, category C) <-chan Event[E] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[E])
		close(ch)
		return ch
	default:
	}

	c := &conduit[E]{ch: make(chan Event[E], b.bufferSize)}

	id, err := b.src.AddListener(category, func(_ C, event E) {
		c.send(Event[E]{Payload: event, Timestamp: time.Now()})
	})
	if err != nil {
		// The forwarding callback is never nil, so registration cannot
		// fail; return a closed channel rather than panic if it does.
		close(c.ch)
		return c.ch
	}
	b.conduits[c] = id

	// Cleanup goroutine
	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return // Close tears everything down
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return // Already closed
		default:
		}

		if id, ok := b.conduits[c]; ok {
			delete(b.conduits, c)
			b.src.RemoveListener(id)
			c.close()
		}
	}()

	return c.ch
}

// SubscriberCount returns the number of active bridge channels.
func (b *Bridge[C, E]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conduits)
}

// Close removes all bridge listeners from the emitter and closes all
// subscriber channels. Close is idempotent.
func (b *Bridge[C, E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return // Already closed
	default:
	}

	close(b.done)
	for c, id := range b.conduits {
		b.src.RemoveListener(id)
		c.close()
	}
	b.conduits = nil
}

// conduit serializes sends against close so an emission snapshotted just
// before teardown cannot write to a closed channel.
type conduit[E any] struct {
	mu     sync.Mutex
	ch     chan Event[E]
	closed bool
}

func (c *conduit[E]) send(event Event[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.ch <- event:
		// Delivered
	default:
		// Channel full - drop to prevent blocking
	}
}

func (c *conduit[E]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
