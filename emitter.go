package emitter

import (
	"errors"
	"sync"
)

// ErrNilCallback is returned by AddListener when the callback is nil.
var ErrNilCallback = errors.New("emitter: callback cannot be nil")

// Emitter is a thread-safe registry of listeners keyed by category.
// Producers emit typed events tagged with a category; every callback
// registered for that category is invoked synchronously on the emitting
// goroutine.
//
// The zero value is ready to use. All methods are safe for concurrent
// use; the Emitter requires no external locking.
type Emitter[C comparable, E any] struct {
	mu        sync.Mutex
	listeners map[C][]entry[C, E]
	lastID    ListenerID
}

// entry pairs a listener's callback with its registry-unique ID.
type entry[C comparable, E any] struct {
	id ListenerID
	cb Callback[C, E]
}

// New creates an empty Emitter.
func New[C comparable, E any]() *Emitter[C, E] {
	return &Emitter[C, E]{
		listeners: make(map[C][]entry[C, E]),
	}
}

// AddListener registers cb for events of the given category and returns
// an ID for later removal. Multiple listeners may be registered for the
// same category; each gets a distinct ID. A nil callback is rejected
// with ErrNilCallback and nothing is registered.
func (e *Emitter[C, E]) AddListener(category C, cb Callback[C, E]) (ListenerID, error) {
	if cb == nil {
		return 0, ErrNilCallback
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[C][]entry[C, E])
	}

	e.lastID++
	e.listeners[category] = append(e.listeners[category], entry[C, E]{id: e.lastID, cb: cb})
	return e.lastID, nil
}

// RemoveListener unregisters the listener with the given ID. Unknown or
// already-removed IDs are a no-op, so removal is idempotent. An emission
// that snapshotted this listener before removal completed will still
// invoke it once.
func (e *Emitter[C, E]) RemoveListener(id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for category, entries := range e.listeners {
		for i, ent := range entries {
			if ent.id != id {
				continue
			}
			e.listeners[category] = append(entries[:i], entries[i+1:]...)
			if len(e.listeners[category]) == 0 {
				delete(e.listeners, category)
			}
			return // IDs are unique, at most one entry matches
		}
	}
}

// Emit invokes every callback currently registered for category, passing
// it the category and event. Callbacks run synchronously on the calling
// goroutine, in no guaranteed order; Emit returns after the last one.
//
// The matching callbacks are copied out under the lock and invoked after
// it is released, so a callback may add or remove listeners (including
// removing itself) without deadlocking. Listeners registered or removed
// after the snapshot is taken are not observed by this emission.
//
// A panic in a callback propagates to the caller and aborts delivery to
// the remaining listeners of this emission.
func (e *Emitter[C, E]) Emit(category C, event E) {
	e.mu.Lock()
	entries := e.listeners[category]
	snapshot := make([]Callback[C, E], len(entries))
	for i, ent := range entries {
		snapshot[i] = ent.cb
	}
	e.mu.Unlock()

	for _, cb := range snapshot {
		cb(category, event)
	}
}

// ListenerCount returns the total number of registered listeners.
func (e *Emitter[C, E]) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, entries := range e.listeners {
		count += len(entries)
	}
	return count
}

// ListenerCountFor returns the number of listeners registered for the
// given category.
func (e *Emitter[C, E]) ListenerCountFor(category C) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[category])
}
