// Package emitter provides a generic publish/subscribe listener registry.
package emitter

// ListenerID identifies a registered listener. IDs are allocated
// monotonically by an Emitter and are never reused, so a stale ID held
// after removal can never match a newer listener. The zero value is never
// issued and may be used as a "no listener" sentinel.
type ListenerID uint64

// Callback is invoked for every emitted event whose category matches the
// listener's registration. It runs synchronously on the emitting
// goroutine and must not modify the event payload.
type Callback[C comparable, E any] func(category C, event E)

// Subscriber is the subscription-only surface of an Emitter. Embedding
// components expose this to third parties while keeping the publish side
// to themselves.
type Subscriber[C comparable, E any] interface {
	AddListener(category C, cb Callback[C, E]) (ListenerID, error)
	RemoveListener(id ListenerID)
}

// Publisher is the publish-only surface of an Emitter.
type Publisher[C comparable, E any] interface {
	Emit(category C, event E)
}
