// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within wcap.
//
// Dispatch is synchronous: Publish invokes every current subscriber for
// the event inline, in subscription order, before returning. A panic in
// one subscriber is recovered and reported via OnPanic hooks without
// stopping the remaining subscribers or reaching the publisher. The bus
// is safe for concurrent use.
package eventbus

import "sync"

// Event identifies an event type on the bus.
type Event string

type subscriber struct {
	id int
	fn func(any)
}

// Bus is a synchronous in-process event bus.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Event][]subscriber

	hooks hooks
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Event][]subscriber)}
}

// subscribe registers an untyped callback and returns its unsubscribe
// function. Used by the typed Subscribe* methods.
func (b *Bus) subscribe(event Event, fn func(any)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	b.runOnSubscribe(event)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[event]
		for i, s := range subs {
			if s.id == id {
				b.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// publish dispatches to every current subscriber in subscription order.
// Used by the typed Publish* methods.
func (b *Bus) publish(event Event, payload any) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		b.dispatch(event, payload, s.fn)
	}

	b.runOnPublish(event, payload)
}

func (b *Bus) dispatch(event Event, payload any, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			b.runOnPanic(event, payload, r)
		}
	}()
	fn(payload)
}
