package eventbus

import "sync"

// hooks holds the lifecycle hook state for the Bus. These are separated
// from the typed Publish/Subscribe pairs in events.go.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// OnPublish registers a hook that fires after an event has been
// dispatched to all subscribers.
func (b *Bus) OnPublish(fn func(Event, any)) {
	b.hooks.mu.Lock()
	b.hooks.onPublish = append(b.hooks.onPublish, fn)
	b.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (b *Bus) OnSubscribe(fn func(Event)) {
	b.hooks.mu.Lock()
	b.hooks.onSubscribe = append(b.hooks.onSubscribe, fn)
	b.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (b *Bus) OnPanic(fn func(Event, any, any)) {
	b.hooks.mu.Lock()
	b.hooks.onPanic = append(b.hooks.onPanic, fn)
	b.hooks.mu.Unlock()
}

func (b *Bus) runOnPublish(event Event, payload any) {
	b.hooks.mu.RLock()
	hooks := make([]func(Event, any), len(b.hooks.onPublish))
	copy(hooks, b.hooks.onPublish)
	b.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(event, payload)
	}
}

func (b *Bus) runOnSubscribe(event Event) {
	b.hooks.mu.RLock()
	hooks := make([]func(Event), len(b.hooks.onSubscribe))
	copy(hooks, b.hooks.onSubscribe)
	b.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(event)
	}
}

func (b *Bus) runOnPanic(event Event, payload any, recovered any) {
	b.hooks.mu.RLock()
	hooks := make([]func(Event, any, any), len(b.hooks.onPanic))
	copy(hooks, b.hooks.onPanic)
	b.hooks.mu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
