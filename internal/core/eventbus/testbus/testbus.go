// Package testbus provides test utilities for the event bus.
// It wraps a real Bus with event recording and assertion helpers.
package testbus

import (
	"sync"
	"testing"

	"github.com/colonyops/wcap/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real Bus with event recording for tests.
type Bus struct {
	*eventbus.Bus

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus subscribed to all event types for recording.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{Bus: eventbus.New()}

	tb.SubscribeItemsChanged(func(p eventbus.ItemsChangedPayload) {
		tb.record(eventbus.EventItemsChanged, p)
	})
	tb.SubscribeItemSaved(func(p eventbus.ItemSavedPayload) {
		tb.record(eventbus.EventItemSaved, p)
	})
	tb.SubscribeItemDeleted(func(p eventbus.ItemDeletedPayload) {
		tb.record(eventbus.EventItemDeleted, p)
	})
	tb.SubscribeSyncPushed(func(p eventbus.SyncPushedPayload) {
		tb.record(eventbus.EventSyncPushed, p)
	})
	tb.SubscribeSyncFailed(func(p eventbus.SyncFailedPayload) {
		tb.record(eventbus.EventSyncFailed, p)
	})

	return tb
}

func (b *Bus) record(event eventbus.Event, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events in publish order.
func (b *Bus) Events() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOf returns the recorded events matching the given name.
func (b *Bus) EventsOf(event eventbus.Event) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range b.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded events.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// AssertPublished fails the test unless at least one event with the
// given name was recorded.
func (b *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if len(b.EventsOf(event)) == 0 {
		t.Errorf("expected event %q to be published, got %v", event, b.Events())
	}
}

// AssertNotPublished fails the test if any event with the given name was
// recorded.
func (b *Bus) AssertNotPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if got := b.EventsOf(event); len(got) > 0 {
		t.Errorf("expected no %q events, got %d", event, len(got))
	}
}
