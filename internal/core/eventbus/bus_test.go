package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wcap/internal/core/item"
)

func TestBus_Publish_dispatches_in_subscription_order(t *testing.T) {
	bus := New()

	var order []int
	bus.SubscribeItemDeleted(func(ItemDeletedPayload) { order = append(order, 1) })
	bus.SubscribeItemDeleted(func(ItemDeletedPayload) { order = append(order, 2) })
	bus.SubscribeItemDeleted(func(ItemDeletedPayload) { order = append(order, 3) })

	bus.PublishItemDeleted(ItemDeletedPayload{ID: "a1"})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_Publish_delivers_typed_payload(t *testing.T) {
	bus := New()

	var got ItemSavedPayload
	bus.SubscribeItemSaved(func(p ItemSavedPayload) { got = p })

	saved := item.Item{ID: "x9", Title: "read later"}
	bus.PublishItemSaved(ItemSavedPayload{Item: saved})

	assert.Equal(t, "x9", got.Item.ID)
	assert.Equal(t, "read later", got.Item.Title)
}

func TestBus_Publish_panicking_subscriber_does_not_stop_fanout(t *testing.T) {
	bus := New()

	var calls []string
	bus.SubscribeItemsChanged(func(ItemsChangedPayload) {
		calls = append(calls, "first")
		panic("subscriber exploded")
	})
	bus.SubscribeItemsChanged(func(ItemsChangedPayload) {
		calls = append(calls, "second")
	})

	var panics []any
	bus.OnPanic(func(_ Event, _ any, recovered any) {
		panics = append(panics, recovered)
	})

	require.NotPanics(t, func() {
		bus.PublishItemsChanged(ItemsChangedPayload{})
	})

	assert.Equal(t, []string{"first", "second"}, calls)
	require.Len(t, panics, 1)
	assert.Equal(t, "subscriber exploded", panics[0])
}

func TestBus_Subscribe_returns_working_unsubscribe(t *testing.T) {
	bus := New()

	var first, second int
	unsub := bus.SubscribeItemDeleted(func(ItemDeletedPayload) { first++ })
	bus.SubscribeItemDeleted(func(ItemDeletedPayload) { second++ })

	bus.PublishItemDeleted(ItemDeletedPayload{ID: "a"})
	unsub()
	bus.PublishItemDeleted(ItemDeletedPayload{ID: "b"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestBus_Unsubscribe_is_idempotent(t *testing.T) {
	bus := New()

	calls := 0
	unsub := bus.SubscribeItemSaved(func(ItemSavedPayload) { calls++ })

	unsub()
	unsub()

	bus.PublishItemSaved(ItemSavedPayload{})
	assert.Zero(t, calls)
}

func TestBus_Publish_with_no_subscribers(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() {
		bus.PublishSyncFailed(SyncFailedPayload{ItemID: "gone"})
	})
}

func TestBus_OnPublish_hook_fires_after_dispatch(t *testing.T) {
	bus := New()

	var seen []Event
	bus.OnPublish(func(event Event, _ any) { seen = append(seen, event) })

	bus.PublishItemsChanged(ItemsChangedPayload{})
	bus.PublishItemDeleted(ItemDeletedPayload{ID: "z"})

	assert.Equal(t, []Event{EventItemsChanged, EventItemDeleted}, seen)
}

func TestBus_events_are_isolated_by_name(t *testing.T) {
	bus := New()

	saved := 0
	deleted := 0
	bus.SubscribeItemSaved(func(ItemSavedPayload) { saved++ })
	bus.SubscribeItemDeleted(func(ItemDeletedPayload) { deleted++ })

	bus.PublishItemSaved(ItemSavedPayload{})

	assert.Equal(t, 1, saved)
	assert.Zero(t, deleted)
}
