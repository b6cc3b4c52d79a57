package eventbus

import "github.com/colonyops/wcap/internal/core/item"

// Event names. Keep list sorted A-Z.
const (
	EventItemDeleted  Event = "item.deleted"
	EventItemSaved    Event = "item.saved"
	EventItemsChanged Event = "items.changed"
	EventSyncFailed   Event = "sync.failed"
	EventSyncPushed   Event = "sync.pushed"
)

// ItemsChangedPayload is emitted after any store mutation with the full
// refreshed item list.
type ItemsChangedPayload struct {
	Items []item.Item
}

// ItemSavedPayload is emitted when a single item is created or updated.
type ItemSavedPayload struct {
	Item item.Item
}

// ItemDeletedPayload is emitted when an item is removed from the store.
type ItemDeletedPayload struct {
	ID string
}

// SyncPushedPayload is emitted when an item is replicated to the remote
// sync endpoint.
type SyncPushedPayload struct {
	Item item.Item
}

// SyncFailedPayload is emitted when best-effort replication fails.
// Failures are logged and surfaced here, never retried.
type SyncFailedPayload struct {
	ItemID string
	Err    error
}

// SubscribeItemsChanged registers a subscriber for items.changed.
// The returned function removes the subscription.
func (b *Bus) SubscribeItemsChanged(fn func(ItemsChangedPayload)) func() {
	return b.subscribe(EventItemsChanged, func(p any) { fn(p.(ItemsChangedPayload)) })
}

// PublishItemsChanged emits items.changed to all current subscribers.
func (b *Bus) PublishItemsChanged(p ItemsChangedPayload) {
	b.publish(EventItemsChanged, p)
}

// SubscribeItemSaved registers a subscriber for item.saved.
func (b *Bus) SubscribeItemSaved(fn func(ItemSavedPayload)) func() {
	return b.subscribe(EventItemSaved, func(p any) { fn(p.(ItemSavedPayload)) })
}

// PublishItemSaved emits item.saved to all current subscribers.
func (b *Bus) PublishItemSaved(p ItemSavedPayload) {
	b.publish(EventItemSaved, p)
}

// SubscribeItemDeleted registers a subscriber for item.deleted.
func (b *Bus) SubscribeItemDeleted(fn func(ItemDeletedPayload)) func() {
	return b.subscribe(EventItemDeleted, func(p any) { fn(p.(ItemDeletedPayload)) })
}

// PublishItemDeleted emits item.deleted to all current subscribers.
func (b *Bus) PublishItemDeleted(p ItemDeletedPayload) {
	b.publish(EventItemDeleted, p)
}

// SubscribeSyncPushed registers a subscriber for sync.pushed.
func (b *Bus) SubscribeSyncPushed(fn func(SyncPushedPayload)) func() {
	return b.subscribe(EventSyncPushed, func(p any) { fn(p.(SyncPushedPayload)) })
}

// PublishSyncPushed emits sync.pushed to all current subscribers.
func (b *Bus) PublishSyncPushed(p SyncPushedPayload) {
	b.publish(EventSyncPushed, p)
}

// SubscribeSyncFailed registers a subscriber for sync.failed.
func (b *Bus) SubscribeSyncFailed(fn func(SyncFailedPayload)) func() {
	return b.subscribe(EventSyncFailed, func(p any) { fn(p.(SyncFailedPayload)) })
}

// PublishSyncFailed emits sync.failed to all current subscribers.
func (b *Bus) PublishSyncFailed(p SyncFailedPayload) {
	b.publish(EventSyncFailed, p)
}
