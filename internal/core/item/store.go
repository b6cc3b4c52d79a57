package item

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("item not found")

// Store defines the interface for item persistence.
//
// The store is the single writer of truth: the triage machine and all
// other consumers mutate items only by handing revised copies to Upsert.
type Store interface {
	// Fetch returns items matching the filters, ordered by created_at DESC.
	// Unreadable or corrupt backing storage yields an empty result, not
	// an error.
	Fetch(ctx context.Context, filters Filters) ([]Item, error)

	// Get returns a single item by ID.
	// Returns ErrNotFound if the item does not exist.
	Get(ctx context.Context, id string) (Item, error)

	// Upsert creates or updates an item. A zero ID creates a new item
	// with defaults layered under the provided fields; an existing ID
	// shallow-merges the provided non-zero fields over the stored item.
	// The update timestamp is refreshed either way, and change events
	// are published after the write succeeds.
	Upsert(ctx context.Context, partial Item) (Item, error)

	// Delete removes the item with the given ID. Deleting an absent ID
	// is a no-op that still succeeds.
	Delete(ctx context.Context, id string) error

	// AllTags returns the distinct user tags across all items,
	// recomputed on each call.
	AllTags(ctx context.Context) ([]string, error)

	// StageCounts returns per-stage item counts, recomputed on each
	// call. Items with a missing or unrecognized stage count as inbox.
	StageCounts(ctx context.Context) (map[Stage]int, error)
}
