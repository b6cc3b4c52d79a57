// Package sync implements the optional cloud-sync bridge: a document
// store abstraction, sync-code issuance, bearer tokens, and the HTTP
// server and client that move items between devices.
//
// Local persistence never depends on this package. Replication is
// best-effort: remote failures are logged and surfaced as events, never
// retried, and never block a local write.
package sync

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrDocNotFound is returned when a document does not exist.
var ErrDocNotFound = errors.New("document not found")

// Document is one record in a DocStore. Parent scopes documents the way
// a collection or owning user ID would in a hosted document database.
type Document struct {
	Parent string          `json:"parent"`
	ID     string          `json:"id"`
	Data   json.RawMessage `json:"data"`
}

// DocStore is the minimal capability surface the sync path needs from a
// document database. Any document or key-value backend can satisfy it;
// nothing in this package depends on a specific vendor.
type DocStore interface {
	// Get returns a document by parent and ID.
	// Returns ErrDocNotFound if it does not exist.
	Get(ctx context.Context, parent, id string) (Document, error)

	// List returns all documents under a parent.
	List(ctx context.Context, parent string) ([]Document, error)

	// Upsert creates or replaces a document.
	Upsert(ctx context.Context, doc Document) error

	// Delete removes a document. Missing documents are a no-op.
	Delete(ctx context.Context, parent, id string) error

	// BatchWrite upserts multiple documents in one call.
	BatchWrite(ctx context.Context, docs []Document) error
}
