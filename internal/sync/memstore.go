package sync

import (
	"context"
	"sync"
)

// MemDocStore is an in-memory DocStore. It backs tests and ephemeral
// servers that do not need durable remote state.
type MemDocStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

var _ DocStore = (*MemDocStore)(nil)

// NewMemDocStore creates an empty in-memory document store.
func NewMemDocStore() *MemDocStore {
	return &MemDocStore{docs: make(map[string]map[string]Document)}
}

// Get returns a document by parent and ID.
func (s *MemDocStore) Get(_ context.Context, parent, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[parent][id]
	if !ok {
		return Document{}, ErrDocNotFound
	}
	return doc, nil
}

// List returns all documents under a parent.
func (s *MemDocStore) List(_ context.Context, parent string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0, len(s.docs[parent]))
	for _, doc := range s.docs[parent] {
		out = append(out, doc)
	}
	return out, nil
}

// Upsert creates or replaces a document.
func (s *MemDocStore) Upsert(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(doc)
	return nil
}

// Delete removes a document if present.
func (s *MemDocStore) Delete(_ context.Context, parent, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[parent], id)
	return nil
}

// BatchWrite upserts multiple documents in one call.
func (s *MemDocStore) BatchWrite(_ context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.put(doc)
	}
	return nil
}

func (s *MemDocStore) put(doc Document) {
	if s.docs[doc.Parent] == nil {
		s.docs[doc.Parent] = make(map[string]Document)
	}
	s.docs[doc.Parent][doc.ID] = doc
}
