package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	gosync "sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/sync"
)

// DocStore implements sync.DocStore on a single JSON file, giving a
// locally hosted sync server durable state without a database.
type DocStore struct {
	path string
	log  zerolog.Logger

	mu   gosync.RWMutex
	docs map[string]map[string]sync.Document
}

var _ sync.DocStore = (*DocStore)(nil)

// NewDocStore creates a document store backed by the JSON file at path
// and loads its contents. A corrupt or unreadable file logs a warning
// and starts empty.
func NewDocStore(path string, log zerolog.Logger) *DocStore {
	s := &DocStore{
		path: path,
		log:  log.With().Str("cmp", "doc-store").Logger(),
	}
	s.docs = s.load()
	return s
}

// Get returns a document by parent and ID.
func (s *DocStore) Get(_ context.Context, parent, id string) (sync.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[parent][id]
	if !ok {
		return sync.Document{}, sync.ErrDocNotFound
	}
	return doc, nil
}

// List returns all documents under a parent, sorted by ID for stable
// output.
func (s *DocStore) List(_ context.Context, parent string) ([]sync.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sync.Document, 0, len(s.docs[parent]))
	for _, doc := range s.docs[parent] {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Upsert creates or replaces a document and persists the file.
func (s *DocStore) Upsert(_ context.Context, doc sync.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(doc)
	return s.save()
}

// Delete removes a document if present and persists the file.
func (s *DocStore) Delete(_ context.Context, parent, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs[parent], id)
	return s.save()
}

// BatchWrite upserts multiple documents with a single file rewrite.
func (s *DocStore) BatchWrite(_ context.Context, docs []sync.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		s.put(doc)
	}
	return s.save()
}

func (s *DocStore) put(doc sync.Document) {
	if s.docs[doc.Parent] == nil {
		s.docs[doc.Parent] = make(map[string]sync.Document)
	}
	s.docs[doc.Parent][doc.ID] = doc
}

func (s *DocStore) load() map[string]map[string]sync.Document {
	docs := make(map[string]map[string]sync.Document)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("document file unreadable, starting empty")
		}
		return docs
	}

	if len(data) == 0 {
		return docs
	}

	var flat []sync.Document
	if err := json.Unmarshal(data, &flat); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("document file corrupt, starting empty")
		return docs
	}

	for _, doc := range flat {
		if docs[doc.Parent] == nil {
			docs[doc.Parent] = make(map[string]sync.Document)
		}
		docs[doc.Parent][doc.ID] = doc
	}

	return docs
}

// save writes all documents as a flat JSON array, sorted for stable
// diffs, via a tmp-file rename. Callers hold the write lock.
func (s *DocStore) save() error {
	flat := make([]sync.Document, 0)
	for _, byID := range s.docs {
		for _, doc := range byID {
			flat = append(flat, doc)
		}
	}
	sort.Slice(flat, func(i, j int) bool {
		if flat[i].Parent != flat[j].Parent {
			return flat[i].Parent < flat[j].Parent
		}
		return flat[i].ID < flat[j].ID
	})

	data, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
