// Package jsonfile provides JSON-file-backed stores for wcap data.
//
// Each store keeps an in-memory cache loaded once at construction and
// rewrites its whole file on every mutation, using a tmp-file rename for
// atomicity. Missing, empty, or unparseable files are treated as empty
// state, never as an error.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/core/eventbus"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/pkg/randid"
)

// ItemStore implements item.Store using a single JSON array on disk.
type ItemStore struct {
	path string
	bus  *eventbus.Bus
	log  zerolog.Logger

	mu    sync.RWMutex
	items []item.Item
}

var _ item.Store = (*ItemStore)(nil)

// NewItemStore creates an item store backed by the JSON file at path and
// loads its contents. A corrupt or unreadable file logs a warning and
// starts empty; the next successful save overwrites it.
func NewItemStore(path string, bus *eventbus.Bus, log zerolog.Logger) *ItemStore {
	s := &ItemStore{
		path: path,
		bus:  bus,
		log:  log.With().Str("cmp", "item-store").Logger(),
	}
	s.items = s.load()
	return s
}

// Fetch returns items matching the filters, newest first.
func (s *ItemStore) Fetch(_ context.Context, filters item.Filters) ([]item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		if filters.Match(it) {
			out = append(out, it)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// Get returns a single item by ID.
func (s *ItemStore) Get(_ context.Context, id string) (item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}

	return item.Item{}, item.ErrNotFound
}

// Upsert creates or updates an item, persists the full list, and
// publishes items.changed and item.saved.
func (s *ItemStore) Upsert(_ context.Context, partial item.Item) (item.Item, error) {
	s.mu.Lock()

	now := time.Now()
	var saved item.Item

	if idx := s.indexOf(partial.ID); idx >= 0 {
		saved = merge(s.items[idx], partial)
		saved.UpdatedAt = now
		s.items[idx] = saved
	} else {
		saved = withDefaults(partial, now)
		s.items = append(s.items, saved)
	}

	if err := s.save(); err != nil {
		s.mu.Unlock()
		return item.Item{}, err
	}

	all := s.snapshot()
	s.mu.Unlock()

	s.publishChanged(all)
	if s.bus != nil {
		s.bus.PublishItemSaved(eventbus.ItemSavedPayload{Item: saved})
	}

	return saved, nil
}

// Delete removes an item by ID. A missing ID is a no-op that still
// succeeds and still publishes the change events.
func (s *ItemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()

	if idx := s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}

	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}

	all := s.snapshot()
	s.mu.Unlock()

	s.publishChanged(all)
	if s.bus != nil {
		s.bus.PublishItemDeleted(eventbus.ItemDeletedPayload{ID: id})
	}

	return nil
}

// AllTags returns the distinct user tags across all items, sorted.
// Recomputed on every call; the item list is the only source of truth.
func (s *ItemStore) AllTags(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for _, it := range s.items {
		for _, tag := range it.Tags {
			if tag != "" {
				set[tag] = struct{}{}
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags, nil
}

// StageCounts returns per-stage item counts. Items with a missing or
// unrecognized stage count as inbox.
func (s *ItemStore) StageCounts(_ context.Context) (map[item.Stage]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[item.Stage]int, len(item.Stages()))
	for _, stage := range item.Stages() {
		counts[stage] = 0
	}
	for _, it := range s.items {
		counts[it.EffectiveStage()]++
	}

	return counts, nil
}

func (s *ItemStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *ItemStore) snapshot() []item.Item {
	out := make([]item.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ItemStore) publishChanged(all []item.Item) {
	if s.bus != nil {
		s.bus.PublishItemsChanged(eventbus.ItemsChangedPayload{Items: all})
	}
}

// load reads the item file. Missing files are normal on first run;
// anything unparseable is logged and treated as no data.
func (s *ItemStore) load() []item.Item {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("item file unreadable, starting empty")
		}
		return nil
	}

	if len(data) == 0 {
		return nil
	}

	var items []item.Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("item file corrupt, starting empty")
		return nil
	}

	return items
}

// save writes the full item list to disk atomically. Callers hold the
// write lock.
func (s *ItemStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	items := s.items
	if items == nil {
		items = []item.Item{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// withDefaults layers the provided fields over a fresh item.
func withDefaults(partial item.Item, now time.Time) item.Item {
	it := partial

	if it.ID == "" {
		it.ID = randid.Generate(8)
	}
	if it.Type == "" {
		it.Type = item.TypeTodo
	}
	if it.Stage == "" {
		it.Stage = item.StageInbox
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.SystemTags == nil {
		it.SystemTags = []string{}
	}
	// Caller-supplied timestamps survive, so imported and pulled items
	// keep their original creation time.
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}

	return it
}

// merge shallow-merges the non-zero fields of partial over existing.
// The creation timestamp is always preserved.
func merge(existing, partial item.Item) item.Item {
	out := existing

	if partial.Type != "" {
		out.Type = partial.Type
	}
	if partial.Text != "" {
		out.Text = partial.Text
	}
	if partial.URL != "" {
		out.URL = partial.URL
	}
	if partial.Title != "" {
		out.Title = partial.Title
	}
	if partial.Screenshot != "" {
		out.Screenshot = partial.Screenshot
	}
	if partial.Tags != nil {
		out.Tags = partial.Tags
	}
	if partial.SystemTags != nil {
		out.SystemTags = partial.SystemTags
	}
	if partial.Stage != "" {
		out.Stage = partial.Stage
	}
	if partial.ReviewedAt != nil {
		out.ReviewedAt = partial.ReviewedAt
	}
	if partial.WaitingFor != "" {
		out.WaitingFor = partial.WaitingFor
	}
	if partial.WaitingUntil != "" {
		out.WaitingUntil = partial.WaitingUntil
	}
	if partial.Metadata != nil {
		out.Metadata = partial.Metadata
	}

	return out
}
