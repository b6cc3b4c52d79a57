package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wcap/internal/core/item"
)

// memStore is a minimal in-memory item.Store for service tests.
type memStore struct {
	seq   int
	items map[string]item.Item
}

var _ item.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: map[string]item.Item{}}
}

func (s *memStore) Fetch(_ context.Context, filters item.Filters) ([]item.Item, error) {
	out := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		if filters.Match(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (item.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return item.Item{}, item.ErrNotFound
	}
	return it, nil
}

func (s *memStore) Upsert(_ context.Context, partial item.Item) (item.Item, error) {
	now := time.Now()
	if existing, ok := s.items[partial.ID]; ok {
		partial.CreatedAt = existing.CreatedAt
		partial.UpdatedAt = now
	} else {
		if partial.ID == "" {
			s.seq++
			partial.ID = fmt.Sprintf("mem%d", s.seq)
		}
		if partial.Type == "" {
			partial.Type = item.TypeTodo
		}
		if partial.Stage == "" {
			partial.Stage = item.StageInbox
		}
		if partial.CreatedAt.IsZero() {
			partial.CreatedAt = now
		}
		if partial.UpdatedAt.IsZero() {
			partial.UpdatedAt = now
		}
	}
	s.items[partial.ID] = partial
	return partial, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	delete(s.items, id)
	return nil
}

func (s *memStore) AllTags(_ context.Context) ([]string, error) {
	return nil, nil
}

func (s *memStore) StageCounts(_ context.Context) (map[item.Stage]int, error) {
	return nil, nil
}

func newTestService() (*ItemService, *memStore) {
	store := newMemStore()
	return NewItemService(store, zerolog.Nop()), store
}

func Test_ItemService_capture_defaults(t *testing.T) {
	svc, _ := newTestService()

	saved, err := svc.Capture(context.Background(), CaptureOptions{Text: "  buy milk  "})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "buy milk", saved.Text)
	assert.Equal(t, item.TypeTodo, saved.Type)
	assert.Equal(t, item.StageInbox, saved.Stage)
}

func Test_ItemService_capture_requires_text(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Capture(context.Background(), CaptureOptions{Text: "   "})
	assert.ErrorIs(t, err, ErrTextRequired)
}

func Test_ItemService_capture_rejects_unknown_type(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Capture(context.Background(), CaptureOptions{Text: "x", Type: item.Type("bogus")})
	assert.ErrorContains(t, err, "invalid item type")
}

func Test_ItemService_review_stamps_time(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	saved, err := svc.Capture(ctx, CaptureOptions{Text: "read paper"})
	require.NoError(t, err)
	require.Nil(t, saved.ReviewedAt)

	reviewed, err := svc.Review(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.WithinDuration(t, time.Now(), *reviewed.ReviewedAt, time.Second)
}

func Test_ItemService_review_missing_item(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Review(context.Background(), "nope")
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func Test_ItemService_import_mixed_records(t *testing.T) {
	svc, store := newTestService()

	input := `[
		{"id": "a1", "text": "valid one", "type": "todo", "gtdStage": "inbox"},
		{"id": "a2", "text": ""},
		{"id": "a3", "text": "bad type", "type": "nonsense"},
		{"id": "a4", "text": "valid two"}
	]`

	report, err := svc.Import(context.Background(), strings.NewReader(input), 20)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Rejected, 2)
	assert.Equal(t, 1, report.Rejected[0].Index)
	assert.Equal(t, "missing text", report.Rejected[0].Reason)
	assert.Equal(t, "a3", report.Rejected[1].ID)
	assert.Contains(t, report.Rejected[1].Reason, "unknown type")

	assert.Len(t, store.items, 2)
}

func Test_ItemService_import_keeps_original_timestamps(t *testing.T) {
	svc, store := newTestService()

	input := `[
		{"id": "old1", "text": "from a backup", "createdAt": "2023-05-01T12:00:00Z", "updatedAt": "2023-06-01T12:00:00Z"}
	]`

	report, err := svc.Import(context.Background(), strings.NewReader(input), 20)
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)

	got := store.items["old1"]
	assert.True(t, got.CreatedAt.Equal(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, got.UpdatedAt.Equal(time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)))
}

func Test_ItemService_import_not_an_array(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Import(context.Background(), strings.NewReader(`{"not": "an array"}`), 20)
	assert.ErrorContains(t, err, "not a JSON item array")
}

func Test_ItemService_import_small_batches(t *testing.T) {
	svc, store := newTestService()

	var records []map[string]string
	for i := range 7 {
		records = append(records, map[string]string{
			"id":   fmt.Sprintf("b%d", i),
			"text": fmt.Sprintf("record %d", i),
		})
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	report, err := svc.Import(context.Background(), bytes.NewReader(data), 3)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Imported)
	assert.Empty(t, report.Rejected)
	assert.Len(t, store.items, 7)
}

func Test_ItemService_export_round_trip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Capture(ctx, CaptureOptions{Text: "first", Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = svc.Capture(ctx, CaptureOptions{Text: "second"})
	require.NoError(t, err)

	var buf bytes.Buffer
	count, err := svc.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var exported []item.Item
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Len(t, exported, 2)
}

func Test_ItemService_export_filename_format(t *testing.T) {
	svc, _ := newTestService()

	want := fmt.Sprintf("workflow-items-%s.json", time.Now().Format("2006-01-02"))
	assert.Equal(t, want, svc.ExportFilename())
}
