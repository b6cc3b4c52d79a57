package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wcap/internal/core/eventbus"
	"github.com/colonyops/wcap/internal/core/eventbus/testbus"
	"github.com/colonyops/wcap/internal/core/item"
)

func newTestStore(t *testing.T) (*ItemStore, *testbus.Bus) {
	t.Helper()
	bus := testbus.New(t)
	path := filepath.Join(t.TempDir(), "workflow-items.json")
	return NewItemStore(path, bus.Bus, zerolog.Nop()), bus
}

func TestItemStore_Upsert_creates_with_defaults(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, item.Item{Title: "Read paper", URL: "https://example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, item.TypeTodo, saved.Type)
	assert.Equal(t, item.StageInbox, saved.Stage)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
	assert.Nil(t, saved.ReviewedAt)
	assert.NotNil(t, saved.Tags)
	assert.NotNil(t, saved.SystemTags)
}

func TestItemStore_Upsert_assigns_unique_ids(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		saved, err := store.Upsert(ctx, item.Item{Title: "capture"})
		require.NoError(t, err)
		assert.False(t, seen[saved.ID], "duplicate id %q", saved.ID)
		seen[saved.ID] = true
	}
}

func TestItemStore_Upsert_updates_existing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Upsert(ctx, item.Item{
		Title: "original",
		Text:  "body",
		URL:   "https://example.com/a",
		Tags:  []string{"research"},
	})
	require.NoError(t, err)

	updated, err := store.Upsert(ctx, item.Item{ID: created.ID, Title: "renamed"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Title)
	// Fields absent from the partial update keep their prior values.
	assert.Equal(t, "body", updated.Text)
	assert.Equal(t, "https://example.com/a", updated.URL)
	assert.Equal(t, []string{"research"}, updated.Tags)
	// Creation time is preserved; update time never goes backwards.
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.GreaterOrEqual(t, updated.UpdatedAt.UnixNano(), created.UpdatedAt.UnixNano())
}

func TestItemStore_Upsert_with_unknown_id_creates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, item.Item{ID: "ext-42", Title: "imported"})
	require.NoError(t, err)
	assert.Equal(t, "ext-42", saved.ID)

	got, err := store.Get(ctx, "ext-42")
	require.NoError(t, err)
	assert.Equal(t, "imported", got.Title)
}

func TestItemStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, item.Item{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, saved.ID))

	_, err = store.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestItemStore_Delete_missing_id_succeeds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, item.Item{Title: "keeper"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "no-such-id"))

	items, err := store.Fetch(ctx, item.Filters{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItemStore_Upsert_create_preserves_provided_timestamps(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	saved, err := store.Upsert(ctx, item.Item{
		ID:        "imported-1",
		Title:     "carried over",
		CreatedAt: created,
		UpdatedAt: updated,
	})
	require.NoError(t, err)

	assert.True(t, saved.CreatedAt.Equal(created))
	assert.True(t, saved.UpdatedAt.Equal(updated))

	// Survives the round trip to disk too.
	got, err := store.Get(ctx, "imported-1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestItemStore_Fetch_sorted_newest_first(t *testing.T) {
	bus := eventbus.New()
	path := filepath.Join(t.TempDir(), "items.json")
	store := NewItemStore(path, bus, zerolog.Nop())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"oldest", "middle", "newest"} {
		_, err := store.Upsert(ctx, item.Item{
			ID:        title,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	items, err := store.Fetch(ctx, item.Filters{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "newest", items[0].Title)
	assert.Equal(t, "middle", items[1].Title)
	assert.Equal(t, "oldest", items[2].Title)
}

func TestItemStore_Fetch_filters_yield_subsets(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, item.Item{Title: "a", Type: item.TypeTodo, Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{Title: "b", Type: item.TypeWaiting, Stage: item.StageWaitingFor})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{Title: "c", Type: item.TypeTodo, Stage: item.StageSomeday, Tags: []string{"go", "reading"}})
	require.NoError(t, err)

	all, err := store.Fetch(ctx, item.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	tests := []struct {
		name    string
		filters item.Filters
		want    []string
	}{
		{"by type", item.Filters{Type: item.TypeTodo}, []string{"c", "a"}},
		{"by stage", item.Filters{Stage: item.StageSomeday}, []string{"c"}},
		{"by tag", item.Filters{Tag: "go"}, []string{"c", "a"}},
		{"anded filters", item.Filters{Type: item.TypeTodo, Tag: "reading"}, []string{"c"}},
		{"no match", item.Filters{Tag: "absent"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Fetch(ctx, tt.filters)
			require.NoError(t, err)

			titles := make([]string, 0, len(got))
			for _, it := range got {
				titles = append(titles, it.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestItemStore_AllTags(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, item.Item{Title: "a", Tags: []string{"go", "reading"}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{Title: "b", Tags: []string{"go", ""}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{Title: "c"})
	require.NoError(t, err)

	tags, err := store.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "reading"}, tags)
}

func TestItemStore_StageCounts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, item.Item{Title: "a"})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{Title: "b", Stage: item.StageReference})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, item.Item{ID: "weird", Title: "c", Stage: "bogus"})
	require.NoError(t, err)

	counts, err := store.StageCounts(ctx)
	require.NoError(t, err)

	// Unrecognized stages fall into the inbox bucket.
	assert.Equal(t, 2, counts[item.StageInbox])
	assert.Equal(t, 1, counts[item.StageReference])

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 3, total)
}

func TestItemStore_persists_across_instances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	ctx := context.Background()

	first := NewItemStore(path, eventbus.New(), zerolog.Nop())
	saved, err := first.Upsert(ctx, item.Item{Title: "durable", Tags: []string{"keep"}})
	require.NoError(t, err)

	second := NewItemStore(path, eventbus.New(), zerolog.Nop())
	got, err := second.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Title)
	assert.Equal(t, []string{"keep"}, got.Tags)
}

func TestItemStore_corrupt_file_starts_empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewItemStore(path, eventbus.New(), zerolog.Nop())

	items, err := store.Fetch(context.Background(), item.Filters{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemStore_publishes_change_events(t *testing.T) {
	store, bus := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, item.Item{Title: "watched"})
	require.NoError(t, err)

	bus.AssertPublished(t, eventbus.EventItemsChanged)
	bus.AssertPublished(t, eventbus.EventItemSaved)

	savedEvents := bus.EventsOf(eventbus.EventItemSaved)
	require.Len(t, savedEvents, 1)
	assert.Equal(t, saved.ID, savedEvents[0].Payload.(eventbus.ItemSavedPayload).Item.ID)

	bus.Reset()
	require.NoError(t, store.Delete(ctx, saved.ID))

	bus.AssertPublished(t, eventbus.EventItemsChanged)
	deleted := bus.EventsOf(eventbus.EventItemDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, saved.ID, deleted[0].Payload.(eventbus.ItemDeletedPayload).ID)
}
