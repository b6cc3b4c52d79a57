package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wcap/internal/sync"
)

func newTestDocStore(t *testing.T) (*DocStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sync-docs.json")
	return NewDocStore(path, zerolog.Nop()), path
}

func Test_DocStore_upsert_and_get(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestDocStore(t)

	doc := sync.Document{Parent: "user-1", ID: "a", Data: json.RawMessage(`{"x":1}`)}
	require.NoError(t, store.Upsert(ctx, doc))

	got, err := store.Get(ctx, "user-1", "a")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = store.Get(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, sync.ErrDocNotFound)
}

func Test_DocStore_list_scoped_and_sorted(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestDocStore(t)

	require.NoError(t, store.Upsert(ctx, sync.Document{Parent: "user-1", ID: "b", Data: json.RawMessage(`2`)}))
	require.NoError(t, store.Upsert(ctx, sync.Document{Parent: "user-1", ID: "a", Data: json.RawMessage(`1`)}))
	require.NoError(t, store.Upsert(ctx, sync.Document{Parent: "user-2", ID: "c", Data: json.RawMessage(`3`)}))

	docs, err := store.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func Test_DocStore_delete_missing_is_noop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestDocStore(t)

	require.NoError(t, store.Delete(ctx, "user-1", "nope"))
}

func Test_DocStore_batch_write(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestDocStore(t)

	err := store.BatchWrite(ctx, []sync.Document{
		{Parent: "user-1", ID: "a", Data: json.RawMessage(`1`)},
		{Parent: "user-1", ID: "b", Data: json.RawMessage(`2`)},
	})
	require.NoError(t, err)

	docs, err := store.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func Test_DocStore_persists_across_instances(t *testing.T) {
	ctx := context.Background()
	store, path := newTestDocStore(t)

	require.NoError(t, store.Upsert(ctx, sync.Document{Parent: "user-1", ID: "a", Data: json.RawMessage(`{"keep":true}`)}))

	reopened := NewDocStore(path, zerolog.Nop())
	got, err := reopened.Get(ctx, "user-1", "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep":true}`, string(got.Data))
}

func Test_DocStore_corrupt_file_starts_empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-docs.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	store := NewDocStore(path, zerolog.Nop())
	docs, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
