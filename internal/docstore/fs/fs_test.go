package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/pantrysync/internal/docstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFindMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Find(context.Background(), "pantry-registry.json", "folder1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestCreateFindReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "pantry-registry.json", []byte(`{"version":"1.0.0"}`), "folder1")
	require.NoError(t, err)

	handle, err := store.Find(ctx, "pantry-registry.json", "folder1")
	require.NoError(t, err)

	content, err := store.Read(ctx, handle)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0"}`, string(content))
}

func TestUpdateOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	handle, err := store.Create(ctx, "doc.json", []byte("a"), "folder1")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, handle, []byte("b")))

	content, err := store.Read(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
}

func TestRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Find(context.Background(), "../../etc/passwd", "folder1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, docstore.ErrNotFound)
}
