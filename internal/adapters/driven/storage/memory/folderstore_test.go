package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

func TestFolderStore_SaveAndGet(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Folder{ID: "f1", Name: "Visas", IsAdmin: true}))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Visas", got.Name)
	assert.True(t, got.IsAdmin)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_Save_KeepsCount(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "f1", Name: "Visas"}))
	require.NoError(t, store.AdjustDocumentCount(ctx, "f1", 3))

	require.NoError(t, store.Save(ctx, domain.Folder{ID: "f1", Name: "Renamed"}))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 3, got.DocumentCount)
}

func TestFolderStore_List_OldestFirst(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.Folder{ID: "b", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "a", CreatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "c", CreatedAt: base}))

	folders, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{folders[0].ID, folders[1].ID, folders[2].ID})
}

func TestFolderStore_AdjustDocumentCount(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "f1"}))

	require.NoError(t, store.AdjustDocumentCount(ctx, "f1", 1))
	require.NoError(t, store.AdjustDocumentCount(ctx, "f1", -3))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.DocumentCount)

	assert.ErrorIs(t, store.AdjustDocumentCount(ctx, "missing", 1), domain.ErrNotFound)
}

func TestFolderStore_Delete(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "f1"}))

	require.NoError(t, store.Delete(ctx, "f1"))
	assert.NoError(t, store.Delete(ctx, "f1"))

	_, err := store.Get(ctx, "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
