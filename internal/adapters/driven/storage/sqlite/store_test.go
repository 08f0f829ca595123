package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tala-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testFolder(id string, created time.Time) domain.Folder {
	return domain.Folder{
		ID:          id,
		Name:        "Folder " + id,
		Description: "desc",
		OwnerID:     "agent-1",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func testDocument(id string, uploaded time.Time) *domain.Document {
	return &domain.Document{
		ID:             id,
		OriginalName:   id + ".pdf",
		MediaType:      "application/pdf",
		ByteSize:       2048,
		UploadedAt:     uploaded,
		OwnerID:        "agent-1",
		FolderID:       "f1",
		Title:          id,
		Category:       domain.CategoryVisa,
		CollectionName: "tala_user_agent-1_knowledge",
		ChunkCount:     3,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, "metadata.db", filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.FolderStore().Save(ctx, testFolder("f1", now)))
	require.NoError(t, store.Close())

	// Migrations must not run twice.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.FolderStore().Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Folder f1", got.Name)
}

func TestFolderStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	folders := store.FolderStore()

	now := time.Now().UTC().Truncate(time.Second)
	folder := testFolder("f1", now)
	folder.IsAdmin = true
	require.NoError(t, folders.Save(ctx, folder))

	got, err := folders.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Folder f1", got.Name)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, "agent-1", got.OwnerID)
	assert.True(t, got.IsAdmin)
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestFolderStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.FolderStore().Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_Save_UpdateKeepsCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	folders := store.FolderStore()

	now := time.Now().UTC()
	require.NoError(t, folders.Save(ctx, testFolder("f1", now)))
	require.NoError(t, folders.AdjustDocumentCount(ctx, "f1", 2))

	renamed := testFolder("f1", now)
	renamed.Name = "Renamed"
	require.NoError(t, folders.Save(ctx, renamed))

	got, err := folders.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 2, got.DocumentCount)
}

func TestFolderStore_List_OldestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	folders := store.FolderStore()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, folders.Save(ctx, testFolder("b", base.Add(time.Hour))))
	require.NoError(t, folders.Save(ctx, testFolder("a", base.Add(2*time.Hour))))
	require.NoError(t, folders.Save(ctx, testFolder("c", base)))

	list, err := folders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "a", list[2].ID)
}

func TestFolderStore_AdjustDocumentCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	folders := store.FolderStore()
	require.NoError(t, folders.Save(ctx, testFolder("f1", time.Now().UTC())))

	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{"increment", 1, 1},
		{"increment again", 1, 2},
		{"decrement", -1, 1},
		{"clamps at zero", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, folders.AdjustDocumentCount(ctx, "f1", tt.delta))
			got, err := folders.Get(ctx, "f1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.DocumentCount)
		})
	}

	err := folders.AdjustDocumentCount(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	folders := store.FolderStore()
	require.NoError(t, folders.Save(ctx, testFolder("f1", time.Now().UTC())))

	require.NoError(t, folders.Delete(ctx, "f1"))
	_, err := folders.Get(ctx, "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, folders.Delete(ctx, "f1"))
}

func TestDocumentStore_SaveGetDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	uploaded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, docs.SaveDocument(ctx, testDocument("d1", uploaded)))

	got, err := docs.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1.pdf", got.OriginalName)
	assert.Equal(t, "application/pdf", got.MediaType)
	assert.Equal(t, int64(2048), got.ByteSize)
	assert.Equal(t, "f1", got.FolderID)
	assert.Equal(t, domain.CategoryVisa, got.Category)
	assert.Equal(t, "tala_user_agent-1_knowledge", got.CollectionName)
	assert.Equal(t, 3, got.ChunkCount)
	assert.False(t, got.IsAdmin)
	assert.True(t, uploaded.Equal(got.UploadedAt))

	require.NoError(t, docs.DeleteDocument(ctx, "d1"))
	_, err = docs.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveNil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DocumentStore().SaveDocument(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_List_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, docs.SaveDocument(ctx, testDocument("old", base)))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("new", base.Add(time.Hour))))

	list, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}
