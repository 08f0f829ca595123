package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

func TestDocumentsCmd_List(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("documents", "list", "--owner", "agent1")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents (1):")
	assert.Contains(t, out, "doc-1  schengen_visa.pdf")
	assert.Contains(t, out, "Category: visa")
	assert.Contains(t, out, "Chunks: 4")
}

func TestDocumentsCmd_ListEmpty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingestion.docs = nil

	out, err := runCommand("docs", "list", "--admin")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found.")
}

func TestDocumentsCmd_ListJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("documents", "list", "--owner", "agent1", "--json")
	require.NoError(t, err)

	var docs []domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
}

func TestDocumentsCmd_Show(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("documents", "show", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "schengen_visa.pdf (application/pdf")
	assert.Contains(t, out, "Collection: user_agent1_knowledge")
	assert.NotContains(t, out, "Folder:")
}

func TestDocumentsCmd_ShowMissing(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("documents", "show", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentsCmd_Delete(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("documents", "delete", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ts.ingestion.deleted)
	assert.Contains(t, out, "Deleted document doc-1")
}

func TestDocumentsCmd_DeleteRequiresID(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("documents", "delete")

	require.Error(t, err)
}
