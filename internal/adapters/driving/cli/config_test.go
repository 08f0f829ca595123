package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_Show(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values["vector_store.backend"] = "qdrant"

	out, err := runCommand("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "vector_store.backend")
	assert.Contains(t, out, "qdrant")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigCmd_BareShows(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("config")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestConfigCmd_Set(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("config", "set", "vector_store.backend", "weaviate")

	require.NoError(t, err)
	assert.Equal(t, "weaviate", ts.settings.values["vector_store.backend"])
	assert.Contains(t, out, "Set vector_store.backend = weaviate")
}

func TestConfigCmd_SetFromStdinMasksSecret(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("sk-test-abcd1234\n"))
	defer rootCmd.SetIn(nil)

	out, err := runCommand("config", "set", "embedding.api_key")

	require.NoError(t, err)
	assert.Equal(t, "sk-test-abcd1234", ts.settings.values["embedding.api_key"])
	assert.Contains(t, out, "********1234")
	assert.NotContains(t, out, "sk-test-abcd1234")
}

func TestConfigCmd_SetUnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("config", "set", "nope", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set nope")
}

func TestReadSecret(t *testing.T) {
	v, err := readSecret(strings.NewReader("  value-without-newline  "))

	require.NoError(t, err)
	assert.Equal(t, "value-without-newline", v)
}
