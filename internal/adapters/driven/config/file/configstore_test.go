package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_MissingFileIsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get(KeyConcurrency)
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString(KeySecretsDir))
	assert.Equal(t, 0, store.GetInt(KeyConcurrency))
}

func TestConfigStore_SetPersists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeySecretsDir, "/etc/sitepulse"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/etc/sitepulse", reloaded.GetString(KeySecretsDir))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := []byte("[fetch]\nconcurrency = 5\nmax_retries = 4\n\n[cache]\nttl_hours = 6\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), content, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, store.GetInt(KeyConcurrency))
	assert.Equal(t, 4, store.GetInt(KeyMaxRetries))
	assert.Equal(t, 6, store.GetInt(KeyCacheTTLHours))
}

func TestConfigStore_TypedAccessors(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("str", "value"))
	require.NoError(t, store.Set("num", int64(7)))
	require.NoError(t, store.Set("flag", true))
	require.NoError(t, store.Set("list", []any{"a", "b"}))

	assert.Equal(t, "value", store.GetString("str"))
	assert.Equal(t, 7, store.GetInt("num"))
	assert.True(t, store.GetBool("flag"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))

	// Type mismatches fall back to zero values.
	assert.Equal(t, "", store.GetString("num"))
	assert.Equal(t, 0, store.GetInt("str"))
	assert.False(t, store.GetBool("str"))
	assert.Nil(t, store.GetStringSlice("str"))
}

func TestConfigStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}
