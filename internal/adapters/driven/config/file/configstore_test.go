package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("providers.serp.api_key", "sk-test"))
	require.NoError(t, s.Set("aggregation.max_items", int64(25)))
	require.NoError(t, s.Set("scoring.weights.accessibility", 0.3))
	require.NoError(t, s.Set("aggregation.optional", true))

	assert.Equal(t, "sk-test", s.GetString("providers.serp.api_key"))
	assert.Equal(t, 25, s.GetInt("aggregation.max_items"))
	assert.InDelta(t, 0.3, s.GetFloat("scoring.weights.accessibility"), 1e-9)
	assert.True(t, s.GetBool("aggregation.optional"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, s.GetString("nope"))
	assert.Zero(t, s.GetInt("nope"))
	assert.Zero(t, s.GetFloat("nope"))
	assert.False(t, s.GetBool("nope"))
	assert.Nil(t, s.GetStringSlice("nope"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set("providers.youtube.api_key", "yt-key"))

	s2, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "yt-key", s2.GetString("providers.youtube.api_key"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[providers.serp]\napi_key = \"from-file\"\n\n[topics]\npacks = [\"default\", \"fintech\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", s.GetString("providers.serp.api_key"))
	assert.Equal(t, []string{"default", "fintech"}, s.GetStringSlice("topics.packs"))
}

func TestConfigStore_RestrictedFileMode(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("providers.serp.api_key", "secret"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
