package assetcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSCacheRoundtrip(t *testing.T) {
	c, err := NewFSCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	_, _, ok := c.Get("f1")
	assert.False(t, ok)
	assert.False(t, c.Has("f1"))

	require.NoError(t, c.Put("f1", []byte("video bytes"), "video/mp4"))
	data, mimeType, ok := c.Get("f1")
	require.True(t, ok)
	assert.Equal(t, []byte("video bytes"), data)
	assert.Equal(t, "video/mp4", mimeType)
	assert.True(t, c.Has("f1"))
}

func TestFSCacheMissingMimeDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFSCache(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put("f1", []byte("bytes"), "video/mp4"))
	require.NoError(t, os.Remove(filepath.Join(dir, "f1.mime")))

	_, mimeType, ok := c.Get("f1")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", mimeType)
}

func TestFSCacheDelete(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Put("f1", []byte("bytes"), "video/mp4"))

	require.NoError(t, c.Delete("f1"))
	assert.False(t, c.Has("f1"))

	// Deleting an absent entry is not an error.
	require.NoError(t, c.Delete("f1"))
}

func TestFSCacheUsage(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	require.NoError(t, err)

	n, err := c.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, c.Put("f1", make([]byte, 100), "video/mp4"))
	require.NoError(t, c.Put("f2", make([]byte, 50), "application/pdf"))

	n, err = c.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(150), n, "mime sidecars do not count")
}

func TestFSCacheSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFSCache(dir)
	require.NoError(t, err)

	require.NoError(t, c.Put("../escape/attempt", []byte("bytes"), "video/mp4"))
	data, _, ok := c.Get("../escape/attempt")
	require.True(t, ok)
	assert.Equal(t, []byte("bytes"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "/")
	}
	assert.NoDirExists(t, filepath.Join(dir, "..", "escape"))
}
