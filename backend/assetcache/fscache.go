package assetcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSCache stores assets as files under one directory: {key}.bin for the
// bytes and {key}.mime for the content type. Objects are written whole
// via a temp file rename, so a crashed write never leaves a partial
// entry behind.
type FSCache struct {
	dir string
}

// NewFSCache probes the directory before use. An error here means the
// caching capability is absent on this runtime and callers should run
// without it.
func NewFSCache(dir string) (*FSCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assetcache: unavailable: %w", err)
	}
	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return nil, fmt.Errorf("assetcache: unavailable: %w", err)
	}
	os.Remove(probe)
	return &FSCache{dir: dir}, nil
}

func (c *FSCache) Get(key string) ([]byte, string, bool) {
	data, err := os.ReadFile(c.path(key, ".bin"))
	if err != nil {
		return nil, "", false
	}
	mime, err := os.ReadFile(c.path(key, ".mime"))
	if err != nil {
		return data, "application/octet-stream", true
	}
	return data, string(mime), true
}

func (c *FSCache) Put(key string, data []byte, mimeType string) error {
	tmp := c.path(key, ".bin.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path(key, ".bin")); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.WriteFile(c.path(key, ".mime"), []byte(mimeType), 0o644)
}

func (c *FSCache) Delete(key string) error {
	err := os.Remove(c.path(key, ".bin"))
	os.Remove(c.path(key, ".mime"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FSCache) Has(key string) bool {
	_, err := os.Stat(c.path(key, ".bin"))
	return err == nil
}

// Usage sums the size of all cached objects in bytes.
func (c *FSCache) Usage() (int64, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".bin") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// path flattens the key into a safe file name. Drive file ids are
// already path-safe; this guards against anything else.
func (c *FSCache) path(key, suffix string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(c.dir, safe+suffix)
}
