package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ProbeCacheFile is the cache file name inside the cache directory
const ProbeCacheFile = "probe-cache.json.zst"

// ProbeCache persists probe results as zstd-compressed JSON.
type ProbeCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]Info
}

// OpenProbeCache loads the cache from dir, creating the directory if needed.
// A corrupt cache file is discarded.
func OpenProbeCache(dir string) (*ProbeCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	c := &ProbeCache{
		path:    filepath.Join(dir, ProbeCacheFile),
		entries: make(map[string]Info),
	}
	if err := c.load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Remove(c.path)
	}
	return c, nil
}

func (c *ProbeCache) load() error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()
	entries := make(map[string]Info)
	if err := json.NewDecoder(dec).Decode(&entries); err != nil {
		return err
	}
	c.entries = entries
	return nil
}

// Get returns a cached result.
func (c *ProbeCache) Get(key string) (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[key]
	return info, ok
}

// Put stores a result and rewrites the cache file.
func (c *ProbeCache) Put(key string, info Info) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = info
	return c.saveLocked()
}

func (c *ProbeCache) saveLocked() error {
	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}
	if err := json.NewEncoder(enc).Encode(c.entries); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Len returns the number of cached entries.
func (c *ProbeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge empties the cache and removes its file.
func (c *ProbeCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Info)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}
