package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type fileEntry struct {
	Value   []byte    `msgpack:"v"`
	Expires time.Time `msgpack:"e"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && e.Expires.Before(now)
}

type fileCache struct {
	path    string
	mutex   sync.Mutex
	entries map[string]fileEntry
	cfg     config
}

var _ Cache = (*fileCache)(nil)

// NewFile returns a Cache persisted to a msgpack snapshot file at path,
// surviving process restarts. It is the durable store for the session token
// and profile snapshot. Every mutation rewrites the file atomically
// (temp file + rename). A missing file is treated as an empty cache.
func NewFile(path string, opts ...Option) (Cache, error) {
	cfg := applyOptions(opts)
	c := &fileCache{
		path:    path,
		entries: make(map[string]fileEntry),
		cfg:     cfg,
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *fileCache) load() error {
	buf, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	// A corrupt snapshot is discarded rather than wedging startup.
	var entries map[string]fileEntry
	if err := msgpack.Unmarshal(buf, &entries); err != nil {
		return nil
	}
	c.entries = entries
	return nil
}

// save writes the snapshot under the held mutex.
func (c *fileCache) save() error {
	buf, err := msgpack.Marshal(c.entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *fileCache) Get(_ context.Context, key string) (bool, any, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	val, ok := c.entries[key]
	if !ok {
		return false, nil, nil
	}
	if val.expired(time.Now()) {
		delete(c.entries, key)
		return false, nil, nil
	}
	return true, val.Value, nil
}

func (c *fileCache) Set(_ context.Context, key string, val any, ttl time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}
	var expires time.Time
	switch {
	case ttl == NoExpiration:
	case ttl <= 0:
		expires = time.Now().Add(c.cfg.defaultExpires)
	default:
		expires = time.Now().Add(ttl)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = fileEntry{Value: data, Expires: expires}
	return c.save()
}

func (c *fileCache) Delete(_ context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	delete(c.entries, key)
	return true, c.save()
}

func (c *fileCache) Clear(_ context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]fileEntry)
	return c.save()
}

func (c *fileCache) Close() error {
	return nil
}
