package webcache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const cacheExtension = ".html"

var keySanitizer = regexp.MustCompile(`[^\w]+`)

// Key builds a filesystem-safe cache key from the given parts. Runs of
// characters outside [A-Za-z0-9_] collapse to single underscores so keys
// derived from titles and URLs stay readable on disk.
func Key(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = keySanitizer.ReplaceAllString(part, "_")
		part = strings.Trim(part, "_")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	if len(cleaned) == 0 {
		return "page"
	}
	return strings.Join(cleaned, "_")
}

// Store persists fetched pages as one file per key under a cache directory.
// Writes go through a temp file plus rename so readers never observe a
// partially written page. A flock guards the directory against concurrent
// runs sharing the same cache.
type Store struct {
	dir  string
	lock *flock.Flock
}

// NewStore ensures the cache directory exists and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("webcache: cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("webcache: ensure cache directory: %w", err)
	}
	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".marquee.lock")),
	}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk location for a cache key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+cacheExtension)
}

// Get returns the cached content for key when a copy exists and is fresh.
// A zero maxAge accepts any cached copy regardless of age.
func (s *Store) Get(key string, maxAge time.Duration) (string, bool) {
	path := s.Path(key)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put writes content for key atomically.
func (s *Store) Put(key, content string) error {
	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("webcache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("webcache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("webcache: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("webcache: replace cache entry: %w", err)
	}
	return nil
}

// Remove deletes the cached entry for key if present.
func (s *Store) Remove(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("webcache: remove cache entry: %w", err)
	}
	return nil
}

// AcquireRunLock takes an exclusive lock on the cache directory and returns
// a release function. It fails immediately when another run holds the lock.
func (s *Store) AcquireRunLock() (func(), error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("webcache: acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("webcache: cache directory %s is locked by another run", s.dir)
	}
	return func() { _ = s.lock.Unlock() }, nil
}
