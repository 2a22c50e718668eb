package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cedarstats/regstats/internal/regstats"
)

// FileStore keeps one JSON file per cache key under a directory. Concurrent
// writers for the same key are not coordinated: last writer wins, which is
// acceptable for a read-mostly, human-triggered refresh pattern.
type FileStore struct {
	dir        string
	ttl        time.Duration
	maxEntries int
}

// NewFileStore creates the cache directory if needed and returns a store.
func NewFileStore(dir string, ttl time.Duration, maxEntries int) (*FileStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, maxEntries: maxEntries}, nil
}

// Get returns the cached bundle for key if it exists, parses, and is within
// TTL. Anything else is a miss.
func (s *FileStore) Get(key string) (*regstats.Bundle, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("discarding corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	if time.Since(entry.StoredAt) > s.ttl {
		return nil, false
	}
	return &entry.Bundle, true
}

// Put writes the bundle for key, then sweeps old entries beyond the
// retention limit. The sweep is not transactional; a crash mid-sweep leaves
// extra files that the next Put cleans up.
func (s *FileStore) Put(key string, b *regstats.Bundle) error {
	entry := Entry{Key: key, StoredAt: time.Now().UTC(), Bundle: *b}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	if n := s.Evict(); n > 0 {
		log.Printf("cache sweep removed %d entries", n)
	}
	return nil
}

// Evict deletes the oldest cache files beyond the retention limit and
// returns how many were removed. Deletion errors are logged and skipped.
func (s *FileStore) Evict() int {
	files, err := s.listFiles()
	if err != nil {
		log.Printf("cache sweep failed: %v", err)
		return 0
	}
	if len(files) <= s.maxEntries {
		return 0
	}

	// Newest first; everything past the limit goes.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	removed := 0
	for _, f := range files[s.maxEntries:] {
		if err := os.Remove(f.path); err != nil {
			log.Printf("cache sweep could not remove %s: %v", f.path, err)
			continue
		}
		removed++
	}
	return removed
}

// Clear removes every cache file and returns how many were deleted.
func (s *FileStore) Clear() (int, error) {
	files, err := s.listFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// List returns the keys currently cached, newest first, with their ages.
func (s *FileStore) List() ([]Entry, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{Key: filepath.Base(f.path), StoredAt: f.modTime})
	}
	return entries, nil
}

type cacheFile struct {
	path    string
	modTime time.Time
}

func (s *FileStore) listFiles() ([]cacheFile, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}

	var files []cacheFile
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(s.dir, de.Name()),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}
