// Package cache is a persistent, content-addressed blob store. Blobs are
// stored under the SHA-256 of their bytes, so a blob is never rewritten
// with different content and concurrent writers (goroutines or processes)
// cannot corrupt each other. A small ref index maps source keys such as
// URLs to blob addresses.
package cache

import (
	"bytes"
	"container/list"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	blobSuffix = ".blob"
	refSuffix  = ".ref"
	tmpPrefix  = ".tmp-"
)

// StoreConfig holds configuration for a cache Store.
type StoreConfig struct {
	// Dir is the directory path where cache files are stored.
	Dir string

	// MaxSizeMB is the maximum total size of blobs in megabytes. Default: 256.
	MaxSizeMB int

	// RefTTL bounds how long a key keeps pointing at a blob. A value of 0
	// means refs never expire; the blob itself is immutable.
	RefTTL time.Duration
}

// CacheStats holds runtime statistics for a cache Store.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Corrupted int64
	Evictions int64
	Size      int64
	Entries   int
}

// lruEntry is the value stored in each list.Element.
type lruEntry struct {
	hash string
	size int64
}

// Store is a disk-backed content-addressed store with LRU eviction. Each
// blob is one file {sha256}.blob; each ref is one JSON file {hash(key)}.ref.
// Writes are atomic via temp-file-then-link, and an existing blob wins.
type Store struct {
	cfg StoreConfig

	mu        sync.Mutex
	lru       *list.List               // front = most recently used
	items     map[string]*list.Element // hash -> *list.Element (value is *lruEntry)
	curSize   int64
	hits      int64
	misses    int64
	corrupted int64
	evictions int64

	now func() time.Time
}

// NewStore creates a new Store. The cache directory is created with 0755
// permissions if it does not exist. Existing blobs are indexed from disk.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache: directory not set")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 256
	}
	if cfg.RefTTL < 0 {
		cfg.RefTTL = 0
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Dir, err)
	}

	s := &Store{
		cfg:   cfg,
		lru:   list.New(),
		items: make(map[string]*list.Element),
		now:   time.Now,
	}

	if err := s.scanDir(); err != nil {
		return nil, fmt.Errorf("cache: scan directory: %w", err)
	}

	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.cfg.Dir
}

// Get returns the blob stored under hash. The bytes are verified against
// the address; a blob that fails verification is removed and reported as a
// miss so the caller fetches it again.
func (s *Store) Get(hash string) ([]byte, bool) {
	if !validHash(hash) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.blobPath(hash))
	if err != nil {
		if elem, ok := s.items[hash]; ok {
			s.forgetLocked(hash, elem)
		}
		s.misses++
		return nil, false
	}
	if Sum(data) != hash {
		s.corrupted++
		s.misses++
		s.removeBlobLocked(hash)
		return nil, false
	}

	if elem, ok := s.items[hash]; ok {
		s.lru.MoveToFront(elem)
	} else {
		// Written by another process since the scan.
		s.trackLocked(hash, int64(len(data)))
	}
	s.hits++
	return data, true
}

// Has reports whether a blob is present without reading or verifying it.
func (s *Store) Has(hash string) bool {
	if !validHash(hash) {
		return false
	}
	_, err := os.Stat(s.blobPath(hash))
	return err == nil
}

// Put stores data and returns its address. When the blob already exists it
// is left untouched.
func (s *Store) Put(data []byte) (string, error) {
	hash := Sum(data)
	path := s.blobPath(hash)

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		s.mu.Lock()
		if elem, ok := s.items[hash]; ok {
			s.lru.MoveToFront(elem)
		} else {
			s.trackLocked(hash, int64(len(data)))
		}
		s.mu.Unlock()
		return hash, nil
	} else if err == nil {
		// Corrupted on disk; replace it.
		s.mu.Lock()
		s.corrupted++
		s.removeBlobLocked(hash)
		s.mu.Unlock()
	}

	if err := atomicCreate(path, data, s.cfg.Dir); err != nil {
		return "", fmt.Errorf("cache: write blob %s: %w", hash, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[hash]; ok {
		s.lru.MoveToFront(elem)
	} else {
		s.trackLocked(hash, int64(len(data)))
	}
	s.evictLocked()
	return hash, nil
}

// Link records that key resolves to the blob at hash.
func (s *Store) Link(key, hash string) error {
	if !validHash(hash) {
		return fmt.Errorf("cache: link %q: invalid hash %q", key, hash)
	}
	meta := refMeta{
		Key:     key,
		Hash:    hash,
		Created: s.now().UnixNano(),
		TTLNS:   int64(s.cfg.RefTTL),
	}
	if err := writeJSON(s.refPath(key), s.cfg.Dir, meta); err != nil {
		return fmt.Errorf("cache: link %q: %w", key, err)
	}
	return nil
}

// Lookup returns the address key was linked to. Refs that expired, belong
// to a different key, or point at a missing blob are reported as misses.
func (s *Store) Lookup(key string) (string, bool) {
	path := s.refPath(key)
	meta, err := readJSON[refMeta](path)
	if err != nil {
		return "", false
	}
	if meta.Key != key || !validHash(meta.Hash) || meta.expired(s.now()) {
		_ = os.Remove(path)
		return "", false
	}
	if !s.Has(meta.Hash) {
		return "", false
	}
	return meta.Hash, true
}

// Fetch is Lookup followed by Get: it returns the verified bytes key was
// linked to.
func (s *Store) Fetch(key string) ([]byte, bool) {
	hash, ok := s.Lookup(key)
	if !ok {
		return nil, false
	}
	return s.Get(hash)
}

// Clear removes all blobs, refs and leftover temp files.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cache: clear read dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, blobSuffix) || strings.HasSuffix(name, refSuffix) || strings.HasPrefix(name, tmpPrefix) {
			_ = os.Remove(filepath.Join(s.cfg.Dir, name))
		}
	}

	s.lru.Init()
	s.items = make(map[string]*list.Element)
	s.curSize = 0

	return nil
}

// Size returns the current total size of indexed blobs in bytes.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curSize
}

// Stats returns a snapshot of cache statistics.
func (s *Store) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CacheStats{
		Hits:      s.hits,
		Misses:    s.misses,
		Corrupted: s.corrupted,
		Evictions: s.evictions,
		Size:      s.curSize,
		Entries:   s.lru.Len(),
	}
}

// --- internal helpers ---

func (s *Store) blobPath(hash string) string {
	return filepath.Join(s.cfg.Dir, hash+blobSuffix)
}

func (s *Store) refPath(key string) string {
	return filepath.Join(s.cfg.Dir, hashKey(key)+refSuffix)
}

func (s *Store) maxBytes() int64 {
	return int64(s.cfg.MaxSizeMB) * 1024 * 1024
}

// trackLocked adds a blob to the front of the LRU.
// Caller must hold s.mu.
func (s *Store) trackLocked(hash string, size int64) {
	elem := s.lru.PushFront(&lruEntry{hash: hash, size: size})
	s.items[hash] = elem
	s.curSize += size
}

// forgetLocked drops a blob from the index without touching the disk.
// Caller must hold s.mu.
func (s *Store) forgetLocked(hash string, elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	s.curSize -= entry.size
	s.lru.Remove(elem)
	delete(s.items, hash)
}

// removeBlobLocked deletes a blob file and its index entry.
// Caller must hold s.mu.
func (s *Store) removeBlobLocked(hash string) {
	if elem, ok := s.items[hash]; ok {
		s.forgetLocked(hash, elem)
	}
	_ = os.Remove(s.blobPath(hash))
}

// evictLocked removes least recently used blobs until the total size is
// within bounds. The most recent blob is never evicted.
// Caller must hold s.mu.
func (s *Store) evictLocked() {
	maxB := s.maxBytes()
	for s.curSize > maxB && s.lru.Len() > 1 {
		back := s.lru.Back()
		entry := back.Value.(*lruEntry)
		s.removeBlobLocked(entry.hash)
		s.evictions++
	}
}

// scanDir indexes existing blobs and drops leftovers from interrupted
// writes. Blobs are added in no particular order; the LRU self-corrects as
// entries are accessed.
func (s *Store) scanDir() error {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(name, tmpPrefix) {
			_ = os.Remove(filepath.Join(s.cfg.Dir, name))
			continue
		}
		if !strings.HasSuffix(name, blobSuffix) {
			continue
		}

		hash := strings.TrimSuffix(name, blobSuffix)
		if !validHash(hash) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		elem := s.lru.PushBack(&lruEntry{hash: hash, size: info.Size()})
		s.items[hash] = elem
		s.curSize += info.Size()
	}

	return nil
}

// atomicCreate publishes data at path via a temporary file. If path
// already exists the existing file is kept.
func atomicCreate(path string, data []byte, tmpDir string) error {
	tmpName, err := writeTemp(data, tmpDir)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmpName) }()

	err = os.Link(tmpName, path)
	switch {
	case err == nil, errors.Is(err, fs.ErrExist):
		return nil
	default:
		// Hard links are not available everywhere; rename is still atomic.
		return os.Rename(tmpName, path)
	}
}

// atomicWrite writes data to path via a temporary file and rename.
func atomicWrite(path string, data []byte, tmpDir string) error {
	tmpName, err := writeTemp(data, tmpDir)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func writeTemp(data []byte, tmpDir string) (string, error) {
	tmp, err := os.CreateTemp(tmpDir, tmpPrefix+"*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

// WriteFile replaces the file at path with data. Readers see either the old
// or the new content, never a partial write.
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	tmpName, err := writeTemp(data, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("cache: write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: write %s: %w", path, err)
	}
	return nil
}
