// --- START OF FINAL REVISED FILE pkg/proof/cache/cache.go ---
// Package cache persists extracted asset metadata between runs in a bbolt
// database so unchanged videos are not probed again.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brandonaviram/proof/pkg/proof"
	bolt "go.etcd.io/bbolt"
)

// FileName is the database file name inside the cache directory.
const FileName = "metadata.db"

// SchemaVersion is the version of the stored entry layout. Entries written
// with another version are treated as misses.
const SchemaVersion = "1"

var bucketMetadata = []byte("metadata")

// ErrCacheLoad indicates the database could not be opened or initialized.
// Callers usually log it and continue without a cache.
var ErrCacheLoad = errors.New("failed to load metadata cache")

// ErrCachePersist indicates a write to the database failed.
var ErrCachePersist = errors.New("failed to persist metadata cache")

// entry is the JSON value stored per absolute source path.
type entry struct {
	SchemaVersion string               `json:"schemaVersion"`
	AppVersion    string               `json:"appVersion"`
	Size          int64                `json:"size"`
	ModTime       int64                `json:"modTime"` // unix nanoseconds
	Metadata      proof.CachedMetadata `json:"metadata"`
}

// Store implements proof.MetadataCache on top of bbolt.
// bbolt serializes writers, so a Store is safe for concurrent use.
type Store struct {
	db         *bolt.DB
	logger     *slog.Logger
	appVersion string
	path       string
}

var _ proof.MetadataCache = (*Store)(nil)

// DefaultPath returns the per-user cache location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "proof", FileName), nil
}

// Open opens (creating if needed) the cache database at path.
func Open(path, appVersion string, loggerHandler slog.Handler) (*Store, error) { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if appVersion == "" {
		appVersion = "dev"
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "cacheStore"), slog.String("impl", "bbolt"))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create cache directory for '%s': %w", ErrCacheLoad, path, err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		logger.Error("Critical cache load error", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: cannot open '%s': %w", ErrCacheLoad, path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetadata)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: cannot initialize '%s': %w", ErrCacheLoad, path, err)
	}

	logger.Debug("Metadata cache opened", slog.String("path", path), slog.String("appVersion", appVersion))
	return &Store{db: db, logger: logger, appVersion: appVersion, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Lookup returns the cached metadata for path when the entry matches size,
// modification time, schema version and application version.
func (s *Store) Lookup(path string, size int64, modTime time.Time) (proof.CachedMetadata, bool) {
	var raw []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMetadata).Get(cacheKey(path)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if raw == nil {
		return proof.CachedMetadata{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("Corrupt cache entry, treating as miss", slog.String("path", path), slog.String("error", err.Error()))
		return proof.CachedMetadata{}, false
	}
	switch {
	case e.SchemaVersion != SchemaVersion:
		s.logger.Debug("Cache schema version mismatch", slog.String("path", path), slog.String("entry", e.SchemaVersion))
		return proof.CachedMetadata{}, false
	case e.AppVersion != s.appVersion:
		s.logger.Debug("Cache app version mismatch", slog.String("path", path), slog.String("entry", e.AppVersion))
		return proof.CachedMetadata{}, false
	case e.Size != size || e.ModTime != modTime.UnixNano():
		s.logger.Debug("Cache entry stale", slog.String("path", path))
		return proof.CachedMetadata{}, false
	}
	return e.Metadata, true
}

// Store records metadata for path.
func (s *Store) Store(path string, size int64, modTime time.Time, meta proof.CachedMetadata) error {
	data, err := json.Marshal(entry{
		SchemaVersion: SchemaVersion,
		AppVersion:    s.appVersion,
		Size:          size,
		ModTime:       modTime.UnixNano(),
		Metadata:      meta,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCachePersist, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put(cacheKey(path), data)
	})
	if err != nil {
		return fmt.Errorf("%w: cannot write entry for '%s': %w", ErrCachePersist, path, err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketMetadata); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketMetadata)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: cannot clear cache: %w", ErrCachePersist, err)
	}
	s.logger.Info("Metadata cache cleared", slog.String("path", s.path))
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	n := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketMetadata).Stats().KeyN
		return nil
	})
	return n
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// cacheKey keys entries by absolute path so relative inputs share entries.
func cacheKey(path string) []byte {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return []byte(path)
}

// --- END OF FINAL REVISED FILE pkg/proof/cache/cache.go ---
