// Package boltstore implements the rolodex store contract on bbolt with a
// document-embedded layout: each person is stored as a single JSON
// document carrying its child collections, keyed by big-endian identity.
// Composite-key index buckets serve the name and email finders.
package boltstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

var (
	bucketPeople   = []byte("people")
	bucketIdxName  = []byte("idx_name")
	bucketIdxEmail = []byte("idx_email")
)

// Store is a bbolt-backed person store. The zero value is not usable;
// construct with New or NewWithConfig.
type Store struct {
	config core.Config
	logger core.Logger

	// ready is the fast-path latch: once set, the file is open and the
	// buckets exist. The slow path re-checks under mu so exactly one
	// goroutine runs initialization.
	ready atomic.Bool

	mu      sync.RWMutex
	db      *bolt.DB
	closed  bool
	cleaned bool
}

// New creates a store persisting to path with default configuration.
func New(path string) (*Store, error) {
	return NewWithConfig(core.DefaultConfig(path))
}

// NewWithConfig creates a store with custom configuration. The backing
// file is not opened until the first operation. BatchSize is ignored
// here: a single-file B+tree has no bound-parameter limit to respect.
func NewWithConfig(config core.Config) (*Store, error) {
	if config.Path == "" {
		return nil, core.WrapError("init", core.ErrNoPath)
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Store{
		config: config,
		logger: logger.With("backend", "bolt"),
	}, nil
}

// Init opens the file and creates the buckets if needed. It is optional:
// every operation initializes lazily on first use. Calling it
// concurrently is safe; initialization runs once per store lifetime.
func (s *Store) Init(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return core.WrapError("init", err)
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	return s.open(ctx)
}

func (s *Store) open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.ErrStoreClosed
	}
	if s.ready.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.config.CleanOnStartup && !s.cleaned {
		if err := s.removeFile(); err != nil {
			return fmt.Errorf("clean on startup: %w", err)
		}
		s.cleaned = true
	}

	// The timeout bounds the wait for the exclusive file lock when
	// another process still holds the database.
	db, err := bolt.Open(s.config.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPeople, bucketIdxName, bucketIdxEmail} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.ready.Store(true)
	s.logger.Debug("store opened", "path", s.config.Path)
	return nil
}

// conn returns the open handle for use under a held read lock.
func (s *Store) conn() (*bolt.DB, error) {
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	if s.db == nil {
		return nil, core.ErrNotInitialized
	}
	return s.db, nil
}

// Reset closes the handle and deletes the database file. The next
// operation re-runs full initialization against a fresh file.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError("reset", core.ErrStoreClosed)
	}

	s.ready.Store(false)
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return core.WrapError("reset", fmt.Errorf("failed to close database: %w", err))
		}
		s.db = nil
	}

	if err := s.removeFile(); err != nil {
		return core.WrapError("reset", err)
	}

	s.logger.Info("store reset", "path", s.config.Path)
	return nil
}

func (s *Store) removeFile() error {
	if err := os.Remove(s.config.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", s.config.Path, err)
	}
	return nil
}

// SizeMB reports the on-disk footprint rounded to two decimals. The
// database is one file; probe failures degrade to 0.
func (s *Store) SizeMB() float64 {
	return core.FileSizeMB(s.config.Path)
}

// Counts reports per-container entity counts by walking the documents.
func (s *Store) Counts(ctx context.Context) (core.Counts, error) {
	if err := s.acquire(ctx); err != nil {
		return core.Counts{}, core.WrapError("counts", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.Counts{}, core.WrapError("counts", err)
	}

	var c core.Counts
	err = db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPeople).ForEach(func(k, v []byte) error {
			p, err := decodePerson(v)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", btoi(k), err)
			}
			c.People++
			c.Addresses += int64(len(p.Addresses))
			c.Emails += int64(len(p.Emails))
			return nil
		})
	})
	if err != nil {
		return core.Counts{}, core.WrapError("counts", err)
	}
	return c, nil
}

// Close releases the file handle. Subsequent operations fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.ready.Store(false)

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return core.WrapError("close", fmt.Errorf("failed to close database: %w", err))
		}
		s.db = nil
	}
	return nil
}
