// Package sqlstore implements the rolodex store contract on a normalized
// SQLite schema: one parent table plus one table per child collection,
// joined by owner identity with cascading foreign keys.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rolodexdb/rolodex/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store is a SQLite-backed person store. The zero value is not usable;
// construct with New or NewWithConfig.
type Store struct {
	config core.Config
	logger core.Logger

	// ready is the fast-path latch: once set, the database handle is open
	// and the schema exists. The slow path re-checks under mu so exactly
	// one goroutine runs initialization.
	ready atomic.Bool

	mu      sync.RWMutex
	db      *sql.DB
	closed  bool
	cleaned bool
}

// New creates a store persisting to path with default configuration.
func New(path string) (*Store, error) {
	return NewWithConfig(core.DefaultConfig(path))
}

// NewWithConfig creates a store with custom configuration. The backing
// file is not opened until the first operation.
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
		logger: logger.With("backend", "sqlite"),
	}, nil
}

// Init opens the database and creates tables and indices if needed. It is
// optional: every operation initializes lazily on first use. Calling it
// concurrently is safe; initialization runs once per store lifetime.
func (s *Store) Init(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return core.WrapError("init", err)
	}
	return nil
}

// acquire ensures the handle is open and the schema exists. The atomic
// check keeps the steady-state cost to a single load.
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

	if s.config.CleanOnStartup && !s.cleaned {
		if err := s.removeFiles(); err != nil {
			return fmt.Errorf("clean on startup: %w", err)
		}
		s.cleaned = true
	}

	// journal_mode=WAL: Better concurrency
	// synchronous=NORMAL: Good balance of safety and speed
	// busy_timeout=5000: Wait up to 5s for lock instead of failing immediately
	// cache_size=-2000: Use 2MB of memory for cache (negative value = kb)
	// foreign_keys=1: Off by default in SQLite; child rows depend on it
	// txlock=immediate: Write transactions take the lock up front, so
	// concurrent writers queue on the busy timeout instead of failing
	// Pragmas ride the DSN so every pooled connection gets them at open.
	dsn := fmt.Sprintf("%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=cache_size(-2000)&_pragma=foreign_keys(1)", s.config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Allow more open connections for read concurrency
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.ready.Store(true)
	s.logger.Debug("store opened", "path", s.config.Path)
	return nil
}

// conn returns the open handle for use under a held read lock.
func (s *Store) conn() (*sql.DB, error) {
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	if s.db == nil {
		return nil, core.ErrNotInitialized
	}
	return s.db, nil
}

// Reset closes the handle and deletes the database file along with its
// WAL sidecars. The next operation re-runs full initialization against a
// fresh file.
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

	if err := s.removeFiles(); err != nil {
		return core.WrapError("reset", err)
	}

	s.logger.Info("store reset", "path", s.config.Path)
	return nil
}

func (s *Store) removeFiles() error {
	for _, p := range []string{s.config.Path, s.config.Path + "-wal", s.config.Path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// SizeMB reports the on-disk footprint including WAL sidecars, rounded to
// two decimals. Probe failures degrade to 0.
func (s *Store) SizeMB() float64 {
	return core.FileSizeMB(s.config.Path, s.config.Path+"-wal", s.config.Path+"-shm")
}

// Counts reports per-table row counts.
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
	row := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM people),
			(SELECT COUNT(*) FROM addresses),
			(SELECT COUNT(*) FROM email_addresses)
	`)
	if err := row.Scan(&c.People, &c.Addresses, &c.Emails); err != nil {
		return core.Counts{}, core.WrapError("counts", fmt.Errorf("failed to count rows: %w", err))
	}
	return c, nil
}

// Close releases the database handle. Subsequent operations fail with
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
