// Package rolodex provides an embedded people database with selectable
// storage backends: a normalized SQLite schema or a document-oriented
// bbolt file. Both expose the same store contract, live in the same
// directory under distinct file names, and can be benchmarked against
// each other on identical data.
package rolodex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rolodexdb/rolodex/pkg/boltstore"
	"github.com/rolodexdb/rolodex/pkg/core"
	"github.com/rolodexdb/rolodex/pkg/sqlstore"
)

// Backend selects the storage engine behind a DB.
type Backend string

const (
	// BackendSQLite persists people across three relational tables.
	BackendSQLite Backend = "sqlite"
	// BackendBolt persists each person as one embedded JSON document.
	BackendBolt Backend = "bolt"
)

// Distinct file names let both backends share one directory.
const (
	sqliteFileName = "people.sqlite"
	boltFileName   = "people.bolt"
)

// ParseBackend maps a user-supplied engine name onto a Backend.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "sqlite", "sqlite3", "sql":
		return BackendSQLite, nil
	case "bolt", "bbolt":
		return BackendBolt, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want sqlite or bolt)", name)
	}
}

// Config represents database configuration.
type Config struct {
	Dir            string  // directory holding the database files
	Backend        Backend // storage engine (default: sqlite)
	BatchSize      int     // identity cap per IN (...) statement (0 = default 500)
	CleanOnStartup bool    // wipe the backing file before first use
}

// DefaultConfig returns default configuration for the given directory.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:       dir,
		Backend:   BackendSQLite,
		BatchSize: core.DefaultBatchSize,
	}
}

// DefaultDir returns the per-user data directory for rolodex databases.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, "rolodex"), nil
}

// Option is a functional option for configuring the DB.
type Option func(*DB)

// WithLogger routes store and facade logging to l.
func WithLogger(l core.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// DB is a handle on one backend's database. The directory is created on
// Open, but the database file itself is not touched until the first
// store operation runs its lazy initialization.
type DB struct {
	store   core.Store
	backend Backend
	path    string
	logger  core.Logger
}

// Open prepares the data directory and constructs the store for the
// configured backend. Additional options can be passed to configure the
// database, such as WithLogger.
func Open(config Config, opts ...Option) (*DB, error) {
	if config.Dir == "" {
		return nil, core.WrapError("open", core.ErrNoPath)
	}
	backend := config.Backend
	if backend == "" {
		backend = BackendSQLite
	}

	db := &DB{backend: backend}
	for _, opt := range opts {
		opt(db)
	}

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, core.WrapError("open", fmt.Errorf("failed to create data dir: %w", err))
	}

	storeConfig := core.Config{
		BatchSize:      config.BatchSize,
		CleanOnStartup: config.CleanOnStartup,
		Logger:         db.logger,
	}

	var (
		store core.Store
		err   error
	)
	switch backend {
	case BackendSQLite:
		db.path = filepath.Join(config.Dir, sqliteFileName)
		storeConfig.Path = db.path
		store, err = sqlstore.NewWithConfig(storeConfig)
	case BackendBolt:
		db.path = filepath.Join(config.Dir, boltFileName)
		storeConfig.Path = db.path
		store, err = boltstore.NewWithConfig(storeConfig)
	default:
		return nil, core.WrapError("open", fmt.Errorf("unknown backend %q", backend))
	}
	if err != nil {
		return nil, err
	}

	db.store = store
	return db, nil
}

// Store returns the underlying store contract.
func (db *DB) Store() core.Store {
	return db.store
}

// Backend reports which engine this handle was opened on.
func (db *DB) Backend() Backend {
	return db.backend
}

// Path returns the backing database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database.
func (db *DB) Close() error {
	return db.store.Close()
}
