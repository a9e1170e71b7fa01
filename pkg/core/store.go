package core

import (
	"context"
	"time"
)

// DefaultBatchSize caps the number of identities bound into a single
// "IN (...)" predicate. SQLite's default bound-parameter limit is 999, so
// 500 leaves comfortable headroom.
const DefaultBatchSize = 500

// Config holds per-backend store configuration.
type Config struct {
	// Path is the backing file for this store.
	Path string `json:"path"`

	// BatchSize overrides DefaultBatchSize for chunked identity predicates.
	// Only the normalized backend consults it; the document engine has no
	// bound-parameter limit.
	BatchSize int `json:"batchSize,omitempty"`

	// CleanOnStartup wipes the backing file before the first open.
	CleanOnStartup bool `json:"cleanOnStartup,omitempty"`

	// Logger receives structured operation logs. Defaults to NopLogger.
	Logger Logger `json:"-"`
}

// DefaultConfig returns a configuration with the standard batch cap and a
// no-op logger.
func DefaultConfig(path string) Config {
	return Config{
		Path:      path,
		BatchSize: DefaultBatchSize,
		Logger:    NopLogger(),
	}
}

// EffectiveBatchSize resolves the configured chunk size.
func (c Config) EffectiveBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

// OpResult reports the outcome of a mutating bulk operation: the number of
// rows affected, the on-disk size after the operation and the time the
// operation took inside the store.
type OpResult struct {
	Rows    int64         `json:"rows"`
	SizeMB  float64       `json:"sizeMb"`
	Elapsed time.Duration `json:"elapsed"`
}

// ReadResult reports the outcome of a read-all: the fully reconstructed
// aggregates plus the same size and timing metrics as OpResult.
type ReadResult struct {
	People  []*Person     `json:"people"`
	SizeMB  float64       `json:"sizeMb"`
	Elapsed time.Duration `json:"elapsed"`
}

// Counts breaks down stored entities per container.
type Counts struct {
	People    int64 `json:"people"`
	Addresses int64 `json:"addresses"`
	Emails    int64 `json:"emails"`
}

// Total returns the sum across all containers.
func (c Counts) Total() int64 {
	return c.People + c.Addresses + c.Emails
}

// Store is the operation surface both backends implement. All bulk
// mutations run inside a single engine transaction: commit on success, full
// rollback before the error is returned on any failure. Empty input batches
// short-circuit to a zero-valued result without opening a transaction.
type Store interface {
	// Init opens the backing file and creates containers and indices if
	// needed. Safe to call concurrently and repeatedly; exactly one
	// initialization sequence runs per store lifetime (until Reset).
	Init(ctx context.Context) error

	// CreatePeople persists the aggregates, assigning identities to parents
	// and children. Rows counts parents written.
	CreatePeople(ctx context.Context, people []*Person) (OpResult, error)

	// ReadAll reconstructs every stored aggregate, children attached and
	// never nil.
	ReadAll(ctx context.Context) (ReadResult, error)

	// UpdatePeople overwrites parent scalar fields for aggregates that
	// already have an identity. Child collections are deliberately left
	// untouched. Unknown identities are skipped, not errors. Rows counts
	// rows actually changed.
	UpdatePeople(ctx context.Context, people []*Person) (OpResult, error)

	// DeleteAll removes every parent and child. Rows counts parents plus
	// children removed (unified convention across backends).
	DeleteAll(ctx context.Context) (OpResult, error)

	// DeletePeople removes the named parents and their children, chunking
	// identity predicates at the configured batch size where the engine
	// imposes parameter limits. Rows follows the DeleteAll convention.
	DeletePeople(ctx context.Context, people []*Person) (OpResult, error)

	// FindByLastName returns the aggregates whose last name matches
	// exactly, children attached, ordered by identity.
	FindByLastName(ctx context.Context, lastName string) ([]*Person, error)

	// FindByEmail returns the aggregates owning an email address that
	// matches exactly, children attached, ordered by identity.
	FindByEmail(ctx context.Context, email string) ([]*Person, error)

	// Counts reports per-container entity counts.
	Counts(ctx context.Context) (Counts, error)

	// Reset closes the handle, deletes the backing file and clears all
	// cached state; the next operation re-runs full initialization.
	Reset(ctx context.Context) error

	// SizeMB reports the on-disk footprint rounded to two decimals.
	// It never fails; probe errors degrade to 0.
	SizeMB() float64

	// Close releases the handle. The store is unusable afterwards.
	Close() error
}
