package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// DeleteAll removes every row from all three tables in a single
// transaction. Children are deleted explicitly rather than left to the
// cascade so their counts land in the result: Rows is parents plus
// children, the shared convention for both backends.
func (s *Store) DeleteAll(ctx context.Context) (core.OpResult, error) {
	start := time.Now()

	if err := s.acquire(ctx); err != nil {
		return core.OpResult{}, core.WrapError("deleteAll", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.OpResult{}, core.WrapError("deleteAll", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return core.OpResult{}, core.WrapError("deleteAll", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var rows int64
	for _, table := range []string{"addresses", "email_addresses", "people"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return core.OpResult{}, core.WrapError("deleteAll", fmt.Errorf("failed to clear %s: %w", table, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return core.OpResult{}, core.WrapError("deleteAll", fmt.Errorf("failed to get rows affected: %w", err))
		}
		rows += n
	}

	if err := tx.Commit(); err != nil {
		return core.OpResult{}, core.WrapError("deleteAll", fmt.Errorf("failed to commit transaction: %w", err))
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("all people deleted", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// DeletePeople removes the named aggregates and their children. Identity
// predicates are chunked at the configured batch size to stay under
// SQLite's bound-parameter limit (default 999), but every chunk runs in
// the same transaction: the whole batch commits or none of it does.
// Aggregates without an identity and identities no longer present are
// skipped. Rows follows the DeleteAll convention.
func (s *Store) DeletePeople(ctx context.Context, people []*core.Person) (core.OpResult, error) {
	start := time.Now()

	ids := core.ParentIDs(people)
	if len(ids) == 0 {
		return core.OpResult{SizeMB: s.SizeMB(), Elapsed: time.Since(start)}, nil
	}

	if err := s.acquire(ctx); err != nil {
		return core.OpResult{}, core.WrapError("deletePeople", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.OpResult{}, core.WrapError("deletePeople", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return core.OpResult{}, core.WrapError("deletePeople", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var rows int64
	for _, chunk := range core.ChunkIDs(ids, s.config.EffectiveBatchSize()) {
		in, args := inClause(chunk)

		for _, del := range []string{
			fmt.Sprintf("DELETE FROM addresses WHERE person_id IN (%s)", in),
			fmt.Sprintf("DELETE FROM email_addresses WHERE person_id IN (%s)", in),
			fmt.Sprintf("DELETE FROM people WHERE id IN (%s)", in),
		} {
			res, err := tx.ExecContext(ctx, del, args...)
			if err != nil {
				return core.OpResult{}, core.WrapError("deletePeople", fmt.Errorf("failed to delete chunk: %w", err))
			}
			n, err := res.RowsAffected()
			if err != nil {
				return core.OpResult{}, core.WrapError("deletePeople", fmt.Errorf("failed to get rows affected: %w", err))
			}
			rows += n
		}
	}

	if err := tx.Commit(); err != nil {
		return core.OpResult{}, core.WrapError("deletePeople", fmt.Errorf("failed to commit transaction: %w", err))
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people deleted", "requested", len(ids), "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}
