package boltstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// DeleteAll removes every document and index entry in a single write
// transaction. Keys are deleted individually rather than by dropping the
// buckets: dropping would reset the identity sequence, and identities
// must never be reused. Rows counts parents plus embedded children, the
// shared convention for both backends.
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

	var rows int64
	err = db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketPeople)

		var keys [][]byte
		err := docs.ForEach(func(k, v []byte) error {
			p, err := decodePerson(v)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", btoi(k), err)
			}
			rows += 1 + p.ChildCount()
			keys = append(keys, k)
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := docs.Delete(k); err != nil {
				return fmt.Errorf("failed to delete person %d: %w", btoi(k), err)
			}
		}

		for _, name := range [][]byte{bucketIdxName, bucketIdxEmail} {
			if err := clearBucket(tx.Bucket(name)); err != nil {
				return fmt.Errorf("failed to clear index %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.OpResult{}, core.WrapError("deleteAll", err)
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("all people deleted", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// DeletePeople removes the named aggregates, their embedded children and
// their index entries in a single write transaction. No chunking here:
// the batch cap exists for engines with bound-parameter limits, which a
// B+tree file does not have. Aggregates without an identity and
// identities with no document are skipped. Rows follows the DeleteAll
// convention.
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

	var rows int64
	err = db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketPeople)
		names := tx.Bucket(bucketIdxName)
		emails := tx.Bucket(bucketIdxEmail)

		for _, id := range ids {
			key := itob(id)
			data := docs.Get(key)
			if data == nil {
				continue
			}
			p, err := decodePerson(data)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", id, err)
			}

			if err := names.Delete(indexKey(p.LastName, id)); err != nil {
				return fmt.Errorf("failed to unindex person %d: %w", id, err)
			}
			for _, e := range p.Emails {
				if err := emails.Delete(indexKey(e.Email, id)); err != nil {
					return fmt.Errorf("failed to unindex person %d: %w", id, err)
				}
			}
			if err := docs.Delete(key); err != nil {
				return fmt.Errorf("failed to delete person %d: %w", id, err)
			}
			rows += 1 + p.ChildCount()
		}
		return nil
	})
	if err != nil {
		return core.OpResult{}, core.WrapError("deletePeople", err)
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people deleted", "requested", len(ids), "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// clearBucket deletes every key, keeping the bucket and its sequence.
func clearBucket(b *bolt.Bucket) error {
	var keys [][]byte
	if err := b.ForEach(func(k, _ []byte) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
