package boltstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// ReadAll reconstructs every stored aggregate from its document in one
// read transaction. Big-endian keys make the cursor walk come back in
// identity order. Children arrive attached and never nil.
func (s *Store) ReadAll(ctx context.Context) (core.ReadResult, error) {
	start := time.Now()

	if err := s.acquire(ctx); err != nil {
		return core.ReadResult{}, core.WrapError("readAll", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.ReadResult{}, core.WrapError("readAll", err)
	}

	people := []*core.Person{}
	err = db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketPeople).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			p, err := decodePerson(v)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", btoi(k), err)
			}
			people = append(people, p)
		}
		return nil
	})
	if err != nil {
		return core.ReadResult{}, core.WrapError("readAll", err)
	}

	result := core.ReadResult{People: people, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people read", "people", len(people), "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// FindByLastName returns the aggregates whose last name matches exactly,
// children attached, ordered by identity. Served by a prefix scan over
// the name index bucket.
func (s *Store) FindByLastName(ctx context.Context, lastName string) ([]*core.Person, error) {
	people, err := s.findByIndex(ctx, bucketIdxName, lastName)
	if err != nil {
		return nil, core.WrapError("findByLastName", err)
	}
	return people, nil
}

// FindByEmail returns the aggregates owning an exactly matching email
// address, children attached, ordered by identity. Served by a prefix
// scan over the email index bucket.
func (s *Store) FindByEmail(ctx context.Context, email string) ([]*core.Person, error) {
	people, err := s.findByIndex(ctx, bucketIdxEmail, email)
	if err != nil {
		return nil, core.WrapError("findByEmail", err)
	}
	return people, nil
}

func (s *Store) findByIndex(ctx context.Context, bucket []byte, value string) ([]*core.Person, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	people := []*core.Person{}
	err = db.View(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketPeople)
		for _, id := range indexSeek(tx.Bucket(bucket), value) {
			data := docs.Get(itob(id))
			if data == nil {
				// Stale index entry; the document is authoritative
				continue
			}
			p, err := decodePerson(data)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", id, err)
			}
			people = append(people, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}
