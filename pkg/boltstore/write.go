package boltstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// CreatePeople persists the aggregates in a single write transaction.
// Parents and children draw identities from the people bucket's sequence,
// which only ever moves forward: an identity is never handed out twice,
// not even after every document has been deleted. Rows counts parents.
func (s *Store) CreatePeople(ctx context.Context, people []*core.Person) (core.OpResult, error) {
	start := time.Now()

	if len(people) == 0 {
		return core.OpResult{SizeMB: s.SizeMB(), Elapsed: time.Since(start)}, nil
	}
	for i, p := range people {
		if p == nil {
			return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("index %d: %w", i, core.ErrNilPerson))
		}
	}

	if err := s.acquire(ctx); err != nil {
		return core.OpResult{}, core.WrapError("createPeople", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", err)
	}

	var rows int64
	err = db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketPeople)
		names := tx.Bucket(bucketIdxName)
		emails := tx.Bucket(bucketIdxEmail)

		for _, p := range people {
			seq, err := docs.NextSequence()
			if err != nil {
				return fmt.Errorf("failed to allocate identity: %w", err)
			}
			p.ID = int64(seq)

			for j := range p.Addresses {
				seq, err := docs.NextSequence()
				if err != nil {
					return fmt.Errorf("failed to allocate identity: %w", err)
				}
				p.Addresses[j].ID = int64(seq)
				p.Addresses[j].PersonID = p.ID
			}
			for j := range p.Emails {
				seq, err := docs.NextSequence()
				if err != nil {
					return fmt.Errorf("failed to allocate identity: %w", err)
				}
				p.Emails[j].ID = int64(seq)
				p.Emails[j].PersonID = p.ID
			}

			data, err := encodePerson(p)
			if err != nil {
				return err
			}
			if err := docs.Put(itob(p.ID), data); err != nil {
				return fmt.Errorf("failed to store person %d: %w", p.ID, err)
			}
			if err := names.Put(indexKey(p.LastName, p.ID), []byte{}); err != nil {
				return fmt.Errorf("failed to index person %d: %w", p.ID, err)
			}
			for _, e := range p.Emails {
				if err := emails.Put(indexKey(e.Email, p.ID), []byte{}); err != nil {
					return fmt.Errorf("failed to index person %d: %w", p.ID, err)
				}
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", err)
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people created", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// UpdatePeople overwrites parent scalar fields in a single write
// transaction, re-keying the name index when a last name changes. The
// embedded child collections stay exactly as stored. Aggregates without
// an identity and identities with no document are skipped. Rows counts
// documents rewritten.
func (s *Store) UpdatePeople(ctx context.Context, people []*core.Person) (core.OpResult, error) {
	start := time.Now()

	if len(people) == 0 {
		return core.OpResult{SizeMB: s.SizeMB(), Elapsed: time.Since(start)}, nil
	}
	for i, p := range people {
		if p == nil {
			return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("index %d: %w", i, core.ErrNilPerson))
		}
	}

	if err := s.acquire(ctx); err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", err)
	}

	var rows int64
	err = db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketPeople)
		names := tx.Bucket(bucketIdxName)

		for _, p := range people {
			if p.ID == 0 {
				continue
			}
			key := itob(p.ID)
			data := docs.Get(key)
			if data == nil {
				continue
			}
			stored, err := decodePerson(data)
			if err != nil {
				return fmt.Errorf("failed to decode person %d: %w", p.ID, err)
			}

			if stored.LastName != p.LastName {
				if err := names.Delete(indexKey(stored.LastName, p.ID)); err != nil {
					return fmt.Errorf("failed to re-key person %d: %w", p.ID, err)
				}
				if err := names.Put(indexKey(p.LastName, p.ID), []byte{}); err != nil {
					return fmt.Errorf("failed to re-key person %d: %w", p.ID, err)
				}
			}

			stored.FirstName = p.FirstName
			stored.LastName = p.LastName
			stored.Phone = p.Phone

			data, err = encodePerson(stored)
			if err != nil {
				return err
			}
			if err := docs.Put(key, data); err != nil {
				return fmt.Errorf("failed to store person %d: %w", p.ID, err)
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", err)
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people updated", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}
