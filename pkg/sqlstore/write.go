package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// CreatePeople inserts the aggregates in a single transaction. Parents are
// written first so their generated identities can be bound into the child
// rows. On success every parent and child carries its assigned identity;
// on failure the transaction is rolled back and no identities are durable.
// Rows counts parents written.
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

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback() // No-op after commit
	}()

	personStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO people (first_name, last_name, phone)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to prepare person insert: %w", err))
	}
	defer func() { _ = personStmt.Close() }()

	addrStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO addresses (person_id, street, city, region, postal_code, country, is_primary, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to prepare address insert: %w", err))
	}
	defer func() { _ = addrStmt.Close() }()

	emailStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO email_addresses (person_id, email, is_primary, kind)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to prepare email insert: %w", err))
	}
	defer func() { _ = emailStmt.Close() }()

	var rows int64
	for i, p := range people {
		res, err := personStmt.ExecContext(ctx, p.FirstName, p.LastName, nullable(p.Phone))
		if err != nil {
			return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to insert person at index %d: %w", i, err))
		}
		personID, err := res.LastInsertId()
		if err != nil {
			return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to read person id at index %d: %w", i, err))
		}
		p.ID = personID
		rows++

		for j := range p.Addresses {
			a := &p.Addresses[j]
			a.PersonID = personID
			res, err := addrStmt.ExecContext(ctx, personID, a.Street, a.City,
				nullable(a.Region), nullable(a.PostalCode), nullable(a.Country),
				a.Primary, addressKind(a.Kind))
			if err != nil {
				return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to insert address for person %d: %w", personID, err))
			}
			if a.ID, err = res.LastInsertId(); err != nil {
				return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to read address id: %w", err))
			}
		}

		for j := range p.Emails {
			e := &p.Emails[j]
			e.PersonID = personID
			res, err := emailStmt.ExecContext(ctx, personID, e.Email, e.Primary, emailKind(e.Kind))
			if err != nil {
				return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to insert email for person %d: %w", personID, err))
			}
			if e.ID, err = res.LastInsertId(); err != nil {
				return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to read email id: %w", err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return core.OpResult{}, core.WrapError("createPeople", fmt.Errorf("failed to commit transaction: %w", err))
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people created", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// UpdatePeople overwrites parent scalar fields in a single transaction.
// Child collections are deliberately not touched: reshaping them is a
// delete-and-recreate concern, not an update. Aggregates without an
// identity and identities no longer present are skipped. Rows counts rows
// actually changed.
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

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE people
		SET first_name = ?, last_name = ?, phone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	if err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("failed to prepare update: %w", err))
	}
	defer func() { _ = stmt.Close() }()

	var rows int64
	for _, p := range people {
		if p.ID == 0 {
			continue
		}
		res, err := stmt.ExecContext(ctx, p.FirstName, p.LastName, nullable(p.Phone), p.ID)
		if err != nil {
			return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("failed to update person %d: %w", p.ID, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("failed to get rows affected: %w", err))
		}
		rows += n
	}

	if err := tx.Commit(); err != nil {
		return core.OpResult{}, core.WrapError("updatePeople", fmt.Errorf("failed to commit transaction: %w", err))
	}

	result := core.OpResult{Rows: rows, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people updated", "rows", result.Rows, "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// nullable maps empty strings to NULL so optional columns stay clean.
func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func addressKind(k core.AddressKind) string {
	if k == "" {
		return string(core.AddressHome)
	}
	return string(k)
}

func emailKind(k core.EmailKind) string {
	if k == "" {
		return string(core.EmailPersonal)
	}
	return string(k)
}
