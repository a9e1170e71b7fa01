package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// ReadAll reconstructs every stored aggregate. Parents are fetched first,
// then both child tables by owner-identity set queries; WAL mode lets the
// two child readers run side by side. Children come back attached and
// never nil.
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

	people, err := fetchPeople(ctx, db)
	if err != nil {
		return core.ReadResult{}, core.WrapError("readAll", err)
	}
	if len(people) == 0 {
		return core.ReadResult{People: []*core.Person{}, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}, nil
	}

	if err := s.attachChildren(ctx, db, people); err != nil {
		return core.ReadResult{}, core.WrapError("readAll", err)
	}

	result := core.ReadResult{People: people, SizeMB: s.SizeMB(), Elapsed: time.Since(start)}
	s.logger.Debug("people read", "people", len(people), "sizeMB", result.SizeMB, "elapsed", result.Elapsed)
	return result, nil
}

// attachChildren loads both child tables for the given parents and
// distributes the rows onto their aggregates. Each table is fetched on
// its own goroutine, with owner identities bound through chunked IN
// predicates: one pass per table, never one query per parent.
func (s *Store) attachChildren(ctx context.Context, db *sql.DB, people []*core.Person) error {
	chunks := core.ChunkIDs(core.ParentIDs(people), s.config.EffectiveBatchSize())

	var (
		addresses []core.Address
		emails    []core.EmailAddress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := fetchAddressesByOwner(gctx, db, chunks)
		if err != nil {
			return err
		}
		addresses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := fetchEmailsByOwner(gctx, db, chunks)
		if err != nil {
			return err
		}
		emails = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	core.AttachChildren(people, addresses, emails)
	return nil
}

func fetchPeople(ctx context.Context, db *sql.DB) ([]*core.Person, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, first_name, last_name, phone
		FROM people
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPeopleRows(rows)
}

func fetchAddressesByOwner(ctx context.Context, db *sql.DB, chunks [][]int64) ([]core.Address, error) {
	var addresses []core.Address
	for _, chunk := range chunks {
		in, args := inClause(chunk)
		rows, err := db.QueryContext(ctx, fmt.Sprintf(`
			SELECT id, person_id, street, city, region, postal_code, country, is_primary, kind
			FROM addresses
			WHERE person_id IN (%s)
			ORDER BY person_id, id
		`, in), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query addresses: %w", err)
		}
		batch, err := scanAddressRows(rows)
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, batch...)
	}
	return addresses, nil
}

func fetchEmailsByOwner(ctx context.Context, db *sql.DB, chunks [][]int64) ([]core.EmailAddress, error) {
	var emails []core.EmailAddress
	for _, chunk := range chunks {
		in, args := inClause(chunk)
		rows, err := db.QueryContext(ctx, fmt.Sprintf(`
			SELECT id, person_id, email, is_primary, kind
			FROM email_addresses
			WHERE person_id IN (%s)
			ORDER BY person_id, id
		`, in), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query emails: %w", err)
		}
		batch, err := scanEmailRows(rows)
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
		emails = append(emails, batch...)
	}
	return emails, nil
}

// inClause renders a chunk of identities as SQL placeholders plus args.
func inClause(ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

func scanPeopleRows(rows *sql.Rows) ([]*core.Person, error) {
	var people []*core.Person
	for rows.Next() {
		var (
			p     core.Person
			phone sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &phone); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.Phone = phone.String
		people = append(people, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}
	return people, nil
}

func scanAddressRows(rows *sql.Rows) ([]core.Address, error) {
	var addresses []core.Address
	for rows.Next() {
		var (
			a                       core.Address
			region, postal, country sql.NullString
			kind                    string
		)
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Street, &a.City, &region, &postal, &country, &a.Primary, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		a.Region = region.String
		a.PostalCode = postal.String
		a.Country = country.String
		a.Kind = core.AddressKind(kind)
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}

func scanEmailRows(rows *sql.Rows) ([]core.EmailAddress, error) {
	var emails []core.EmailAddress
	for rows.Next() {
		var (
			e    core.EmailAddress
			kind string
		)
		if err := rows.Scan(&e.ID, &e.PersonID, &e.Email, &e.Primary, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		e.Kind = core.EmailKind(kind)
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating emails: %w", err)
	}
	return emails, nil
}
