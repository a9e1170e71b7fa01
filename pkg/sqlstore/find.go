package sqlstore

import (
	"context"
	"fmt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// FindByLastName returns the aggregates whose last name matches exactly,
// children attached, ordered by identity. The match is served by the
// last_name index.
func (s *Store) FindByLastName(ctx context.Context, lastName string) ([]*core.Person, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, core.WrapError("findByLastName", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, core.WrapError("findByLastName", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, first_name, last_name, phone
		FROM people
		WHERE last_name = ?
		ORDER BY id
	`, lastName)
	if err != nil {
		return nil, core.WrapError("findByLastName", fmt.Errorf("failed to query people: %w", err))
	}
	people, err := scanPeopleRows(rows)
	_ = rows.Close()
	if err != nil {
		return nil, core.WrapError("findByLastName", err)
	}
	if len(people) == 0 {
		return []*core.Person{}, nil
	}

	if err := s.attachChildren(ctx, db, people); err != nil {
		return nil, core.WrapError("findByLastName", err)
	}
	return people, nil
}

// FindByEmail returns the aggregates owning an exactly matching email
// address, children attached, ordered by identity.
func (s *Store) FindByEmail(ctx context.Context, email string) ([]*core.Person, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, core.WrapError("findByEmail", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, core.WrapError("findByEmail", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT p.id, p.first_name, p.last_name, p.phone
		FROM people p
		JOIN email_addresses e ON e.person_id = p.id
		WHERE e.email = ?
		ORDER BY p.id
	`, email)
	if err != nil {
		return nil, core.WrapError("findByEmail", fmt.Errorf("failed to query people: %w", err))
	}
	people, err := scanPeopleRows(rows)
	_ = rows.Close()
	if err != nil {
		return nil, core.WrapError("findByEmail", err)
	}
	if len(people) == 0 {
		return []*core.Person{}, nil
	}

	if err := s.attachChildren(ctx, db, people); err != nil {
		return nil, core.WrapError("findByEmail", err)
	}
	return people, nil
}
