package sqlstore

import (
	"context"
	"testing"

	"github.com/rolodexdb/rolodex/pkg/core"
)

func TestFindByLastName(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	people := samplePeople()
	people = append(people, &core.Person{FirstName: "Mary", LastName: "Lovelace"})
	if _, err := store.CreatePeople(ctx, people); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	found, err := store.FindByLastName(ctx, "Lovelace")
	if err != nil {
		t.Fatalf("FindByLastName failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found %d people, want 2", len(found))
	}
	if found[0].ID >= found[1].ID {
		t.Error("results must be ordered by identity")
	}
	if found[0].FirstName != "Ada" {
		t.Errorf("first match = %q, want Ada", found[0].FirstName)
	}
	if len(found[0].Addresses) != 2 || len(found[0].Emails) != 1 {
		t.Errorf("children not attached: %d addresses, %d emails", len(found[0].Addresses), len(found[0].Emails))
	}
	if found[1].Addresses == nil || found[1].Emails == nil {
		t.Error("childless match must carry empty non-nil slices")
	}

	// Exact match only
	if got, err := store.FindByLastName(ctx, "lovelace"); err != nil || len(got) != 0 {
		t.Errorf("case-variant match returned %d people, err %v", len(got), err)
	}

	none, err := store.FindByLastName(ctx, "Nobody")
	if err != nil {
		t.Fatalf("FindByLastName failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("no-match result = %v, want empty non-nil", none)
	}
}

func TestFindByEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	found, err := store.FindByEmail(ctx, "grace@example.org")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d people, want 1", len(found))
	}
	if found[0].FirstName != "Grace" {
		t.Errorf("match = %q, want Grace", found[0].FirstName)
	}
	if len(found[0].Emails) != 2 {
		t.Errorf("match carries %d emails, want both", len(found[0].Emails))
	}

	none, err := store.FindByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("no-match result = %v, want empty non-nil", none)
	}
}
