package sqlstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rolodexdb/rolodex/pkg/core"
)

func TestDeleteAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	res, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	// 3 parents + 3 addresses + 3 emails
	if res.Rows != 9 {
		t.Errorf("Rows = %d, want 9 (parents plus children)", res.Rows)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("store not empty after DeleteAll: %+v", counts)
	}

	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != 0 {
		t.Errorf("ReadAll returned %d people after DeleteAll", len(read.People))
	}
}

func TestDeleteAllEmptyStore(t *testing.T) {
	store := setupTestStore(t)

	res, err := store.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("DeleteAll on empty store failed: %v", err)
	}
	if res.Rows != 0 {
		t.Errorf("Rows = %d, want 0", res.Rows)
	}
}

func TestDeletePeopleSubset(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	people := samplePeople()
	if _, err := store.CreatePeople(ctx, people); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	// Ada carries 2 addresses and 1 email; Alan carries none
	res, err := store.DeletePeople(ctx, []*core.Person{people[0], people[2]})
	if err != nil {
		t.Fatalf("DeletePeople failed: %v", err)
	}
	if res.Rows != 5 {
		t.Errorf("Rows = %d, want 5 (2 parents + 3 children)", res.Rows)
	}

	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != 1 {
		t.Fatalf("survivors = %d, want 1", len(read.People))
	}
	grace := read.People[0]
	if grace.FirstName != "Grace" {
		t.Errorf("wrong survivor: %+v", grace)
	}
	if len(grace.Addresses) != 1 || len(grace.Emails) != 2 {
		t.Errorf("survivor children damaged: %d addresses, %d emails", len(grace.Addresses), len(grace.Emails))
	}
}

func TestDeletePeopleUnknownIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	stale := []*core.Person{{ID: 424242}, {ID: 555555}}
	res, err := store.DeletePeople(ctx, stale)
	if err != nil {
		t.Fatalf("DeletePeople with unknown ids failed: %v", err)
	}
	if res.Rows != 0 {
		t.Errorf("Rows = %d, want 0 for unknown identities", res.Rows)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.People != 3 {
		t.Errorf("unknown-id delete removed rows: %+v", counts)
	}
}

func TestDeletePeopleNoIdentities(t *testing.T) {
	store := setupTestStore(t)

	res, err := store.DeletePeople(context.Background(), []*core.Person{{FirstName: "Never", LastName: "Saved"}, nil})
	if err != nil {
		t.Fatalf("DeletePeople failed: %v", err)
	}
	if res.Rows != 0 {
		t.Errorf("Rows = %d, want 0", res.Rows)
	}
}

func TestDeletePeopleChunking(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// 1500 identities force three chunks at the default batch size of 500
	people := make([]*core.Person, 1500)
	for i := range people {
		people[i] = &core.Person{
			FirstName: fmt.Sprintf("Bulk%04d", i),
			LastName:  "Row",
		}
	}
	if _, err := store.CreatePeople(ctx, people); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	res, err := store.DeletePeople(ctx, people)
	if err != nil {
		t.Fatalf("DeletePeople failed: %v", err)
	}
	if res.Rows != 1500 {
		t.Errorf("Rows = %d, want 1500", res.Rows)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("store not empty after chunked delete: %+v", counts)
	}
}

func TestDeletePeopleSmallBatchSize(t *testing.T) {
	cfg := core.DefaultConfig(filepath.Join(t.TempDir(), "people.sqlite"))
	cfg.BatchSize = 7
	store, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	people := make([]*core.Person, 25)
	for i := range people {
		people[i] = &core.Person{
			FirstName: fmt.Sprintf("Small%02d", i),
			LastName:  "Batch",
			Emails:    []core.EmailAddress{{Email: fmt.Sprintf("s%02d@example.com", i), Kind: core.EmailPersonal}},
		}
	}
	if _, err := store.CreatePeople(ctx, people); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	res, err := store.DeletePeople(ctx, people)
	if err != nil {
		t.Fatalf("DeletePeople failed: %v", err)
	}
	// 25 parents + 25 emails across four ragged chunks
	if res.Rows != 50 {
		t.Errorf("Rows = %d, want 50", res.Rows)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("store not empty: %+v", counts)
	}
}
