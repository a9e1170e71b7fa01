package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rolodexdb/rolodex/pkg/core"
)

func setupTestStore(t testing.TB) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.sqlite")
	store, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// samplePeople returns three aggregates: two addresses and one email on
// the first, one address and two emails on the second, no children on the
// third.
func samplePeople() []*core.Person {
	return []*core.Person{
		{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Phone:     "+44 20 7946 0321",
			Addresses: []core.Address{
				{Street: "12 St James's Square", City: "London", PostalCode: "SW1Y 4JH", Country: "GB", Primary: true, Kind: core.AddressHome},
				{Street: "1 Analytical Way", City: "Cambridge", Country: "GB", Kind: core.AddressWork},
			},
			Emails: []core.EmailAddress{
				{Email: "ada@example.org", Primary: true, Kind: core.EmailPersonal},
			},
		},
		{
			FirstName: "Grace",
			LastName:  "Hopper",
			Addresses: []core.Address{
				{Street: "9 Navy Yard", City: "Arlington", Region: "VA", Country: "US", Primary: true, Kind: core.AddressWork},
			},
			Emails: []core.EmailAddress{
				{Email: "grace@example.mil", Primary: true, Kind: core.EmailWork},
				{Email: "grace@example.org", Kind: core.EmailPersonal},
			},
		},
		{
			FirstName: "Alan",
			LastName:  "Turing",
			Phone:     "+44 1908 640404",
		},
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(""); !errors.Is(err, core.ErrNoPath) {
		t.Errorf("New with empty path returned %v, want ErrNoPath", err)
	}
}

func TestCreateAndReadAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	people := samplePeople()
	res, err := store.CreatePeople(ctx, people)
	if err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Rows)
	}
	if res.Elapsed <= 0 {
		t.Error("Elapsed must be positive")
	}
	if res.SizeMB < 0 {
		t.Errorf("SizeMB = %v, must not be negative", res.SizeMB)
	}

	for i, p := range people {
		if p.ID == 0 {
			t.Errorf("person %d has no identity after create", i)
		}
		for _, a := range p.Addresses {
			if a.ID == 0 || a.PersonID != p.ID {
				t.Errorf("address %+v not bound to person %d", a, p.ID)
			}
		}
		for _, e := range p.Emails {
			if e.ID == 0 || e.PersonID != p.ID {
				t.Errorf("email %+v not bound to person %d", e, p.ID)
			}
		}
	}

	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != 3 {
		t.Fatalf("ReadAll returned %d people, want 3", len(read.People))
	}

	ada := read.People[0]
	if ada.FirstName != "Ada" || ada.LastName != "Lovelace" || ada.Phone != "+44 20 7946 0321" {
		t.Errorf("unexpected first person: %+v", ada)
	}
	if len(ada.Addresses) != 2 || len(ada.Emails) != 1 {
		t.Errorf("Ada children = %d addresses, %d emails, want 2 and 1", len(ada.Addresses), len(ada.Emails))
	}
	if ada.Addresses[0].Street != "12 St James's Square" || !ada.Addresses[0].Primary {
		t.Errorf("unexpected primary address: %+v", ada.Addresses[0])
	}
	if ada.Addresses[1].Kind != core.AddressWork {
		t.Errorf("address kind = %q, want work", ada.Addresses[1].Kind)
	}

	grace := read.People[1]
	if len(grace.Addresses) != 1 || len(grace.Emails) != 2 {
		t.Errorf("Grace children = %d addresses, %d emails, want 1 and 2", len(grace.Addresses), len(grace.Emails))
	}
	if grace.Phone != "" {
		t.Errorf("empty phone must round-trip empty, got %q", grace.Phone)
	}

	alan := read.People[2]
	if alan.Addresses == nil || alan.Emails == nil {
		t.Error("childless person must read back with empty non-nil slices")
	}
	if len(alan.Addresses) != 0 || len(alan.Emails) != 0 {
		t.Errorf("Alan children = %d addresses, %d emails, want none", len(alan.Addresses), len(alan.Emails))
	}
}

func TestCreateEmptyBatch(t *testing.T) {
	store := setupTestStore(t)

	res, err := store.CreatePeople(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreatePeople(nil) failed: %v", err)
	}
	if res.Rows != 0 {
		t.Errorf("Rows = %d, want 0", res.Rows)
	}
}

func TestCreateNilPerson(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreatePeople(context.Background(), []*core.Person{{FirstName: "A", LastName: "B"}, nil})
	if !errors.Is(err, core.ErrNilPerson) {
		t.Errorf("err = %v, want ErrNilPerson", err)
	}

	// Nothing from the failed batch may persist
	read, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != 0 {
		t.Errorf("failed batch leaked %d people", len(read.People))
	}
}

func TestReadAllEmptyStore(t *testing.T) {
	store := setupTestStore(t)

	read, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if read.People == nil {
		t.Error("People must be empty non-nil on an empty store")
	}
	if len(read.People) != 0 {
		t.Errorf("empty store returned %d people", len(read.People))
	}
}

func TestUpdatePeople(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	people := samplePeople()
	if _, err := store.CreatePeople(ctx, people); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	people[0].FirstName = "Augusta"
	people[0].Phone = ""
	people[0].Addresses = nil // must not touch stored children
	unknown := &core.Person{ID: 999999, FirstName: "Ghost", LastName: "Entry"}
	fresh := &core.Person{FirstName: "No", LastName: "Identity"} // ID 0, skipped

	res, err := store.UpdatePeople(ctx, []*core.Person{people[0], unknown, fresh})
	if err != nil {
		t.Fatalf("UpdatePeople failed: %v", err)
	}
	if res.Rows != 1 {
		t.Errorf("Rows = %d, want 1 (unknown and fresh skipped)", res.Rows)
	}

	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	got := read.People[0]
	if got.FirstName != "Augusta" {
		t.Errorf("FirstName = %q, want Augusta", got.FirstName)
	}
	if got.Phone != "" {
		t.Errorf("Phone = %q, want cleared", got.Phone)
	}
	if len(got.Addresses) != 2 || len(got.Emails) != 1 {
		t.Errorf("update touched children: %d addresses, %d emails", len(got.Addresses), len(got.Emails))
	}
	if len(read.People) != 3 {
		t.Errorf("update changed person count to %d", len(read.People))
	}
}

func TestCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	want := core.Counts{People: 3, Addresses: 3, Emails: 3}
	if counts != want {
		t.Errorf("Counts = %+v, want %+v", counts, want)
	}
	if counts.Total() != 9 {
		t.Errorf("Total = %d, want 9", counts.Total())
	}
}

func TestIdentityNotReused(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := []*core.Person{{FirstName: "First", LastName: "Person"}}
	if _, err := store.CreatePeople(ctx, first); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	firstID := first[0].ID

	if _, err := store.DeletePeople(ctx, first); err != nil {
		t.Fatalf("DeletePeople failed: %v", err)
	}

	second := []*core.Person{{FirstName: "Second", LastName: "Person"}}
	if _, err := store.CreatePeople(ctx, second); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	if second[0].ID <= firstID {
		t.Errorf("identity %d reused after delete (previous max %d)", second[0].ID, firstID)
	}
}

func TestConcurrentFirstUse(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			people := []*core.Person{{
				FirstName: fmt.Sprintf("Worker%d", n),
				LastName:  "Concurrent",
			}}
			_, errs[n] = store.CreatePeople(ctx, people)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}

	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != workers {
		t.Errorf("concurrent first use stored %d people, want %d", len(read.People), workers)
	}
}

func TestResetThenReuse(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	if store.SizeMB() <= 0 {
		t.Error("SizeMB must be positive after writes")
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := store.SizeMB(); got != 0 {
		t.Errorf("SizeMB after reset = %v, want 0", got)
	}

	// Next operation re-initializes against a fresh file
	read, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll after reset failed: %v", err)
	}
	if len(read.People) != 0 {
		t.Errorf("reset store still holds %d people", len(read.People))
	}

	if _, err := store.CreatePeople(ctx, []*core.Person{{FirstName: "Post", LastName: "Reset"}}); err != nil {
		t.Fatalf("CreatePeople after reset failed: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}

	if _, err := store.ReadAll(ctx); !errors.Is(err, core.ErrStoreClosed) {
		t.Errorf("ReadAll on closed store: %v, want ErrStoreClosed", err)
	}
	if _, err := store.CreatePeople(ctx, samplePeople()); !errors.Is(err, core.ErrStoreClosed) {
		t.Errorf("CreatePeople on closed store: %v, want ErrStoreClosed", err)
	}
	if err := store.Reset(ctx); !errors.Is(err, core.ErrStoreClosed) {
		t.Errorf("Reset on closed store: %v, want ErrStoreClosed", err)
	}

	// The probe never fails, even closed
	if got := store.SizeMB(); got < 0 {
		t.Errorf("SizeMB on closed store = %v", got)
	}
}

func TestSizeMBBeforeInit(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "never-created.sqlite"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if got := store.SizeMB(); got != 0 {
		t.Errorf("SizeMB before init = %v, want 0", got)
	}
}

func TestCleanOnStartup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.sqlite")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := first.CreatePeople(ctx, samplePeople()); err != nil {
		t.Fatalf("CreatePeople failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	cfg := core.DefaultConfig(path)
	cfg.CleanOnStartup = true
	second, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	read, err := second.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(read.People) != 0 {
		t.Errorf("clean on startup kept %d people", len(read.People))
	}
}
