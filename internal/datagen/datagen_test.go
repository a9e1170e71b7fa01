package datagen

import (
	"reflect"
	"testing"
)

func TestPeopleDeterministic(t *testing.T) {
	first := People(50, 42)
	second := People(50, 42)
	if !reflect.DeepEqual(first, second) {
		t.Error("same count and seed must produce identical batches")
	}

	other := People(50, 43)
	if reflect.DeepEqual(first, other) {
		t.Error("different seeds produced identical batches")
	}
}

func TestPeopleShape(t *testing.T) {
	people := People(200, 7)
	if len(people) != 200 {
		t.Fatalf("generated %d people, want 200", len(people))
	}

	for i, p := range people {
		if p.ID != 0 {
			t.Fatalf("person %d carries preset identity %d", i, p.ID)
		}
		if p.FirstName == "" || p.LastName == "" {
			t.Fatalf("person %d missing name: %+v", i, p)
		}
		if len(p.Addresses) > 3 || len(p.Emails) > 3 {
			t.Fatalf("person %d has too many children: %d addresses, %d emails", i, len(p.Addresses), len(p.Emails))
		}
		for j, a := range p.Addresses {
			if a.ID != 0 || a.PersonID != 0 {
				t.Fatalf("address %d of person %d carries preset identity", j, i)
			}
			if (j == 0) != a.Primary {
				t.Fatalf("person %d address %d primary = %v", i, j, a.Primary)
			}
		}
		for j, e := range p.Emails {
			if e.Email == "" {
				t.Fatalf("person %d email %d empty", i, j)
			}
			if (j == 0) != e.Primary {
				t.Fatalf("person %d email %d primary = %v", i, j, e.Primary)
			}
		}
	}
}

func TestPeopleEmpty(t *testing.T) {
	if got := People(0, 1); len(got) != 0 {
		t.Errorf("People(0) returned %d people", len(got))
	}
}
