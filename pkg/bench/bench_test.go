package bench

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rolodexdb/rolodex/internal/datagen"
	"github.com/rolodexdb/rolodex/pkg/boltstore"
	"github.com/rolodexdb/rolodex/pkg/core"
	"github.com/rolodexdb/rolodex/pkg/sqlstore"
)

func testStores(t *testing.T) map[string]core.Store {
	t.Helper()

	sqlite, err := sqlstore.New(filepath.Join(t.TempDir(), "bench.sqlite"))
	if err != nil {
		t.Fatalf("sqlstore.New failed: %v", err)
	}
	bolt, err := boltstore.New(filepath.Join(t.TempDir(), "bench.bolt"))
	if err != nil {
		t.Fatalf("boltstore.New failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
		_ = bolt.Close()
	})
	return map[string]core.Store{"sqlite": sqlite, "bolt": bolt}
}

func TestRunSuite(t *testing.T) {
	const people, seed = 60, int64(42)

	// The suite's two delete steps must jointly account for every parent
	// and child in the generated batch.
	var children int64
	for _, p := range datagen.People(people, seed) {
		children += p.ChildCount()
	}

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			runner := New(store, Options{People: people, Seed: seed, Label: name})
			report, err := runner.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if _, err := uuid.Parse(report.RunID); err != nil {
				t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
			}
			if report.Label != name || report.People != people || report.Seed != seed {
				t.Errorf("report header fields wrong: %+v", report)
			}
			if report.Total <= 0 {
				t.Error("Total elapsed must be positive")
			}

			wantOps := []string{"create", "read", "update", "reread", "deleteHalf", "deleteAll"}
			if len(report.Results) != len(wantOps) {
				t.Fatalf("got %d results, want %d", len(report.Results), len(wantOps))
			}
			for i, want := range wantOps {
				if report.Results[i].Op != want {
					t.Errorf("step %d = %q, want %q", i, report.Results[i].Op, want)
				}
			}

			byOp := map[string]Result{}
			for _, r := range report.Results {
				byOp[r.Op] = r
			}
			if byOp["create"].Rows != people {
				t.Errorf("create rows = %d, want %d", byOp["create"].Rows, people)
			}
			if byOp["read"].Rows != people || byOp["reread"].Rows != people {
				t.Errorf("read rows = %d/%d, want %d", byOp["read"].Rows, byOp["reread"].Rows, people)
			}
			if byOp["update"].Rows != people {
				t.Errorf("update rows = %d, want %d", byOp["update"].Rows, people)
			}
			deleted := byOp["deleteHalf"].Rows + byOp["deleteAll"].Rows
			if deleted != people+children {
				t.Errorf("delete steps removed %d rows, want %d parents + %d children", deleted, people, children)
			}

			counts, err := store.Counts(context.Background())
			if err != nil {
				t.Fatalf("Counts failed: %v", err)
			}
			if counts.Total() != 0 {
				t.Errorf("store not empty after suite: %+v", counts)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	runner := New(nil, Options{})
	if runner.opts.People != 1000 || runner.opts.Seed != 1 {
		t.Errorf("defaults not applied: %+v", runner.opts)
	}

	def := DefaultOptions()
	if def.People != 1000 || def.Seed != 1 {
		t.Errorf("DefaultOptions = %+v", def)
	}
}

func TestReportString(t *testing.T) {
	report := &Report{
		RunID:  "0c1cbfc7-23de-4b85-9e79-32621475e25a",
		Label:  "sqlite",
		People: 10,
		Seed:   1,
		Total:  3 * time.Millisecond,
		Results: []Result{
			{Op: "create", Rows: 10, SizeMB: 0.05, Elapsed: time.Millisecond},
			{Op: "deleteAll", Rows: 25, SizeMB: 0.05, Elapsed: 2 * time.Millisecond},
		},
	}

	out := report.String()
	for _, want := range []string{"sqlite", "OPERATION", "create", "deleteAll", "0.05", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}
