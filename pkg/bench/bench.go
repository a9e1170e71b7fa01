// Package bench runs the bulk CRUD suite against a store and collects
// per-operation row counts, sizes and timings, so the two backends can
// be compared on identical generated data.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rolodexdb/rolodex/internal/datagen"
	"github.com/rolodexdb/rolodex/pkg/core"
)

// Options configure a benchmark run.
type Options struct {
	People int    // aggregates per batch (default 1000)
	Seed   int64  // generator seed (default 1)
	Label  string // free-form label carried into the report, e.g. the backend name
}

// DefaultOptions returns the standard 1000-person run.
func DefaultOptions() Options {
	return Options{People: 1000, Seed: 1}
}

// Result is the outcome of one suite step.
type Result struct {
	Op      string        `json:"op"`
	Rows    int64         `json:"rows"`
	SizeMB  float64       `json:"sizeMb"`
	Elapsed time.Duration `json:"elapsed"`
}

// Report is a completed benchmark run.
type Report struct {
	RunID   string        `json:"runId"`
	Label   string        `json:"label,omitempty"`
	People  int           `json:"people"`
	Seed    int64         `json:"seed"`
	Started time.Time     `json:"started"`
	Total   time.Duration `json:"total"`
	Results []Result      `json:"results"`
}

func (rep *Report) add(op string, res core.OpResult) {
	rep.Results = append(rep.Results, Result{
		Op:      op,
		Rows:    res.Rows,
		SizeMB:  res.SizeMB,
		Elapsed: res.Elapsed,
	})
}

// Runner executes the suite against one store.
type Runner struct {
	store core.Store
	opts  Options
}

// New creates a runner. Zero-valued options fall back to defaults.
func New(store core.Store, opts Options) *Runner {
	if opts.People <= 0 {
		opts.People = 1000
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	return &Runner{store: store, opts: opts}
}

// Run executes create, read, update, re-read, selective delete of half
// the batch, then delete-all, recording one Result per step. On success
// the store ends empty. The first failing step aborts the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.New().String(),
		Label:   r.opts.Label,
		People:  r.opts.People,
		Seed:    r.opts.Seed,
		Started: time.Now(),
	}

	people := datagen.People(r.opts.People, r.opts.Seed)

	res, err := r.store.CreatePeople(ctx, people)
	if err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}
	report.add("create", res)

	read, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read step: %w", err)
	}
	report.add("read", core.OpResult{Rows: int64(len(read.People)), SizeMB: read.SizeMB, Elapsed: read.Elapsed})

	for i, p := range people {
		p.Phone = fmt.Sprintf("+1 555-%03d-%04d", i%1000, i%10000)
	}
	res, err = r.store.UpdatePeople(ctx, people)
	if err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}
	report.add("update", res)

	read, err = r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reread step: %w", err)
	}
	report.add("reread", core.OpResult{Rows: int64(len(read.People)), SizeMB: read.SizeMB, Elapsed: read.Elapsed})

	res, err = r.store.DeletePeople(ctx, people[:len(people)/2])
	if err != nil {
		return nil, fmt.Errorf("deleteHalf step: %w", err)
	}
	report.add("deleteHalf", res)

	res, err = r.store.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("deleteAll step: %w", err)
	}
	report.add("deleteAll", res)

	report.Total = time.Since(report.Started)
	return report, nil
}
