package bench

import (
	"fmt"
	"strings"
	"time"
)

// String renders the run as an aligned text table.
func (rep *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s", rep.RunID)
	if rep.Label != "" {
		fmt.Fprintf(&b, " (%s)", rep.Label)
	}
	fmt.Fprintf(&b, ": %d people, seed %d\n", rep.People, rep.Seed)

	fmt.Fprintf(&b, "%-12s %10s %12s %14s\n", "OPERATION", "ROWS", "SIZE (MB)", "ELAPSED")
	for _, r := range rep.Results {
		fmt.Fprintf(&b, "%-12s %10d %12.2f %14s\n", r.Op, r.Rows, r.SizeMB, r.Elapsed.Round(time.Microsecond))
	}
	fmt.Fprintf(&b, "%-12s %10s %12s %14s\n", "total", "", "", rep.Total.Round(time.Microsecond))

	return b.String()
}
