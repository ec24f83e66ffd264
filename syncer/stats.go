package syncer

import (
	"fmt"
	"io"
	"strings"
)

// Stats holds the counters for one collection's sync pass. A non-empty Err
// marks the collection as failed; the counters are then meaningless.
type Stats struct {
	Inserted  int64
	Updated   int64
	Deleted   int64
	Unchanged int64
	Err       string
}

// Failed reports whether this collection's sync pass errored.
func (s *Stats) Failed() bool {
	return s.Err != ""
}

// Summary aggregates per-collection stats across a whole run.
type Summary struct {
	Collections int
	Inserted    int64
	Updated     int64
	Deleted     int64
	Unchanged   int64
	Errors      int
}

// Summarize totals the per-collection stats for the final report.
func Summarize(all map[string]*Stats) Summary {
	summary := Summary{Collections: len(all)}

	for _, stats := range all {
		if stats.Failed() {
			summary.Errors++
			continue
		}
		summary.Inserted += stats.Inserted
		summary.Updated += stats.Updated
		summary.Deleted += stats.Deleted
		summary.Unchanged += stats.Unchanged
	}

	return summary
}

// Print writes the summary block to w.
func (s Summary) Print(w io.Writer) {
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(w, "\n%s\nSUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Collections processed: %d\n", s.Collections)
	fmt.Fprintf(w, "Total inserted: %d\n", s.Inserted)
	fmt.Fprintf(w, "Total updated: %d\n", s.Updated)
	fmt.Fprintf(w, "Total deleted: %d\n", s.Deleted)
	fmt.Fprintf(w, "Total unchanged: %d\n", s.Unchanged)
	if s.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	}
}
