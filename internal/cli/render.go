package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// table writes rows in aligned columns. Commands print tables to
// stdout and diagnostics to stderr so output stays pipeable.
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)}
	if len(headers) > 0 {
		fmt.Fprintln(t.w, strings.Join(headers, "\t"))
	}
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *table) flush() {
	t.w.Flush()
}

func formatTime(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatDate(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Local().Format("2006-01-02")
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	return &ts, nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func staleNotice(out io.Writer, stale bool) {
	if stale {
		fmt.Fprintln(out, "(offline, showing cached data)")
	}
}
