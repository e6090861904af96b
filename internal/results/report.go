// SPDX-License-Identifier: MPL-2.0

package results

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

type (
	// Report is the immutable outcome of one comparison call.
	Report struct {
		entries []Entry
	}

	// Counts is the per-status entry tally of a report.
	Counts struct {
		Match   int
		Within  int
		Out     int
		Missing int
		Extra   int
	}
)

// Entries returns all entries in deterministic comparison order. The slice
// is shared; callers must not modify it.
func (r *Report) Entries() []Entry { return r.entries }

// Regressions returns the entries that fail the run, in report order.
func (r *Report) Regressions() []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.Status == StatusOutOfTolerance || e.Status == StatusMissing {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies entries per status.
func (r *Report) Counts() Counts {
	var c Counts
	for _, e := range r.entries {
		switch e.Status {
		case StatusMatch:
			c.Match++
		case StatusWithinTolerance:
			c.Within++
		case StatusOutOfTolerance:
			c.Out++
		case StatusMissing:
			c.Missing++
		case StatusExtra:
			c.Extra++
		}
	}
	return c
}

// Pass reports the overall run verdict: fail if any entry is out of
// tolerance or missing. Extra entries alone never fail a run.
func (r *Report) Pass() bool {
	for _, e := range r.entries {
		if e.Status == StatusOutOfTolerance || e.Status == StatusMissing {
			return false
		}
	}
	return true
}

// delta renders the relative delta column.
func (e Entry) delta() string {
	if e.DeltaUndefined {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", e.RelativeDelta*100)
}

// value renders a possibly-absent value column.
func value(v Value, present bool) string {
	if !present {
		return "-"
	}
	return v.String()
}

// WriteText renders the report as an aligned console table followed by the
// summary line.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tMETRIC\tSTATUS\tREFERENCE\tOBSERVED\tDELTA")
	for _, e := range r.entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Case, e.Metric, e.Status,
			value(e.Reference, e.Status != StatusExtra),
			value(e.Observed, e.Status != StatusMissing),
			e.delta())
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	c := r.Counts()
	verdict := "PASS"
	if !r.Pass() {
		verdict = "FAIL"
	}
	_, err := fmt.Fprintf(w, "\n%s: %d match, %d within tolerance, %d out of tolerance, %d missing, %d extra\n",
		verdict, c.Match, c.Within, c.Out, c.Missing, c.Extra)
	return err
}

// Markdown renders the report as a markdown document with a verdict heading
// and a diff table, suitable for terminal rendering or inclusion in CI
// summaries.
func (r *Report) Markdown() string {
	var b strings.Builder

	verdict := "PASS"
	if !r.Pass() {
		verdict = "FAIL"
	}
	c := r.Counts()
	fmt.Fprintf(&b, "# Comparison: %s\n\n", verdict)
	fmt.Fprintf(&b, "%d match, %d within tolerance, %d out of tolerance, %d missing, %d extra\n\n",
		c.Match, c.Within, c.Out, c.Missing, c.Extra)

	b.WriteString("| Case | Metric | Status | Reference | Observed | Delta |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, e := range r.entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			e.Case, e.Metric, e.Status,
			value(e.Reference, e.Status != StatusExtra),
			value(e.Observed, e.Status != StatusMissing),
			e.delta())
	}
	return b.String()
}
