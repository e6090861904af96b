// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"fmt"
	"io"
	"math"
	"sort"

	"simbench-cli/internal/results"
)

// RoutineStats are the per-routine statistics aggregated across every rank
// and thread of a tree.
type RoutineStats struct {
	Routine    string
	AvgPercent float64
	AvgSelf    float64
	MinSelf    float64
	MaxSelf    float64
	StdSelf    float64
	AvgTotal   float64
	Calls      int64
	// Imbalance is (max-min)/max of the self time across ranks, in percent.
	Imbalance float64
}

// Aggregate groups all records of the forest by routine name and computes
// cross-rank statistics, sorted by average self time, heaviest first.
func (t *Tree) Aggregate() []RoutineStats {
	type acc struct {
		percentSum float64
		selfSum    float64
		selfSq     float64
		totalSum   float64
		minSelf    float64
		maxSelf    float64
		calls      int64
		n          int
	}

	accs := make(map[string]*acc)
	var names []string
	for ri := range t.Roots {
		root := &t.Roots[ri]
		for id := 0; id < root.Len(); id++ {
			rec := root.Record(id)
			a, ok := accs[rec.Name]
			if !ok {
				a = &acc{minSelf: math.Inf(1), maxSelf: math.Inf(-1)}
				accs[rec.Name] = a
				names = append(names, rec.Name)
			}
			a.percentSum += rec.Percent
			a.selfSum += rec.Self
			a.selfSq += rec.Self * rec.Self
			a.totalSum += rec.Total
			a.minSelf = math.Min(a.minSelf, rec.Self)
			a.maxSelf = math.Max(a.maxSelf, rec.Self)
			a.calls += rec.Calls
			a.n++
		}
	}

	stats := make([]RoutineStats, 0, len(names))
	for _, name := range names {
		a := accs[name]
		n := float64(a.n)
		s := RoutineStats{
			Routine:    name,
			AvgPercent: a.percentSum / n,
			AvgSelf:    a.selfSum / n,
			MinSelf:    a.minSelf,
			MaxSelf:    a.maxSelf,
			AvgTotal:   a.totalSum / n,
			Calls:      a.calls,
		}
		variance := a.selfSq/n - s.AvgSelf*s.AvgSelf
		if variance > 0 {
			s.StdSelf = math.Sqrt(variance)
		}
		if a.maxSelf > 0 {
			s.Imbalance = (a.maxSelf - a.minSelf) / a.maxSelf * 100
		}
		stats = append(stats, s)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AvgSelf != stats[j].AvgSelf {
			return stats[i].AvgSelf > stats[j].AvgSelf
		}
		return stats[i].Routine < stats[j].Routine
	})
	return stats
}

// Table condenses the forest into a result table so profile trees can be
// compared through the same tolerance machinery as any other benchmark
// outcome. Each routine becomes a case with timing and call-count metrics;
// the wall-time statistics land under the "run" case.
func (t *Tree) Table() (*results.Table, error) {
	tbl := results.NewTable()

	wall := t.Wall()
	runRows := []results.Row{
		{Case: "run", Metric: "walltime_avg", Value: results.Number(wall.Avg), Unit: "s"},
		{Case: "run", Metric: "walltime_min", Value: results.Number(wall.Min), Unit: "s"},
		{Case: "run", Metric: "walltime_max", Value: results.Number(wall.Max), Unit: "s"},
		{Case: "run", Metric: "tasks", Value: results.Number(float64(t.Procs))},
		{Case: "run", Metric: "threads", Value: results.Number(float64(t.Threads))},
	}
	for _, row := range runRows {
		if err := tbl.Add(row); err != nil {
			return nil, err
		}
	}

	for _, s := range t.Aggregate() {
		rows := []results.Row{
			{Case: s.Routine, Metric: "self_time_avg", Value: results.Number(s.AvgSelf), Unit: "s"},
			{Case: s.Routine, Metric: "self_time_min", Value: results.Number(s.MinSelf), Unit: "s"},
			{Case: s.Routine, Metric: "self_time_max", Value: results.Number(s.MaxSelf), Unit: "s"},
			{Case: s.Routine, Metric: "total_time_avg", Value: results.Number(s.AvgTotal), Unit: "s"},
			{Case: s.Routine, Metric: "calls", Value: results.Number(float64(s.Calls))},
			{Case: s.Routine, Metric: "imbalance", Value: results.Number(s.Imbalance), Unit: "%"},
		}
		for _, row := range rows {
			if err := tbl.Add(row); err != nil {
				return nil, err
			}
		}
	}
	return tbl, nil
}

// Summary pretty-prints the tree: run metadata, wall-time statistics and
// the per-routine listing, heaviest routines first.
func (t *Tree) Summary(w io.Writer) error {
	wall := t.Wall()
	if _, err := fmt.Fprintf(w,
		"The name of the executable : %s\n"+
			"Number of MPI-tasks        : %d\n"+
			"Number of OpenMP-threads   : %d\n"+
			"Wall-times over %d MPI-tasks (secs) : Min=%.3f, Max=%.3f, Avg=%.3f, StDev=%.3f\n",
		t.Program, t.Procs, t.Threads, len(t.Roots),
		wall.Min, wall.Max, wall.Avg, wall.Std); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if _, err := fmt.Fprintln(w,
		"  Avg-%   Avg.time   Min.time   Max.time   St.dev  Imbal-%   # of calls : Name of the routine"); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	for _, s := range t.Aggregate() {
		if _, err := fmt.Fprintf(w, " %6.2f%%    %7.3f    %7.3f    %7.3f    %6.3f   %6.2f   %10d : %s\n",
			s.AvgPercent, s.AvgSelf, s.MinSelf, s.MaxSelf, s.StdSelf, s.Imbalance, s.Calls, s.Routine); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
