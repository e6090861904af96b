// SPDX-License-Identifier: MPL-2.0

package profile

import "math"

type (
	// Record is one parsed profile row: the timing and call statistics of a
	// single routine invocation scope. Records live in their Root's arena;
	// parent and children are arena indices, never pointers, so a Record
	// owns nothing and the Root owns the whole tree.
	Record struct {
		// Name is the routine name, with the instrumentation thread suffix
		// and hot-spot marker stripped.
		Name string
		// Thread is the OpenMP thread id the row was recorded on.
		Thread int
		// Calls is the invocation count.
		Calls int64
		// Percent is the self-time share of the rank's wall time.
		Percent float64
		// Cumulative is the running self-time sum up to this row.
		Cumulative float64
		// Self is the time spent in the routine body, excluding children.
		Self float64
		// Total is the time spent including children.
		Total float64

		parent   int
		children []int
		line     int
	}

	// Root is the call forest of a single rank. Records are stored in a flat
	// arena and addressed by index.
	Root struct {
		// Rank is the MPI rank the section was recorded on.
		Rank int
		// Walltime is the rank's reported wall time in seconds.
		Walltime float64

		records []Record
		top     []int
	}

	// Tree is the full parse result: one Root per rank section, plus the
	// section metadata shared across ranks.
	Tree struct {
		// Program is the instrumented executable name.
		Program string
		// Procs is the MPI task count reported by the dump.
		Procs int
		// Threads is the OpenMP thread count reported by the dump.
		Threads int
		// Roots holds one entry per rank section, in input order.
		Roots []Root
	}

	// WallStats are wall-time statistics across ranks.
	WallStats struct {
		Min float64
		Max float64
		Avg float64
		Std float64
	}
)

// Len returns the number of records in the arena.
func (r *Root) Len() int { return len(r.records) }

// Record returns the record at an arena index.
func (r *Root) Record(id int) Record { return r.records[id] }

// Top returns the arena indices of the top-level records, in input order.
func (r *Root) Top() []int { return r.top }

// Children returns the arena indices of a record's children, in input order.
func (r *Root) Children(id int) []int { return r.records[id].children }

// Parent returns the arena index of a record's parent, or false for
// top-level records.
func (r *Root) Parent(id int) (int, bool) {
	p := r.records[id].parent
	return p, p >= 0
}

// Lookup addresses a record by its call path from the root: a sequence of
// routine names, outermost first. The first match wins at each level.
func (r *Root) Lookup(path ...string) (int, bool) {
	if len(path) == 0 {
		return 0, false
	}
	candidates := r.top
	id, found := -1, false
	for _, name := range path {
		found = false
		for _, c := range candidates {
			if r.records[c].Name == name {
				id, found = c, true
				candidates = r.records[c].children
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return id, true
}

// Walk visits every record depth-first in input order, reporting its arena
// index and nesting depth.
func (r *Root) Walk(fn func(id, depth int)) {
	var visit func(ids []int, depth int)
	visit = func(ids []int, depth int) {
		for _, id := range ids {
			fn(id, depth)
			visit(r.records[id].children, depth+1)
		}
	}
	visit(r.top, 0)
}

// Path returns the call path of a record, outermost first.
func (r *Root) Path(id int) []string {
	var rev []string
	for id >= 0 {
		rev = append(rev, r.records[id].Name)
		id = r.records[id].parent
	}
	path := make([]string, len(rev))
	for i, name := range rev {
		path[len(rev)-1-i] = name
	}
	return path
}

// Wall computes wall-time statistics across all rank sections. The zero
// WallStats is returned for a tree without rank sections.
func (t *Tree) Wall() WallStats {
	if len(t.Roots) == 0 {
		return WallStats{}
	}

	stats := WallStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, root := range t.Roots {
		stats.Min = math.Min(stats.Min, root.Walltime)
		stats.Max = math.Max(stats.Max, root.Walltime)
		sum += root.Walltime
	}
	stats.Avg = sum / float64(len(t.Roots))

	varSum := 0.0
	for _, root := range t.Roots {
		d := root.Walltime - stats.Avg
		varSum += d * d
	}
	stats.Std = math.Sqrt(varSum / float64(len(t.Roots)))
	return stats
}
