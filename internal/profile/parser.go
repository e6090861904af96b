// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// timingSlack absorbs the rounding noise of instrumentation timers when
// checking nesting consistency.
const timingSlack = 1e-6

var (
	reProgram  = regexp.MustCompile(`program='(.*)'`)
	reWalltime = regexp.MustCompile(`Wall-time is ([0-9.eE+-]+) sec on proc#([0-9]+) \(([0-9]+) procs, ([0-9]+) threads\)`)

	// A profile row: eight numeric columns (index, percent, cumulative,
	// self, total, calls, self ms/call, total ms/call), one separator space,
	// then the routine column whose two-space indentation encodes nesting.
	reRow = regexp.MustCompile(`^ *([0-9]+) +([0-9.eE+-]+) +([0-9.eE+-]+) +([0-9.eE+-]+) +([0-9.eE+-]+) +([0-9]+) +([0-9.eE+-]+) +([0-9.eE+-]+) ((?:  )*)(\*?[^ ].*)$`)
)

// Diagnostic describes one skipped or suspicious input line. Diagnostics
// are collected, never raised; the parse always continues.
type Diagnostic struct {
	Line   int
	Raw    string
	Reason string
}

// Parse reads a profile dump into a Tree in a single forward pass. Each
// rank section is opened by its wall-time banner; rows before any banner
// and rows that cannot be parsed become diagnostics. Only a read failure
// on the stream itself is returned as an error.
func Parse(r io.Reader) (*Tree, []Diagnostic, error) {
	p := &parser{tree: &Tree{}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		p.scanLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read profile dump: %w", err)
	}

	p.closeSection()
	return p.tree, p.diags, nil
}

// ParseFile parses a single dump file.
func ParseFile(path string) (*Tree, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open profile dump: %w", err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	tree, diags, err := Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("profile dump %s: %w", path, err)
	}
	return tree, diags, nil
}

// ParseFiles parses per-rank dump files into one merged tree. Metadata is
// taken from the first file that declares it.
func ParseFiles(paths []string) (*Tree, []Diagnostic, error) {
	merged := &Tree{}
	var diags []Diagnostic
	for _, path := range paths {
		tree, d, err := ParseFile(path)
		if err != nil {
			return nil, nil, err
		}
		if merged.Program == "" {
			merged.Program = tree.Program
			merged.Procs = tree.Procs
			merged.Threads = tree.Threads
		}
		merged.Roots = append(merged.Roots, tree.Roots...)
		diags = append(diags, d...)
	}
	return merged, diags, nil
}

type parser struct {
	tree  *Tree
	diags []Diagnostic
	line  int

	root  *Root
	stack []int // open records, stack index == nesting depth
}

func (p *parser) diag(raw, reason string) {
	p.diags = append(p.diags, Diagnostic{Line: p.line, Raw: raw, Reason: reason})
}

func (p *parser) scanLine(line string) {
	if m := reProgram.FindStringSubmatch(line); m != nil {
		p.tree.Program = m[1]
		return
	}
	if m := reWalltime.FindStringSubmatch(line); m != nil {
		p.openSection(line, m)
		return
	}

	// Anything whose first field is an index number is meant to be a row.
	// Other lines (column headers, banners, blanks) carry no data.
	fields := strings.Fields(line)
	if len(fields) == 0 || !isNumber(fields[0]) {
		return
	}
	p.scanRow(line)
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// openSection finalizes the current rank section and starts the next.
func (p *parser) openSection(line string, m []string) {
	p.closeSection()

	walltime, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		p.diag(line, "unparsable wall time: "+err.Error())
		walltime = 0
	}
	rank, _ := strconv.Atoi(m[2])    //nolint:errcheck // digits only per regexp
	procs, _ := strconv.Atoi(m[3])   //nolint:errcheck // digits only per regexp
	threads, _ := strconv.Atoi(m[4]) //nolint:errcheck // digits only per regexp

	if p.tree.Procs == 0 {
		p.tree.Procs = procs
		p.tree.Threads = threads
	}
	p.root = &Root{Rank: rank, Walltime: walltime}
	p.stack = p.stack[:0]
}

// closeSection runs the nesting consistency check over the finished section
// and appends it to the tree.
func (p *parser) closeSection() {
	if p.root == nil {
		return
	}
	for id := range p.root.records {
		rec := &p.root.records[id]
		childTotal := 0.0
		for _, c := range rec.children {
			childTotal += p.root.records[c].Total
		}
		if childTotal > rec.Total-rec.Self+timingSlack {
			p.diags = append(p.diags, Diagnostic{
				Line:   rec.line,
				Raw:    rec.Name,
				Reason: "children total time exceeds parent budget",
			})
		}
	}
	p.tree.Roots = append(p.tree.Roots, *p.root)
	p.root = nil
}

func (p *parser) scanRow(line string) {
	if p.root == nil {
		p.diag(line, "profile row outside a rank section")
		return
	}

	m := reRow.FindStringSubmatch(line)
	if m == nil {
		p.diag(line, "unparsable profile row")
		return
	}

	rec := Record{parent: -1, line: p.line}
	var err error
	if rec.Percent, err = strconv.ParseFloat(m[2], 64); err != nil {
		p.diag(line, "bad percent field: "+err.Error())
		return
	}
	if rec.Cumulative, err = strconv.ParseFloat(m[3], 64); err != nil {
		p.diag(line, "bad cumulative field: "+err.Error())
		return
	}
	if rec.Self, err = strconv.ParseFloat(m[4], 64); err != nil {
		p.diag(line, "bad self-time field: "+err.Error())
		return
	}
	if rec.Total, err = strconv.ParseFloat(m[5], 64); err != nil {
		p.diag(line, "bad total-time field: "+err.Error())
		return
	}
	if rec.Calls, err = strconv.ParseInt(m[6], 10, 64); err != nil {
		p.diag(line, "bad call-count field: "+err.Error())
		return
	}

	rec.Name, rec.Thread = splitRoutine(m[10])
	if rec.Self < 0 || rec.Total < rec.Self {
		p.diag(line, "timing invariant violated: total >= self >= 0")
	}

	depth := len(m[9]) / 2
	if depth > len(p.stack) {
		p.diag(line, fmt.Sprintf("inconsistent depth jump from %d to %d", len(p.stack), depth))
		return
	}
	p.stack = p.stack[:depth]

	siblings := &p.root.top
	if depth > 0 {
		parent := p.stack[depth-1]
		rec.parent = parent
		siblings = &p.root.records[parent].children
	}
	for _, s := range *siblings {
		if p.root.records[s].Name == rec.Name {
			p.diag(line, "duplicate call path "+strings.Join(p.root.Path(s), "/"))
			break
		}
	}

	id := len(p.root.records)
	p.root.records = append(p.root.records, rec)
	*siblings = append(*siblings, id)
	p.stack = append(p.stack, id)
}

// splitRoutine strips the instrumentation decorations from the routine
// column: a trailing @thread[:qualifier] suffix and the hot-spot marker.
func splitRoutine(s string) (string, int) {
	name, suffix, found := strings.Cut(s, "@")
	name = strings.ReplaceAll(strings.TrimSpace(name), "*", "")
	if !found {
		return name, 0
	}
	threadField, _, _ := strings.Cut(suffix, ":")
	thread, err := strconv.Atoi(strings.TrimSpace(threadField))
	if err != nil {
		return name, 0
	}
	return name, thread
}
