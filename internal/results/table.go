// SPDX-License-Identifier: MPL-2.0

package results

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// header is the first line of the serialized table form.
const header = "case\tmetric\tvalue\tunit"

var (
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("malformed result table")
	// ErrDuplicateRow is returned when a (case, metric) key is added twice.
	ErrDuplicateRow = errors.New("duplicate result row")
	// ErrInvalidRow is returned when a row field cannot be represented in the
	// tab-separated text form.
	ErrInvalidRow = errors.New("invalid result row")
)

type (
	// Value is a single metric value, either numeric or textual. The zero
	// Value is the empty text value.
	Value struct {
		num     float64
		text    string
		numeric bool
	}

	// Row is one benchmark outcome: a value for one metric of one case.
	Row struct {
		Case   string
		Metric string
		Value  Value
		Unit   string
	}

	// Table is an ordered collection of rows with unique (case, metric) keys.
	// Insertion order is preserved through serialization.
	Table struct {
		rows  []Row
		index map[rowKey]int
	}

	rowKey struct {
		caseName string
		metric   string
	}

	// ParseError describes a malformed line in the serialized table form. It
	// wraps ErrParse for errors.Is() compatibility.
	ParseError struct {
		Line   int
		Raw    string
		Reason string
	}

	// DuplicateRowError is returned when a (case, metric) key is added twice.
	// It wraps ErrDuplicateRow for errors.Is() compatibility.
	DuplicateRowError struct {
		Case   string
		Metric string
	}

	// InvalidRowError is returned when a row field contains characters the
	// text form cannot carry. It wraps ErrInvalidRow.
	InvalidRowError struct {
		Case   string
		Metric string
		Field  string
	}
)

// Number creates a numeric Value.
func Number(v float64) Value { return Value{num: v, numeric: true} }

// Text creates a textual Value.
func Text(s string) Value { return Value{text: s} }

// IsNumeric reports whether the value is numeric.
func (v Value) IsNumeric() bool { return v.numeric }

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) { return v.num, v.numeric }

// String returns the textual value, or the shortest exact decimal form for
// numeric values.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// encode renders the value for the text form. Textual values are always
// quoted so they can never be mistaken for numbers on the way back in.
func (v Value) encode() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return strconv.Quote(v.text)
}

func decodeValue(field string) (Value, error) {
	if strings.HasPrefix(field, `"`) {
		s, err := strconv.Unquote(field)
		if err != nil {
			return Value{}, fmt.Errorf("bad quoted value %s: %w", field, err)
		}
		return Text(s), nil
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return Value{}, fmt.Errorf("bad numeric value %q: %w", field, err)
	}
	return Number(f), nil
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[rowKey]int)}
}

// Add appends a row. The (case, metric) key must be new, and no field may
// contain a tab or newline since the text form is tab-separated.
func (t *Table) Add(row Row) error {
	for _, f := range []struct{ name, val string }{
		{"case", row.Case}, {"metric", row.Metric}, {"unit", row.Unit},
	} {
		if strings.ContainsAny(f.val, "\t\n\r") {
			return &InvalidRowError{Case: row.Case, Metric: row.Metric, Field: f.name}
		}
	}
	key := rowKey{caseName: row.Case, metric: row.Metric}
	if _, exists := t.index[key]; exists {
		return &DuplicateRowError{Case: row.Case, Metric: row.Metric}
	}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the row for a (case, metric) key.
func (t *Table) Get(caseName, metric string) (Row, bool) {
	i, ok := t.index[rowKey{caseName: caseName, metric: metric}]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Rows returns the rows in insertion order. The slice is shared; callers
// must not modify it.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Write serializes the table to its tab-separated text form.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
			row.Case, row.Metric, row.Value.encode(), row.Unit); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// Parse reads the tab-separated text form back into a table. A malformed
// line aborts the parse with a ParseError naming it; rows are never silently
// dropped.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if lineNo == 1 {
			if line != header {
				return nil, &ParseError{Line: 1, Raw: line, Reason: "missing table header"}
			}
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, &ParseError{Line: lineNo, Raw: line,
				Reason: fmt.Sprintf("expected 4 tab-separated fields, got %d", len(fields))}
		}

		value, err := decodeValue(fields[2])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Raw: line, Reason: err.Error()}
		}

		row := Row{Case: fields[0], Metric: fields[1], Value: value, Unit: fields[3]}
		if err := t.Add(row); err != nil {
			return nil, &ParseError{Line: lineNo, Raw: line, Reason: err.Error()}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return t, nil
}

// Load reads a table from a file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result table: %w", err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("result table %s: %w", path, err)
	}
	return t, nil
}

// Save writes the table to a file, creating or truncating it.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result table: %w", err)
	}
	if err := t.Write(f); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close result table: %w", err)
	}
	return nil
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParse }

// Error implements the error interface for DuplicateRowError.
func (e *DuplicateRowError) Error() string {
	return fmt.Sprintf("duplicate row for case %q metric %q", e.Case, e.Metric)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *DuplicateRowError) Unwrap() error { return ErrDuplicateRow }

// Error implements the error interface for InvalidRowError.
func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("row for case %q metric %q: field %q contains tab or newline", e.Case, e.Metric, e.Field)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidRowError) Unwrap() error { return ErrInvalidRow }
