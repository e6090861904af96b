// SPDX-License-Identifier: MPL-2.0

package results

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func mustAdd(t *testing.T, tbl *Table, rows ...Row) {
	t.Helper()
	for _, row := range rows {
		if err := tbl.Add(row); err != nil {
			t.Fatalf("Add(%v): %v", row, err)
		}
	}
}

func TestTableRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	mustAdd(t, tbl,
		Row{Case: "t21", Metric: "walltime", Value: Number(123.456789012345678), Unit: "s"},
		Row{Case: "t21", Metric: "norm", Value: Number(1.0000000000000002e-7)},
		Row{Case: "t21", Metric: "host", Value: Text("node-0017")},
		Row{Case: "t42", Metric: "walltime", Value: Number(math.Pi), Unit: "s"},
		Row{Case: "t42", Metric: "status", Value: Text("3.14")}, // text that looks numeric
		Row{Case: "t42", Metric: "note", Value: Text("tab\tand\nnewline")},
		Row{Case: "t42", Metric: "zero", Value: Number(0)},
		Row{Case: "t42", Metric: "neg", Value: Number(-1e300)},
	)

	var b strings.Builder
	if err := tbl.Write(&b); err != nil {
		t.Fatal(err)
	}

	got, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if got.Len() != tbl.Len() {
		t.Fatalf("round-trip length = %d, want %d", got.Len(), tbl.Len())
	}
	for i, want := range tbl.Rows() {
		if got.Rows()[i] != want {
			t.Errorf("row %d = %+v, want %+v", i, got.Rows()[i], want)
		}
	}
}

func TestTableRoundTripThroughFile(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	mustAdd(t, tbl, Row{Case: "a", Metric: "m", Value: Number(0.1), Unit: "s"})

	path := filepath.Join(t.TempDir(), "reference.tsv")
	if err := tbl.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	row, ok := got.Get("a", "m")
	if !ok {
		t.Fatal("row lost through file round-trip")
	}
	if v, _ := row.Value.Float(); v != 0.1 {
		t.Errorf("value = %v, want 0.1 exactly", v)
	}
}

func TestTableAddRejectsDuplicateKey(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	mustAdd(t, tbl, Row{Case: "a", Metric: "m", Value: Number(1)})

	err := tbl.Add(Row{Case: "a", Metric: "m", Value: Number(2)})
	if !errors.Is(err, ErrDuplicateRow) {
		t.Errorf("Add() error = %v, want ErrDuplicateRow", err)
	}
}

func TestTableAddRejectsTabInKey(t *testing.T) {
	t.Parallel()

	err := NewTable().Add(Row{Case: "a\tb", Metric: "m", Value: Number(1)})
	if !errors.Is(err, ErrInvalidRow) {
		t.Errorf("Add() error = %v, want ErrInvalidRow", err)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{
			name:     "missing header",
			input:    "a\tm\t1\ts\n",
			wantLine: 1,
		},
		{
			name:     "wrong field count",
			input:    "case\tmetric\tvalue\tunit\na\tm\t1\n",
			wantLine: 2,
		},
		{
			name:     "unquoted text value",
			input:    "case\tmetric\tvalue\tunit\na\tm\tfast\ts\n",
			wantLine: 2,
		},
		{
			name:     "duplicate key",
			input:    "case\tmetric\tvalue\tunit\na\tm\t1\ts\na\tm\t2\ts\n",
			wantLine: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse() error = %v, want ErrParse", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	t.Parallel()

	tbl, err := Parse(strings.NewReader("case\tmetric\tvalue\tunit\n\na\tm\t1\ts\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}
