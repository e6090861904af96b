// SPDX-License-Identifier: MPL-2.0

package results

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tableOf(t *testing.T, rows ...Row) *Table {
	t.Helper()
	tbl := NewTable()
	mustAdd(t, tbl, rows...)
	return tbl
}

func relRule(pattern string, rel float64) *Rules {
	return &Rules{Rules: []Rule{{Pattern: pattern, Relative: rel}}}
}

func TestCompareRelativeTolerance(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "caseA", Metric: "time", Value: Number(10.0)})
	observed := tableOf(t, Row{Case: "caseA", Metric: "time", Value: Number(10.4)})

	t.Run("five percent passes", func(t *testing.T) {
		t.Parallel()

		report, err := Compare(observed, reference, relRule("time", 0.05))
		if err != nil {
			t.Fatal(err)
		}
		e := report.Entries()[0]
		if e.Status != StatusWithinTolerance {
			t.Errorf("status = %s, want within-tolerance", e.Status)
		}
		if !report.Pass() {
			t.Error("Pass() = false, want true")
		}
	})

	t.Run("one percent fails with relative delta", func(t *testing.T) {
		t.Parallel()

		report, err := Compare(observed, reference, relRule("time", 0.01))
		if err != nil {
			t.Fatal(err)
		}
		e := report.Entries()[0]
		if e.Status != StatusOutOfTolerance {
			t.Errorf("status = %s, want out-of-tolerance", e.Status)
		}
		if math.Abs(e.RelativeDelta-0.04) > 1e-12 {
			t.Errorf("RelativeDelta = %v, want ~0.04", e.RelativeDelta)
		}
		if report.Pass() {
			t.Error("Pass() = true, want false")
		}
	})
}

func TestCompareMissingFailsRun(t *testing.T) {
	t.Parallel()

	reference := tableOf(t,
		Row{Case: "caseA", Metric: "time", Value: Number(10.0)},
		Row{Case: "caseA", Metric: "mem", Value: Number(2048)},
	)
	observed := tableOf(t, Row{Case: "caseA", Metric: "time", Value: Number(10.0)})

	report, err := Compare(observed, reference, nil)
	if err != nil {
		t.Fatal(err)
	}

	entries := report.Entries()
	if entries[0].Status != StatusMatch {
		t.Errorf("time status = %s, want match", entries[0].Status)
	}
	if entries[1].Status != StatusMissing {
		t.Errorf("mem status = %s, want missing", entries[1].Status)
	}
	if report.Pass() {
		t.Error("Pass() = true with a missing metric, want false")
	}
}

func TestCompareExtraDoesNotFailRun(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "caseA", Metric: "time", Value: Number(1)})
	observed := tableOf(t,
		Row{Case: "caseA", Metric: "time", Value: Number(1)},
		Row{Case: "caseA", Metric: "new_metric", Value: Number(7)},
	)

	report, err := Compare(observed, reference, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := report.Counts()
	if c.Extra != 1 {
		t.Errorf("Counts().Extra = %d, want 1", c.Extra)
	}
	if !report.Pass() {
		t.Error("Pass() = false with only an extra metric, want true")
	}
}

func TestCompareToleranceMonotonicity(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "c", Metric: "m", Value: Number(100)})
	observed := tableOf(t, Row{Case: "c", Metric: "m", Value: Number(103)})

	// Widening the tolerance never turns a passing entry into a regression.
	prevPassed := false
	for _, rel := range []float64{0.01, 0.02, 0.03, 0.05, 0.10} {
		report, err := Compare(observed, reference, relRule("m", rel))
		if err != nil {
			t.Fatal(err)
		}
		passed := report.Entries()[0].Status != StatusOutOfTolerance
		if prevPassed && !passed {
			t.Fatalf("relative tolerance %v regressed a previously passing entry", rel)
		}
		prevPassed = passed
	}
	if !prevPassed {
		t.Error("3%% deviation out of tolerance at 10%% relative tolerance")
	}
}

func TestCompareZeroReferenceFlagsDelta(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "c", Metric: "m", Value: Number(0)})
	observed := tableOf(t, Row{Case: "c", Metric: "m", Value: Number(0.5)})

	report, err := Compare(observed, reference, nil)
	if err != nil {
		t.Fatal(err)
	}
	e := report.Entries()[0]
	if e.Status != StatusOutOfTolerance {
		t.Errorf("status = %s, want out-of-tolerance", e.Status)
	}
	if !e.DeltaUndefined {
		t.Error("DeltaUndefined = false for zero reference, want true")
	}
}

func TestCompareStringsExactMatchOnly(t *testing.T) {
	t.Parallel()

	reference := tableOf(t,
		Row{Case: "c", Metric: "host", Value: Text("node-1")},
		Row{Case: "c", Metric: "flags", Value: Text("-O3")},
	)
	observed := tableOf(t,
		Row{Case: "c", Metric: "host", Value: Text("node-1")},
		Row{Case: "c", Metric: "flags", Value: Text("-O2")},
	)

	// A rule matching everything must not soften string comparison.
	report, err := Compare(observed, reference, relRule("*", 1000))
	if err != nil {
		t.Fatal(err)
	}
	entries := report.Entries()
	if entries[0].Status != StatusMatch {
		t.Errorf("host status = %s, want match", entries[0].Status)
	}
	if entries[1].Status != StatusOutOfTolerance {
		t.Errorf("flags status = %s, want out-of-tolerance", entries[1].Status)
	}
}

func TestCompareNumericTextTypeChangeIsRegression(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "c", Metric: "m", Value: Number(1)})
	observed := tableOf(t, Row{Case: "c", Metric: "m", Value: Text("1")})

	report, err := Compare(observed, reference, relRule("*", 1000))
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Entries()[0].Status; got != StatusOutOfTolerance {
		t.Errorf("status = %s, want out-of-tolerance", got)
	}
}

func TestCompareAbsoluteBeatsRelativeNearZero(t *testing.T) {
	t.Parallel()

	reference := tableOf(t, Row{Case: "c", Metric: "norm", Value: Number(1e-12)})
	observed := tableOf(t, Row{Case: "c", Metric: "norm", Value: Number(3e-12)})

	rules := &Rules{Rules: []Rule{{Pattern: "norm", Absolute: 1e-11, Relative: 0.01}}}
	report, err := Compare(observed, reference, rules)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Entries()[0].Status; got != StatusWithinTolerance {
		t.Errorf("status = %s, want within-tolerance via absolute term", got)
	}
}

func TestCompareFirstMatchingRuleWins(t *testing.T) {
	t.Parallel()

	rules := &Rules{Rules: []Rule{
		{Pattern: "time_*", Relative: 0.10},
		{Pattern: "*", Relative: 0.0},
	}}

	reference := tableOf(t, Row{Case: "c", Metric: "time_total", Value: Number(100)})
	observed := tableOf(t, Row{Case: "c", Metric: "time_total", Value: Number(105)})

	report, err := Compare(observed, reference, rules)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Entries()[0].Status; got != StatusWithinTolerance {
		t.Errorf("status = %s, want within-tolerance from the first rule", got)
	}
}

func TestCompareRejectsInvalidRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules *Rules
	}{
		{"negative absolute", &Rules{Rules: []Rule{{Pattern: "m", Absolute: -1}}}},
		{"negative relative", &Rules{Rules: []Rule{{Pattern: "m", Relative: -0.1}}}},
		{"malformed pattern", &Rules{Rules: []Rule{{Pattern: "[", Relative: 0.1}}}},
	}

	empty := NewTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compare(empty, empty, tt.rules)
			if !errors.Is(err, ErrToleranceConfig) {
				t.Errorf("Compare() error = %v, want ErrToleranceConfig", err)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
[[rule]]
pattern = "physics/**"
relative = 0.05

[[rule]]
pattern = "norm"
absolute = 1e-9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error: %v", err)
	}
	if len(rules.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules.Rules))
	}

	// Metric names may be call paths; ** crosses path separators.
	rule, ok := rules.Match("physics/cloud/microphysics")
	if !ok {
		t.Fatal("no rule matched physics/cloud/microphysics")
	}
	if rule.Relative != 0.05 {
		t.Errorf("matched rule relative = %v, want 0.05", rule.Relative)
	}
	if _, ok := rules.Match("memory"); ok {
		t.Error("unexpected rule match for memory")
	}
}

func TestLoadRulesRejectsNegativeTolerance(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte("[[rule]]\npattern = \"m\"\nrelative = -0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); !errors.Is(err, ErrToleranceConfig) {
		t.Errorf("LoadRules() error = %v, want ErrToleranceConfig", err)
	}
}

func TestReportRendering(t *testing.T) {
	t.Parallel()

	reference := tableOf(t,
		Row{Case: "caseA", Metric: "time", Value: Number(10), Unit: "s"},
		Row{Case: "caseA", Metric: "mem", Value: Number(2048), Unit: "MB"},
	)
	observed := tableOf(t, Row{Case: "caseA", Metric: "time", Value: Number(12), Unit: "s"})

	report, err := Compare(observed, reference, nil)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := report.WriteText(&b); err != nil {
		t.Fatal(err)
	}
	text := b.String()
	if !strings.Contains(text, "FAIL") {
		t.Error("text report missing FAIL verdict")
	}
	if !strings.Contains(text, "out-of-tolerance") || !strings.Contains(text, "missing") {
		t.Error("text report missing per-entry statuses")
	}

	md := report.Markdown()
	if !strings.HasPrefix(md, "# Comparison: FAIL") {
		t.Errorf("markdown heading = %q", strings.SplitN(md, "\n", 2)[0])
	}
	if !strings.Contains(md, "| caseA | mem | missing |") {
		t.Error("markdown table missing the missing-metric row")
	}
}
