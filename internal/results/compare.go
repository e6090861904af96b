// SPDX-License-Identifier: MPL-2.0

package results

import (
	"fmt"
	"math"
)

const (
	// StatusMatch means the observed value equals the reference exactly.
	StatusMatch Status = "match"
	// StatusWithinTolerance means the values differ but stay inside the
	// matched tolerance rule.
	StatusWithinTolerance Status = "within-tolerance"
	// StatusOutOfTolerance means the values differ beyond tolerance, or a
	// non-numeric value differs at all. This is a regression.
	StatusOutOfTolerance Status = "out-of-tolerance"
	// StatusMissing means the reference carries a key the observed table does
	// not. This is a regression.
	StatusMissing Status = "missing"
	// StatusExtra means the observed table carries a key the reference does
	// not. New metrics are allowed to appear, so this alone never fails a run.
	StatusExtra Status = "extra"
)

type (
	// Status classifies one (case, metric) key of a comparison.
	Status string

	// Entry is the verdict for one (case, metric) key. RelativeDelta is
	// (observed-reference)/reference for numeric out-of-tolerance entries;
	// DeltaUndefined is set instead when the reference is zero or either
	// value is non-numeric.
	Entry struct {
		Case           string
		Metric         string
		Status         Status
		Reference      Value
		Observed       Value
		RelativeDelta  float64
		DeltaUndefined bool
	}
)

// String returns the string representation of the Status.
func (s Status) String() string { return string(s) }

// IsValid returns whether the Status is one of the defined verdicts, and a
// list of validation errors if it is not.
func (s Status) IsValid() (bool, []error) {
	switch s {
	case StatusMatch, StatusWithinTolerance, StatusOutOfTolerance, StatusMissing, StatusExtra:
		return true, nil
	default:
		return false, []error{fmt.Errorf("invalid comparison status %q", s)}
	}
}

// Compare classifies every (case, metric) key present in either table. Keys
// are visited in reference order first, then observed-only keys in observed
// order, so reports are deterministic. Neither table is mutated; every call
// produces a fresh report.
//
// The only error is an invalid rule set; rules may be nil for exact-match
// comparison throughout.
func Compare(observed, reference *Table, rules *Rules) (*Report, error) {
	if rules != nil {
		if err := rules.Validate(); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	for _, ref := range reference.Rows() {
		obs, ok := observed.Get(ref.Case, ref.Metric)
		if !ok {
			report.entries = append(report.entries, Entry{
				Case: ref.Case, Metric: ref.Metric,
				Status: StatusMissing, Reference: ref.Value, DeltaUndefined: true,
			})
			continue
		}
		report.entries = append(report.entries, classify(obs, ref, rules))
	}
	for _, obs := range observed.Rows() {
		if _, ok := reference.Get(obs.Case, obs.Metric); ok {
			continue
		}
		report.entries = append(report.entries, Entry{
			Case: obs.Case, Metric: obs.Metric,
			Status: StatusExtra, Observed: obs.Value, DeltaUndefined: true,
		})
	}
	return report, nil
}

// classify compares one key present in both tables.
func classify(obs, ref Row, rules *Rules) Entry {
	entry := Entry{
		Case: ref.Case, Metric: ref.Metric,
		Reference: ref.Value, Observed: obs.Value,
	}

	if obs.Value == ref.Value {
		entry.Status = StatusMatch
		entry.DeltaUndefined = true
		return entry
	}

	refNum, refOK := ref.Value.Float()
	obsNum, obsOK := obs.Value.Float()
	if !refOK || !obsOK {
		// Non-numeric values compare exactly, tolerance rules never apply.
		// A numeric/text type change is a mismatch as well.
		entry.Status = StatusOutOfTolerance
		entry.DeltaUndefined = true
		return entry
	}

	if refNum == 0 {
		entry.DeltaUndefined = true
	} else {
		entry.RelativeDelta = (obsNum - refNum) / refNum
	}

	if rule, ok := rules.Match(ref.Metric); ok {
		limit := math.Max(rule.Absolute, rule.Relative*math.Abs(refNum))
		if math.Abs(obsNum-refNum) <= limit {
			entry.Status = StatusWithinTolerance
			return entry
		}
	}
	entry.Status = StatusOutOfTolerance
	return entry
}
