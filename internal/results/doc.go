// SPDX-License-Identifier: MPL-2.0

// Package results holds the tabular representation of benchmark outcomes and
// the tolerance-based comparison that decides pass or fail.
//
// A Table carries one row per (case, metric) pair, each with a numeric or
// textual value and an optional unit. Tables serialize to a tab-separated
// text form stable enough to live under version control: numeric values
// round-trip exactly at IEEE double precision and textual values are quoted,
// so from-text of to-text reproduces the table field for field.
//
// Compare classifies every key present in either table against ordered
// tolerance rules (absolute and relative, matched by metric pattern) into
// Match, WithinTolerance, OutOfTolerance, Missing or Extra, and the resulting
// Report carries the overall verdict. Neither input table is ever mutated.
package results
