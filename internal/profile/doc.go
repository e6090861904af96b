// SPDX-License-Identifier: MPL-2.0

// Package profile parses per-routine instrumentation dumps into call trees
// and condenses them into result tables.
//
// A dump is a line-oriented text stream, one section per MPI rank. Each
// section opens with the program name and a wall-time banner, followed by
// profile rows carrying call counts and self/total timings. Nesting is
// signaled by two-space indentation of the routine column, so a section
// reconstructs into a tree of call scopes.
//
// Parsing is a single forward pass with a depth stack. Malformed rows and
// inconsistent timings never abort the parse; they are collected as
// diagnostics, since dumps from long-running or crashed processes are
// frequently truncated. Only an unreadable stream is a fatal error.
//
// The resulting forest aggregates across ranks and threads into per-routine
// statistics, which feed the same tolerance-based comparison machinery as
// any other benchmark result.
package profile
