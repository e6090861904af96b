// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for simbench.
//
// This package implements the Cobra command hierarchy for the simbench CLI,
// including the root command and subcommands for input provisioning, result
// comparison, profile inspection, run history, and configuration management.
package cmd
