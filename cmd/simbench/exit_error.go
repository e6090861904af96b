// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"simbench-cli/pkg/types"
)

// Exit codes form the harness contract scripts rely on: success, regression,
// and could-not-evaluate are distinguishable without parsing output.
const (
	// ExitPass means the comparison passed (or the command succeeded).
	ExitPass types.ExitCode = 0
	// ExitRegression means the comparison found out-of-tolerance or missing
	// metrics.
	ExitRegression types.ExitCode = 1
	// ExitNotEvaluable means the comparison could not be evaluated at all:
	// provisioning failed, an input was unreadable, or the rules were invalid.
	ExitNotEvaluable types.ExitCode = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
