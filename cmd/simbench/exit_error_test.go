// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Message(t *testing.T) {
	t.Parallel()

	withCause := &ExitError{Code: ExitRegression, Err: errors.New("2 metrics out of tolerance")}
	if withCause.Error() != "2 metrics out of tolerance" {
		t.Errorf("Error() = %q, want the cause message", withCause.Error())
	}

	bare := &ExitError{Code: ExitNotEvaluable}
	if bare.Error() != "exit status 2" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "exit status 2")
	}
}

func TestExitError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("reference table unreadable")
	err := fmt.Errorf("comparison: %w", &ExitError{Code: ExitNotEvaluable, Err: cause})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatal("errors.As should find the ExitError in the chain")
	}
	if exitErr.Code != ExitNotEvaluable {
		t.Errorf("Code = %d, want %d", exitErr.Code, ExitNotEvaluable)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through the ExitError")
	}
}
