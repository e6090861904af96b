// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCUEPath is returned when a CUEPath value is not usable.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

// CUEPath is a dotted path into a CUE document (e.g., "ui.color_scheme" or
// "inputs[0].name"), as used in validation error messages and schema
// lookups.
type CUEPath string

// String returns the string representation of the path.
func (p CUEPath) String() string { return string(p) }

// Validate checks that the path is non-empty and not just whitespace.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidCUEPath)
	}
	return nil
}
