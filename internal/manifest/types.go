// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"simbench-cli/internal/checksum"
)

const (
	// StrategySymlink links a local source into the run directory without
	// copying bytes. Only valid for local sources.
	StrategySymlink Strategy = "symlink"
	// StrategyCopy copies a local source byte-for-byte, preserving file mode.
	StrategyCopy Strategy = "copy"
	// StrategyDownload fetches a remote HTTP(S) source.
	StrategyDownload Strategy = "download"
)

var (
	// ErrInvalidStrategy is returned when a Strategy value is not recognized.
	ErrInvalidStrategy = errors.New("invalid provisioning strategy")
	// ErrUnsupportedStrategy is the sentinel error wrapped by
	// UnsupportedStrategyError.
	ErrUnsupportedStrategy = errors.New("unsupported strategy for source")
	// ErrInvalidItem is the sentinel error wrapped by InvalidItemError.
	ErrInvalidItem = errors.New("invalid manifest item")
	// ErrDuplicateLocalPath is returned when two items share a local path.
	ErrDuplicateLocalPath = errors.New("duplicate local path in manifest")
)

type (
	// Strategy selects how an input item is materialized. The set is closed:
	// all strategies share the same policy (atomic writes, checksum gating),
	// so dispatch happens at a single decision point in the provisioner.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not recognized.
	// It wraps ErrInvalidStrategy for errors.Is() compatibility.
	InvalidStrategyError struct {
		Value Strategy
	}

	// UnsupportedStrategyError is returned when a manifest declares a
	// strategy/source combination that cannot work, such as symlinking a
	// remote URI. It wraps ErrUnsupportedStrategy for errors.Is().
	UnsupportedStrategyError struct {
		Item      string
		Strategy  Strategy
		SourceURI string
	}

	// InvalidItemError is returned when an Item has invalid fields. It wraps
	// ErrInvalidItem for errors.Is() compatibility and collects field-level
	// validation errors.
	InvalidItemError struct {
		Name        string
		FieldErrors []error
	}

	// Item describes a single input required by a benchmark run.
	Item struct {
		// Name identifies the item in logs and per-item status reports.
		Name string `yaml:"name"`
		// SourceURI is a local path or an http(s) URL.
		SourceURI string `yaml:"source_uri"`
		// LocalPath is where the item must end up, relative to the
		// destination root (absolute paths are taken as-is).
		LocalPath string `yaml:"local_path"`
		// Strategy selects symlink, copy or download.
		Strategy Strategy `yaml:"strategy"`
		// Checksum is the optional expected hex digest of the materialized file.
		Checksum string `yaml:"checksum,omitempty"`
		// Algorithm names the digest algorithm; empty means sha256.
		Algorithm checksum.Algorithm `yaml:"checksum_algorithm,omitempty"`
	}

	// Manifest is the ordered list of input items for one run configuration.
	Manifest struct {
		Inputs []Item `yaml:"inputs"`
	}
)

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// IsValid returns whether the Strategy is one of the defined strategies,
// and a list of validation errors if it is not.
func (s Strategy) IsValid() (bool, []error) {
	switch s {
	case StrategySymlink, StrategyCopy, StrategyDownload:
		return true, nil
	default:
		return false, []error{&InvalidStrategyError{Value: s}}
	}
}

// Error implements the error interface for InvalidStrategyError.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid provisioning strategy %q (valid: symlink, copy, download)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// Error implements the error interface for UnsupportedStrategyError.
func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("item %q: strategy %q cannot materialize source %q",
		e.Item, e.Strategy, e.SourceURI)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnsupportedStrategyError) Unwrap() error { return ErrUnsupportedStrategy }

// Error implements the error interface for InvalidItemError.
func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid manifest item %q: %d field error(s)", e.Name, len(e.FieldErrors))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// IsRemote reports whether the item's source is an http(s) URI rather than a
// local filesystem path.
func (i Item) IsRemote() bool {
	u, err := url.Parse(i.SourceURI)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ChecksumAlgorithm returns the declared algorithm, or the default when the
// manifest leaves it empty.
func (i Item) ChecksumAlgorithm() checksum.Algorithm {
	if i.Algorithm == "" {
		return checksum.Default()
	}
	return i.Algorithm
}

// IsValid returns whether the Item has valid fields. A remote source must use
// the download strategy and a local source must not; the checksum algorithm,
// when named, must be supported.
func (i Item) IsValid() (bool, []error) {
	var errs []error

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, fmt.Errorf("name must be non-empty"))
	}
	if strings.TrimSpace(i.SourceURI) == "" {
		errs = append(errs, fmt.Errorf("source_uri must be non-empty"))
	}
	if strings.TrimSpace(i.LocalPath) == "" {
		errs = append(errs, fmt.Errorf("local_path must be non-empty"))
	}

	if valid, fieldErrs := i.Strategy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	} else if i.IsRemote() != (i.Strategy == StrategyDownload) {
		errs = append(errs, &UnsupportedStrategyError{
			Item:      i.Name,
			Strategy:  i.Strategy,
			SourceURI: i.SourceURI,
		})
	}

	if i.Algorithm != "" {
		if valid, fieldErrs := i.Algorithm.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}

	if len(errs) > 0 {
		return false, []error{&InvalidItemError{Name: i.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Validate checks every item plus the manifest-wide invariant that local
// paths are unique (normalized via filepath.Clean).
func (m *Manifest) Validate() error {
	var errs []error
	seenPaths := make(map[string]int) // cleaned local path -> index of first occurrence

	for idx, item := range m.Inputs {
		if valid, fieldErrs := item.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}

		cleaned := filepath.Clean(item.LocalPath)
		if firstIdx, exists := seenPaths[cleaned]; exists {
			errs = append(errs, fmt.Errorf("%w: inputs[%d] %q (same as inputs[%d])",
				ErrDuplicateLocalPath, idx, item.LocalPath, firstIdx))
			continue
		}
		seenPaths[cleaned] = idx
	}

	return errors.Join(errs...)
}
