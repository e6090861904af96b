// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"simbench-cli/internal/checksum"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// defaultDownloadTimeout applies when download_timeout is unset.
	defaultDownloadTimeout = 5 * time.Minute
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFilePath is the sentinel error wrapped by InvalidFilePathError.
	ErrInvalidFilePath = errors.New("invalid file path")
	// ErrInvalidParallelism is returned when a Parallelism value is negative.
	ErrInvalidParallelism = errors.New("invalid parallelism")
	// ErrInvalidDownloadTimeout is returned when a DownloadTimeout value does not
	// parse as a duration or is not positive.
	ErrInvalidDownloadTimeout = errors.New("invalid download timeout")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// FilePath represents a filesystem path in the configuration.
	// The zero value ("") is valid and means "use the built-in default".
	// Non-zero values must not be whitespace-only.
	FilePath string

	// InvalidFilePathError is returned when a FilePath value is
	// non-empty but whitespace-only. It wraps ErrInvalidFilePath.
	InvalidFilePathError struct {
		Field string
		Value FilePath
	}

	// InvalidParallelismError is returned when Parallelism is negative.
	// It wraps ErrInvalidParallelism for errors.Is() compatibility.
	InvalidParallelismError struct {
		Value int
	}

	// InvalidDownloadTimeoutError is returned when DownloadTimeout cannot be
	// parsed as a positive duration. It wraps ErrInvalidDownloadTimeout.
	InvalidDownloadTimeoutError struct {
		Value string
		Cause error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DestinationRoot is the working directory inputs are provisioned into.
		DestinationRoot FilePath `json:"destination_root" mapstructure:"destination_root"`
		// Manifest is the default input manifest path.
		Manifest FilePath `json:"manifest" mapstructure:"manifest"`
		// ToleranceRules is the default tolerance rule file path. Empty means
		// exact comparison for every metric.
		ToleranceRules FilePath `json:"tolerance_rules" mapstructure:"tolerance_rules"`
		// Parallelism bounds concurrent provisioning work. Values below 1
		// mean sequential.
		Parallelism int `json:"parallelism" mapstructure:"parallelism"`
		// ChecksumAlgorithm is the algorithm assumed for manifest entries that
		// carry a checksum without naming one.
		ChecksumAlgorithm checksum.Algorithm `json:"checksum_algorithm" mapstructure:"checksum_algorithm"`
		// DownloadTimeout bounds each remote download, as a Go duration string.
		DownloadTimeout string `json:"download_timeout" mapstructure:"download_timeout"`
		// History is the run-history database path. Empty means history.db
		// inside the config directory.
		History FilePath `json:"history" mapstructure:"history"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// IsValid returns whether the FilePath is valid.
// The zero value ("") is valid (means "use the built-in default").
// Non-zero values must not be whitespace-only.
func (p FilePath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s path %q: non-empty value must not be whitespace-only", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// Error implements the error interface for InvalidParallelismError.
func (e *InvalidParallelismError) Error() string {
	return fmt.Sprintf("invalid parallelism %d: must be >= 0", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidParallelismError) Unwrap() error { return ErrInvalidParallelism }

// Error implements the error interface for InvalidDownloadTimeoutError.
func (e *InvalidDownloadTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid download timeout %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid download timeout %q: must be a positive duration", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidDownloadTimeoutError) Unwrap() error { return ErrInvalidDownloadTimeout }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each path field's IsValid(), ChecksumAlgorithm.IsValid(),
// and UI.IsValid(), and checks Parallelism and DownloadTimeout directly.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	paths := []struct {
		field string
		value FilePath
	}{
		{"destination_root", c.DestinationRoot},
		{"manifest", c.Manifest},
		{"tolerance_rules", c.ToleranceRules},
		{"history", c.History},
	}
	for _, p := range paths {
		if valid, _ := p.value.IsValid(); !valid {
			errs = append(errs, &InvalidFilePathError{Field: p.field, Value: p.value})
		}
	}
	if c.Parallelism < 0 {
		errs = append(errs, &InvalidParallelismError{Value: c.Parallelism})
	}
	if valid, fieldErrs := c.ChecksumAlgorithm.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.downloadTimeout(); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DownloadTimeoutDuration returns the parsed download timeout.
// The zero value ("") yields the default timeout.
func (c Config) DownloadTimeoutDuration() (time.Duration, error) {
	return c.downloadTimeout()
}

func (c Config) downloadTimeout() (time.Duration, error) {
	if c.DownloadTimeout == "" {
		return defaultDownloadTimeout, nil
	}
	d, err := time.ParseDuration(c.DownloadTimeout)
	if err != nil {
		return 0, &InvalidDownloadTimeoutError{Value: c.DownloadTimeout, Cause: err}
	}
	if d <= 0 {
		return 0, &InvalidDownloadTimeoutError{Value: c.DownloadTimeout}
	}
	return d, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DestinationRoot:   "rundir",
		Manifest:          "manifest.yaml",
		ToleranceRules:    "", // exact comparison unless a rule file is given
		Parallelism:       0,  // sequential unless raised
		ChecksumAlgorithm: checksum.AlgorithmSHA256,
		DownloadTimeout:   "5m",
		History:           "", // history.db in the config dir
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
