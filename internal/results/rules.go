// SPDX-License-Identifier: MPL-2.0

package results

import (
	"errors"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// ErrToleranceConfig is the sentinel error wrapped by ToleranceConfigError.
var ErrToleranceConfig = errors.New("invalid tolerance configuration")

type (
	// Rule is one tolerance rule: metrics whose name matches Pattern may
	// deviate from the reference by up to max(Absolute, Relative*|reference|)
	// before being flagged. Patterns use glob syntax with ** support.
	Rule struct {
		Pattern  string  `toml:"pattern"`
		Absolute float64 `toml:"absolute"`
		Relative float64 `toml:"relative"`
	}

	// Rules is an ordered rule list. The first rule whose pattern matches a
	// metric name wins; metrics matching no rule are compared exactly.
	Rules struct {
		Rules []Rule `toml:"rule"`
	}

	// ToleranceConfigError describes a malformed tolerance rule. It wraps
	// ErrToleranceConfig for errors.Is() compatibility.
	ToleranceConfigError struct {
		Pattern string
		Reason  string
	}
)

// Validate checks every rule for a well-formed pattern and non-negative
// tolerances. All offending rules are reported, joined.
func (r *Rules) Validate() error {
	var errs []error
	for _, rule := range r.Rules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			errs = append(errs, &ToleranceConfigError{Pattern: rule.Pattern, Reason: "malformed pattern"})
		}
		if rule.Absolute < 0 {
			errs = append(errs, &ToleranceConfigError{Pattern: rule.Pattern, Reason: "negative absolute tolerance"})
		}
		if rule.Relative < 0 {
			errs = append(errs, &ToleranceConfigError{Pattern: rule.Pattern, Reason: "negative relative tolerance"})
		}
	}
	return errors.Join(errs...)
}

// Match returns the first rule whose pattern matches the metric name.
func (r *Rules) Match(metric string) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	for _, rule := range r.Rules {
		// Patterns are validated up front; a match error here cannot occur.
		if ok, _ := doublestar.Match(rule.Pattern, metric); ok { //nolint:errcheck
			return rule, true
		}
	}
	return Rule{}, false
}

// LoadRules reads and validates a TOML rule file with [[rule]] entries.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tolerance rules: %w", err)
	}

	var rules Rules
	if err := toml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("tolerance rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("tolerance rules %s: %w", path, err)
	}
	return &rules, nil
}

// Error implements the error interface for ToleranceConfigError.
func (e *ToleranceConfigError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Pattern, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *ToleranceConfigError) Unwrap() error { return ErrToleranceConfig }
