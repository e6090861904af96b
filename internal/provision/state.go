// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
)

const (
	// StatusPending means the item has not been processed yet. Items skipped
	// because the batch was cancelled stay Pending.
	StatusPending Status = "pending"
	// StatusVerified means the item exists locally and, when a checksum was
	// declared and checked, matches it.
	StatusVerified Status = "verified"
	// StatusStale means the local file exists but its checksum does not match
	// the manifest, and overwriting was not permitted.
	StatusStale Status = "stale"
	// StatusFailed means an I/O, transport or checksum error stopped the item
	// from being materialized. The state carries the cause.
	StatusFailed Status = "failed"

	// ActionNone records that the fast path was taken: no filesystem or
	// network I/O happened for the item.
	ActionNone Action = "none"
	// ActionVerifyOnly records that only a checksum re-read happened.
	ActionVerifyOnly Action = "verify"
	// ActionSymlink records that a symlink was created.
	ActionSymlink Action = "symlink"
	// ActionCopy records that the source was copied.
	ActionCopy Action = "copy"
	// ActionDownload records that the source was downloaded.
	ActionDownload Action = "download"
)

var (
	// ErrInvalidStatus is returned when a Status value is not recognized.
	ErrInvalidStatus = errors.New("invalid provision status")
	// ErrProvision is the sentinel error wrapped by Error.
	ErrProvision = errors.New("provisioning failed")
)

type (
	// Status is the lifecycle state of a single manifest item during one
	// provisioning call.
	Status string

	// Action records what, if any, I/O the provisioner performed for an item.
	// It exists so callers (and the idempotence tests) can observe that an
	// already-verified tree causes no work.
	Action string

	// InvalidStatusError is returned when a Status value is not recognized.
	// It wraps ErrInvalidStatus for errors.Is() compatibility.
	InvalidStatusError struct {
		Value Status
	}

	// Error is a per-item provisioning failure carrying the item name and the
	// underlying transport or filesystem error. It wraps ErrProvision for
	// errors.Is() compatibility.
	Error struct {
		Item string
		Op   string
		Err  error
	}

	// ItemState is the per-item outcome of a provisioning call. Exactly one
	// state is produced per manifest item, in manifest order.
	ItemState struct {
		// Name is the manifest item name.
		Name string
		// LocalPath is the resolved absolute destination path.
		LocalPath string
		// Status is the final lifecycle state.
		Status Status
		// Action records the I/O performed (ActionNone on the fast path).
		Action Action
		// Err carries the cause for StatusFailed and StatusStale; nil otherwise.
		Err error
	}
)

// String returns the string representation of the Status.
func (s Status) String() string { return string(s) }

// IsValid returns whether the Status is one of the defined states, and a list
// of validation errors if it is not.
func (s Status) IsValid() (bool, []error) {
	switch s {
	case StatusPending, StatusVerified, StatusStale, StatusFailed:
		return true, nil
	default:
		return false, []error{&InvalidStatusError{Value: s}}
	}
}

// Error implements the error interface for InvalidStatusError.
func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid provision status %q (valid: pending, verified, stale, failed)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("item %q: %s: %v", e.Item, e.Op, e.Err)
}

// Unwrap returns the underlying cause so errors.Is/As can reach transport and
// checksum errors through the provisioning wrapper.
func (e *Error) Unwrap() error { return e.Err }

// Is reports true for ErrProvision in addition to the wrapped chain.
func (e *Error) Is(target error) bool { return target == ErrProvision }

// Summary condenses a state slice into per-status counts, in the order
// verified, stale, failed, pending.
func Summary(states []ItemState) (verified, stale, failed, pending int) {
	for _, st := range states {
		switch st.Status {
		case StatusVerified:
			verified++
		case StatusStale:
			stale++
		case StatusFailed:
			failed++
		case StatusPending:
			pending++
		}
	}
	return verified, stale, failed, pending
}
