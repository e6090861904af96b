// SPDX-License-Identifier: MPL-2.0

package checksum

import (
	"crypto/md5"  //nolint:gosec // md5 supported for legacy reference manifests, not for security
	"crypto/sha1" //nolint:gosec // sha1 supported for legacy reference manifests, not for security
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// AlgorithmSHA256 is the default algorithm for input manifests.
	AlgorithmSHA256 Algorithm = "sha256"
	// AlgorithmSHA1 is supported for manifests converted from older tooling.
	AlgorithmSHA1 Algorithm = "sha1"
	// AlgorithmMD5 is supported for manifests converted from older tooling.
	AlgorithmMD5 Algorithm = "md5"
	// AlgorithmXXH64 is a fast non-cryptographic digest, useful when the only
	// concern is detecting truncated or bit-rotted multi-gigabyte inputs.
	AlgorithmXXH64 Algorithm = "xxh64"
)

// copyBufferSize is the read chunk size. Large inputs (GRIB files and the
// like) dominate provisioning cost, so reads happen in 4 MiB chunks.
const copyBufferSize = 4 * 1024 * 1024

var (
	// ErrInvalidAlgorithm is returned when an Algorithm value is not recognized.
	ErrInvalidAlgorithm = errors.New("invalid checksum algorithm")
	// ErrMismatch is the sentinel error wrapped by MismatchError.
	ErrMismatch = errors.New("checksum mismatch")
)

type (
	// Algorithm identifies a supported digest algorithm.
	Algorithm string

	// InvalidAlgorithmError is returned when an Algorithm value is not
	// recognized. It wraps ErrInvalidAlgorithm for errors.Is() compatibility.
	InvalidAlgorithmError struct {
		Value Algorithm
	}

	// MismatchError reports a digest that did not match its expectation.
	// It wraps ErrMismatch for errors.Is() compatibility.
	MismatchError struct {
		Path     string
		Expected string
		Actual   string
	}
)

// Default returns the algorithm used when a manifest does not name one.
func Default() Algorithm { return AlgorithmSHA256 }

// String returns the string representation of the Algorithm.
func (a Algorithm) String() string { return string(a) }

// IsValid returns whether the Algorithm is one of the supported algorithms,
// and a list of validation errors if it is not.
func (a Algorithm) IsValid() (bool, []error) {
	switch a {
	case AlgorithmSHA256, AlgorithmSHA1, AlgorithmMD5, AlgorithmXXH64:
		return true, nil
	default:
		return false, []error{&InvalidAlgorithmError{Value: a}}
	}
}

// newHash returns a fresh hash.Hash for the algorithm.
func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmSHA1:
		return sha1.New(), nil //nolint:gosec // legacy manifest support
	case AlgorithmMD5:
		return md5.New(), nil //nolint:gosec // legacy manifest support
	case AlgorithmXXH64:
		return xxhash.New(), nil
	default:
		return nil, &InvalidAlgorithmError{Value: a}
	}
}

// Error implements the error interface for InvalidAlgorithmError.
func (e *InvalidAlgorithmError) Error() string {
	return fmt.Sprintf("invalid checksum algorithm %q (valid: sha256, sha1, md5, xxh64)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidAlgorithmError) Unwrap() error { return ErrInvalidAlgorithm }

// Error implements the error interface for MismatchError.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *MismatchError) Unwrap() error { return ErrMismatch }

// Compute returns the hex digest of the file at path using the given
// algorithm. The file is read in chunks; an unreadable path surfaces the
// underlying I/O error. There are no retries here, the caller decides whether
// to re-provision.
func Compute(path string, algorithm Algorithm) (string, error) {
	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify computes the digest of path and compares it against expected
// (case-insensitive hex comparison). It returns false with a nil error on a
// plain mismatch; errors are reserved for unreadable files and unknown
// algorithms.
func Verify(path, expected string, algorithm Algorithm) (bool, error) {
	actual, err := Compute(path, algorithm)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actual, expected), nil
}
