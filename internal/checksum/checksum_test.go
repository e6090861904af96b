// SPDX-License-Identifier: MPL-2.0

package checksum

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAlgorithmIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		alg    Algorithm
		wantOK bool
	}{
		{name: "sha256", alg: AlgorithmSHA256, wantOK: true},
		{name: "sha1", alg: AlgorithmSHA1, wantOK: true},
		{name: "md5", alg: AlgorithmMD5, wantOK: true},
		{name: "xxh64", alg: AlgorithmXXH64, wantOK: true},
		{name: "empty is invalid", alg: Algorithm(""), wantOK: false},
		{name: "unknown is invalid", alg: Algorithm("crc32"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.alg.IsValid()
			if ok != tt.wantOK {
				t.Errorf("IsValid() = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				if len(errs) != 1 {
					t.Fatalf("expected exactly one validation error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidAlgorithm) {
					t.Errorf("validation error does not wrap ErrInvalidAlgorithm: %v", errs[0])
				}
			}
		})
	}
}

func TestComputeVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.dat")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, alg := range []Algorithm{AlgorithmSHA256, AlgorithmSHA1, AlgorithmMD5, AlgorithmXXH64} {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			digest, err := Compute(path, alg)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if digest == "" {
				t.Fatal("Compute() returned empty digest")
			}

			ok, err := Verify(path, digest, alg)
			if err != nil {
				t.Fatalf("Verify() error: %v", err)
			}
			if !ok {
				t.Errorf("Verify(Compute()) = false, want true")
			}
		})
	}
}

func TestComputeKnownSHA256(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "abc.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := Compute(path, AlgorithmSHA256)
	if err != nil {
		t.Fatal(err)
	}

	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if digest != want {
		t.Errorf("Compute() = %s, want %s", digest, want)
	}
}

func TestVerifyDetectsSingleByteFlip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "input.dat")
	content := []byte("benchmark input payload")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := Compute(path, AlgorithmSHA256)
	if err != nil {
		t.Fatal(err)
	}

	// Flip a single byte and re-verify.
	content[4] ^= 0x01
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(path, digest, AlgorithmSHA256)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if ok {
		t.Error("Verify() = true after byte flip, want false")
	}
}

func TestVerifyIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.dat")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	const upper = "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD"
	ok, err := Verify(path, upper, AlgorithmSHA256)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("Verify() with upper-case digest = false, want true")
	}
}

func TestComputeErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file surfaces IO error", func(t *testing.T) {
		t.Parallel()

		_, err := Compute(filepath.Join(t.TempDir(), "no-such-file"), AlgorithmSHA256)
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error does not wrap os.ErrNotExist: %v", err)
		}
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "input.dat")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Compute(path, Algorithm("whirlpool"))
		if !errors.Is(err, ErrInvalidAlgorithm) {
			t.Errorf("error does not wrap ErrInvalidAlgorithm: %v", err)
		}
	})
}
