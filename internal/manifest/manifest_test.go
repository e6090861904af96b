// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"simbench-cli/internal/checksum"
)

func TestStrategyIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		s      Strategy
		wantOK bool
	}{
		{name: "symlink", s: StrategySymlink, wantOK: true},
		{name: "copy", s: StrategyCopy, wantOK: true},
		{name: "download", s: StrategyDownload, wantOK: true},
		{name: "empty", s: Strategy(""), wantOK: false},
		{name: "unknown", s: Strategy("rsync"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.s.IsValid()
			if ok != tt.wantOK {
				t.Errorf("IsValid() = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK && !errors.Is(errs[0], ErrInvalidStrategy) {
				t.Errorf("error does not wrap ErrInvalidStrategy: %v", errs[0])
			}
		})
	}
}

func TestItemIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		item    Item
		wantOK  bool
		wantErr error
	}{
		{
			name: "local copy item",
			item: Item{
				Name:      "ic",
				SourceURI: "/data/ic.grib",
				LocalPath: "input/ic.grib",
				Strategy:  StrategyCopy,
			},
			wantOK: true,
		},
		{
			name: "remote download item with checksum",
			item: Item{
				Name:      "clim",
				SourceURI: "https://example.int/clim.tar.gz",
				LocalPath: "input/clim.tar.gz",
				Strategy:  StrategyDownload,
				Checksum:  "abc123",
				Algorithm: checksum.AlgorithmSHA256,
			},
			wantOK: true,
		},
		{
			name: "remote source cannot symlink",
			item: Item{
				Name:      "bad",
				SourceURI: "https://example.int/data.grib",
				LocalPath: "input/data.grib",
				Strategy:  StrategySymlink,
			},
			wantOK:  false,
			wantErr: ErrUnsupportedStrategy,
		},
		{
			name: "remote source cannot copy",
			item: Item{
				Name:      "bad",
				SourceURI: "http://example.int/data.grib",
				LocalPath: "input/data.grib",
				Strategy:  StrategyCopy,
			},
			wantOK:  false,
			wantErr: ErrUnsupportedStrategy,
		},
		{
			name: "local source cannot download",
			item: Item{
				Name:      "bad",
				SourceURI: "/data/local.grib",
				LocalPath: "input/local.grib",
				Strategy:  StrategyDownload,
			},
			wantOK:  false,
			wantErr: ErrUnsupportedStrategy,
		},
		{
			name: "missing name",
			item: Item{
				SourceURI: "/data/ic.grib",
				LocalPath: "input/ic.grib",
				Strategy:  StrategyCopy,
			},
			wantOK:  false,
			wantErr: ErrInvalidItem,
		},
		{
			name: "unknown checksum algorithm",
			item: Item{
				Name:      "ic",
				SourceURI: "/data/ic.grib",
				LocalPath: "input/ic.grib",
				Strategy:  StrategyCopy,
				Algorithm: checksum.Algorithm("crc32"),
			},
			wantOK:  false,
			wantErr: checksum.ErrInvalidAlgorithm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.item.IsValid()
			if ok != tt.wantOK {
				t.Fatalf("IsValid() = %v, want %v (errs: %v)", ok, tt.wantOK, errs)
			}
			if !tt.wantOK {
				if len(errs) != 1 {
					t.Fatalf("expected a single wrapping InvalidItemError, got %d errors", len(errs))
				}
				if !errors.Is(errs[0], tt.wantErr) {
					t.Errorf("error chain does not contain %v: %v", tt.wantErr, errs[0])
				}
			}
		})
	}
}

func TestManifestValidateDuplicateLocalPath(t *testing.T) {
	t.Parallel()

	m := &Manifest{Inputs: []Item{
		{Name: "a", SourceURI: "/data/a", LocalPath: "input/a", Strategy: StrategyCopy},
		{Name: "b", SourceURI: "/data/b", LocalPath: "input/./a", Strategy: StrategySymlink},
	}}

	err := m.Validate()
	if !errors.Is(err, ErrDuplicateLocalPath) {
		t.Errorf("Validate() error = %v, want ErrDuplicateLocalPath", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()

	m := &Manifest{Inputs: []Item{
		{
			Name:      "initial-conditions",
			SourceURI: "/data/shared/ic.grib",
			LocalPath: "input/ic.grib",
			Strategy:  StrategySymlink,
		},
		{
			Name:      "climatology",
			SourceURI: "https://example.int/clim.tar.gz",
			LocalPath: "input/clim.tar.gz",
			Strategy:  StrategyDownload,
			Checksum:  "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
			Algorithm: checksum.AlgorithmSHA256,
		},
	}}

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !reflect.DeepEqual(m, loaded) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", loaded, m)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error does not wrap os.ErrNotExist: %v", err)
		}
	})

	t.Run("malformed yaml is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(path, []byte("inputs: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error for malformed yaml")
		}
	})

	t.Run("invalid item rejected at load", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "invalid.yaml")
		doc := `inputs:
  - name: bad
    source_uri: https://example.int/x
    local_path: input/x
    strategy: symlink
`
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, ErrUnsupportedStrategy) {
			t.Errorf("error does not wrap ErrUnsupportedStrategy: %v", err)
		}
	})
}
