// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"

	"simbench-cli/internal/checksum"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme  ColorScheme
		want    bool
		wantErr bool
	}{
		{ColorSchemeAuto, true, false},
		{ColorSchemeDark, true, false},
		{ColorSchemeLight, true, false},
		{"", false, true},
		{"invalid", false, true},
		{"AUTO", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.scheme.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.scheme, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("ColorScheme(%q).IsValid() returned no errors, want error", tt.scheme)
				}
				if !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("ColorScheme(%q).IsValid() returned unexpected errors: %v", tt.scheme, errs)
			}
		})
	}
}

func TestFilePath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilePath
		want bool
	}{
		{"empty is valid", "", true},
		{"regular path", "./rundir", true},
		{"whitespace only", "   ", false},
		{"tab only", "\t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.path.IsValid()
			if isValid != tt.want {
				t.Errorf("FilePath(%q).IsValid() = %v, want %v", tt.path, isValid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidFilePath) {
				t.Errorf("error should wrap ErrInvalidFilePath, got: %v", errs[0])
			}
		})
	}
}

func TestConfig_IsValid_Defaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() should be valid, got errors: %v", errs)
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{
		DestinationRoot:   "  ",
		Manifest:          "manifest.yaml",
		Parallelism:       -1,
		ChecksumAlgorithm: "crc32",
		DownloadTimeout:   "fast",
		UI:                UIConfig{ColorScheme: "neon"},
	}

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("config with invalid fields should not be valid")
	}
	if len(errs) != 1 {
		t.Fatalf("IsValid() should return a single wrapping error, got %d", len(errs))
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got: %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 5 {
		t.Errorf("expected 5 field errors, got %d: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}

	joined := errors.Join(cfgErr.FieldErrors...)
	for _, sentinel := range []error{
		ErrInvalidFilePath,
		ErrInvalidParallelism,
		checksum.ErrInvalidAlgorithm,
		ErrInvalidDownloadTimeout,
		ErrInvalidUIConfig,
	} {
		if !errors.Is(joined, sentinel) {
			t.Errorf("field errors should include %v", sentinel)
		}
	}
}

func TestConfig_DownloadTimeoutDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"empty uses default", "", defaultDownloadTimeout, false},
		{"seconds", "30s", 30 * time.Second, false},
		{"composite", "1m30s", 90 * time.Second, false},
		{"zero rejected", "0s", 0, true},
		{"negative rejected", "-5s", 0, true},
		{"garbage rejected", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{DownloadTimeout: tt.value}
			d, err := cfg.DownloadTimeoutDuration()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DownloadTimeoutDuration(%q) should fail", tt.value)
				}
				if !errors.Is(err, ErrInvalidDownloadTimeout) {
					t.Errorf("error should wrap ErrInvalidDownloadTimeout, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadTimeoutDuration(%q) returned error: %v", tt.value, err)
			}
			if d != tt.want {
				t.Errorf("DownloadTimeoutDuration(%q) = %v, want %v", tt.value, d, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.DestinationRoot != "rundir" {
		t.Errorf("expected default destination root to be rundir, got %s", cfg.DestinationRoot)
	}
	if cfg.Manifest != "manifest.yaml" {
		t.Errorf("expected default manifest to be manifest.yaml, got %s", cfg.Manifest)
	}
	if cfg.ToleranceRules != "" {
		t.Errorf("expected default tolerance rules to be empty, got %s", cfg.ToleranceRules)
	}
	if cfg.Parallelism != 0 {
		t.Errorf("expected default parallelism to be 0, got %d", cfg.Parallelism)
	}
	if cfg.ChecksumAlgorithm != checksum.AlgorithmSHA256 {
		t.Errorf("expected default checksum algorithm to be sha256, got %s", cfg.ChecksumAlgorithm)
	}
	if cfg.DownloadTimeout != "5m" {
		t.Errorf("expected default download timeout to be 5m, got %s", cfg.DownloadTimeout)
	}
	if cfg.History != "" {
		t.Errorf("expected default history path to be empty, got %s", cfg.History)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
}
