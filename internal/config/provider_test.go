// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProvider_LoadExplicitFile(t *testing.T) {
	defer Reset()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.cue")
	if err := os.WriteFile(cfgPath, []byte(`parallelism: 6`+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	p := NewProvider()
	cfg, err := p.Load(context.Background(), LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Parallelism != 6 {
		t.Errorf("Parallelism = %d, want 6", cfg.Parallelism)
	}
}

func TestProvider_LoadPropagatesErrors(t *testing.T) {
	defer Reset()

	p := NewProvider()
	_, err := p.Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("Load() with missing explicit file should fail")
	}
}
