// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestCreateDefault verifies default config creation.
func TestCreateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".metapath", "metapath.yaml")

	if err := createDefault(configPath); err != nil {
		t.Fatalf("createDefault() failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var cfg MetapathConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.Direction.Strategy != "measure" {
		t.Errorf("Direction.Strategy = %q, want %q", cfg.Direction.Strategy, "measure")
	}
	if cfg.Run.FlushEvery != 50000 {
		t.Errorf("Run.FlushEvery = %d, want %d", cfg.Run.FlushEvery, 50000)
	}
}

// TestCreateDefault_DirectoryCreation verifies nested directories are created.
func TestCreateDefault_DirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "deep", "nested", "path", "metapath.yaml")

	if err := createDefault(configPath); err != nil {
		t.Fatalf("createDefault() failed with nested path: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		t.Fatal("config directory was not created")
	}
}

// TestLoadInternal_ExplicitPath verifies loading from a --config path.
func TestLoadInternal_ExplicitPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom.yaml")

	content := `
run:
  flush_every: 1000
  log_level: debug
direction:
  strategy: estimate
  max_samples: 50
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := loadInternal(configPath); err != nil {
		t.Fatalf("loadInternal() failed: %v", err)
	}

	if Global.Run.FlushEvery != 1000 {
		t.Errorf("Run.FlushEvery = %d, want 1000", Global.Run.FlushEvery)
	}
	if Global.Direction.Strategy != "estimate" {
		t.Errorf("Direction.Strategy = %q, want %q", Global.Direction.Strategy, "estimate")
	}
	// unset sections keep their defaults
	if Global.Telemetry.OTLPEndpoint != "localhost:4317" {
		t.Errorf("Telemetry.OTLPEndpoint = %q, want default", Global.Telemetry.OTLPEndpoint)
	}
}

// TestLoadInternal_ExplicitPathMissing verifies a missing --config path errors
// instead of being silently created.
func TestLoadInternal_ExplicitPathMissing(t *testing.T) {
	err := loadInternal(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want mention of missing file", err)
	}
}

// TestLoadInternal_DefaultPathFirstRun verifies first-run creation under $HOME.
func TestLoadInternal_DefaultPathFirstRun(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	if err := loadInternal(""); err != nil {
		t.Fatalf("loadInternal() failed: %v", err)
	}

	configPath := filepath.Join(tempHome, ".metapath", "metapath.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("default config file was not created on first run")
	}
	if Global.Direction.MaxSamples != 1000 {
		t.Errorf("Direction.MaxSamples = %d, want 1000", Global.Direction.MaxSamples)
	}
}

// TestLoadInternal_InvalidConfig verifies validation failures are surfaced.
func TestLoadInternal_InvalidConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bad.yaml")

	content := `
direction:
  strategy: backwards
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	err := loadInternal(configPath)
	if err == nil {
		t.Fatal("expected validation error for unknown strategy")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Errorf("error = %v, want validation failure", err)
	}
}

// TestLoadInternal_MalformedYAML verifies parse failures are surfaced.
func TestLoadInternal_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "broken.yaml")

	if err := os.WriteFile(configPath, []byte("run: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := loadInternal(configPath); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
