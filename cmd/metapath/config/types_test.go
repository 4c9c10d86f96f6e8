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
	"testing"
)

// TestDefaultConfig verifies default values pass validation.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() does not validate: %v", err)
	}
	if cfg.Direction.Strategy != "measure" {
		t.Errorf("Direction.Strategy = %q, want %q", cfg.Direction.Strategy, "measure")
	}
	if cfg.Direction.MaxSamples != 1000 {
		t.Errorf("Direction.MaxSamples = %d, want 1000", cfg.Direction.MaxSamples)
	}
	if len(cfg.Direction.BudgetsMB) == 0 {
		t.Error("Direction.BudgetsMB is empty, want default budget ladder")
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want disabled by default")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Telemetry.SampleRate = %v, want 1.0", cfg.Telemetry.SampleRate)
	}
}

// TestValidate_RejectsBadValues verifies tag enforcement field by field.
func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MetapathConfig)
	}{
		{"zero flush_every", func(c *MetapathConfig) { c.Run.FlushEvery = 0 }},
		{"unknown log level", func(c *MetapathConfig) { c.Run.LogLevel = "loud" }},
		{"unknown strategy", func(c *MetapathConfig) { c.Direction.Strategy = "sideways" }},
		{"zero max_samples", func(c *MetapathConfig) { c.Direction.MaxSamples = 0 }},
		{"negative budget", func(c *MetapathConfig) { c.Direction.BudgetsMB = []int{4096, -1} }},
		{"unknown trace exporter", func(c *MetapathConfig) { c.Telemetry.TraceExporter = "carrier-pigeon" }},
		{"port out of range", func(c *MetapathConfig) { c.Telemetry.PrometheusPort = 70000 }},
		{"sample rate above one", func(c *MetapathConfig) { c.Telemetry.SampleRate = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() accepted %s", tt.name)
			}
		})
	}
}

// TestValidate_AcceptsOptionalEmpties verifies omitempty fields can stay unset.
func TestValidate_AcceptsOptionalEmpties(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.LogLevel = ""
	cfg.Direction.BudgetsMB = nil
	cfg.Telemetry.TraceExporter = ""
	cfg.Telemetry.PrometheusPort = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() rejected optional empties: %v", err)
	}
}
