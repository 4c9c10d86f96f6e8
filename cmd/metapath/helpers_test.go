// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/config"
	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
)

// TestResolveFlushEvery verifies the flag beats the config default.
func TestResolveFlushEvery(t *testing.T) {
	origFlag, origCfg := flushEvery, config.Global
	defer func() { flushEvery = origFlag; config.Global = origCfg }()

	config.Global = config.DefaultConfig()
	config.Global.Run.FlushEvery = 2000

	flushEvery = 0
	if got := resolveFlushEvery(); got != 2000 {
		t.Errorf("resolveFlushEvery() = %d, want config value 2000", got)
	}

	flushEvery = 500
	if got := resolveFlushEvery(); got != 500 {
		t.Errorf("resolveFlushEvery() = %d, want flag value 500", got)
	}
}

// TestResolveMaxSamples verifies flag > config > builtin precedence.
func TestResolveMaxSamples(t *testing.T) {
	origFlag, origCfg := directionMaxSamples, config.Global
	defer func() { directionMaxSamples = origFlag; config.Global = origCfg }()

	directionMaxSamples = 0
	config.Global = config.MetapathConfig{}
	if got := resolveMaxSamples(); got != 1000 {
		t.Errorf("resolveMaxSamples() = %d, want builtin 1000", got)
	}

	config.Global.Direction.MaxSamples = 250
	if got := resolveMaxSamples(); got != 250 {
		t.Errorf("resolveMaxSamples() = %d, want config value 250", got)
	}

	directionMaxSamples = 42
	if got := resolveMaxSamples(); got != 42 {
		t.Errorf("resolveMaxSamples() = %d, want flag value 42", got)
	}
}

// TestResolveStrategy verifies flag > config > builtin precedence.
func TestResolveStrategy(t *testing.T) {
	origFlag, origCfg := directionStrategy, config.Global
	defer func() { directionStrategy = origFlag; config.Global = origCfg }()

	directionStrategy = ""
	config.Global = config.MetapathConfig{}
	if got := resolveStrategy(); got != "measure" {
		t.Errorf("resolveStrategy() = %q, want builtin %q", got, "measure")
	}

	config.Global.Direction.Strategy = "estimate"
	if got := resolveStrategy(); got != "estimate" {
		t.Errorf("resolveStrategy() = %q, want config value %q", got, "estimate")
	}

	directionStrategy = "measure"
	if got := resolveStrategy(); got != "measure" {
		t.Errorf("resolveStrategy() = %q, want flag value %q", got, "measure")
	}
}

// TestResolveSeed verifies an explicit seed is kept and a zero flag
// yields a usable nonzero seed instead of a silent fixed default.
func TestResolveSeed(t *testing.T) {
	if got := resolveSeed(42); got != 42 {
		t.Errorf("resolveSeed(42) = %d, want the flag value", got)
	}
	if got := resolveSeed(-7); got != -7 {
		t.Errorf("resolveSeed(-7) = %d, want the flag value", got)
	}
	if got := resolveSeed(0); got == 0 || got == 1 {
		t.Errorf("resolveSeed(0) = %d, want a clock-derived seed", got)
	}
}

// TestGraphInputs verifies the shared flags land in the engine inputs.
func TestGraphInputs(t *testing.T) {
	origNodes, origEdges, origHier := nodesPath, edgesPath, hierarchyPath
	defer func() { nodesPath, edgesPath, hierarchyPath = origNodes, origEdges, origHier }()

	nodesPath = "nodes.jsonl.gz"
	edgesPath = "edges.jsonl.gz"
	hierarchyPath = "biolink.yaml"

	in := graphInputs()
	if in.NodesPath != "nodes.jsonl.gz" || in.EdgesPath != "edges.jsonl.gz" || in.HierarchyPath != "biolink.yaml" {
		t.Errorf("graphInputs() = %+v, flags not carried", in)
	}
}

// TestTelemetryConfig_Overrides verifies config fields flow into the
// exporter wiring and unset ones keep their defaults.
func TestTelemetryConfig_Overrides(t *testing.T) {
	origCfg := config.Global
	defer func() { config.Global = origCfg }()

	config.Global = config.MetapathConfig{}
	config.Global.Telemetry.TraceExporter = "stdout"
	config.Global.Telemetry.PrometheusPort = 9191
	config.Global.Telemetry.SampleRate = 0.25

	tc := telemetryConfig()
	if tc.TraceExporter != "stdout" {
		t.Errorf("TraceExporter = %q, want %q", tc.TraceExporter, "stdout")
	}
	if tc.PrometheusPort != 9191 {
		t.Errorf("PrometheusPort = %d, want 9191", tc.PrometheusPort)
	}
	if tc.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", tc.SampleRate)
	}
	if tc.ServiceName != "metapath" {
		t.Errorf("ServiceName = %q, want default %q", tc.ServiceName, "metapath")
	}
	if tc.ServiceVersion != version {
		t.Errorf("ServiceVersion = %q, want build version %q", tc.ServiceVersion, version)
	}
}

// TestConfirmOverwrite_NonInteractive verifies machine mode never
// prompts, even when every target exists.
func TestConfirmOverwrite_NonInteractive(t *testing.T) {
	orig := ux.GetPersonality()
	defer ux.SetPersonality(orig)
	ux.SetPersonalityLevel(ux.PersonalityMachine)

	existing := filepath.Join(t.TempDir(), "overlap.tsv")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	// Returning at all is the assertion: a prompt would block forever
	// with no terminal attached.
	confirmOverwrite(existing)
}

// TestRunVersion_Output verifies the version line format.
func TestRunVersion_Output(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	origStdout := os.Stdout
	os.Stdout = w

	runVersion(versionCmd, nil)

	w.Close()
	os.Stdout = origStdout
	out, _ := io.ReadAll(r)

	got := string(out)
	if !strings.HasPrefix(got, "metapath ") {
		t.Errorf("version output = %q, want metapath prefix", got)
	}
	if !strings.Contains(got, "commit") || !strings.Contains(got, "built") {
		t.Errorf("version output = %q, want commit and build date", got)
	}
}
