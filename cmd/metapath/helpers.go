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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/config"
	"github.com/AleutianAI/MetapathFOSS/pkg/logging"
	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/engine"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/telemetry"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("metapath %s (commit %s, built %s)\n", version, commit, date)
}

// telemetryShutdown flushes exporters at the end of a traced run.
var telemetryShutdown func(context.Context) error

func shutdownTelemetry() {
	if telemetryShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetryShutdown(ctx); err != nil && cliLogger != nil {
		cliLogger.Warn("telemetry shutdown incomplete", "error", err)
	}
	telemetryShutdown = nil
}

// fail reports a runtime failure and exits. Used for everything that
// can break after flags parsed cleanly: unreadable inputs, write
// failures, cancellation.
func fail(msg string, err error) {
	if cliLogger != nil {
		cliLogger.Error(msg, "error", err)
	}
	if err != nil {
		ux.Error(fmt.Sprintf("%s: %v", msg, err))
	} else {
		ux.Error(msg)
	}
	os.Exit(exitFailure)
}

// failUsage reports a bad flag value. Cobra validates presence and
// syntax; value-level checks land here.
func failUsage(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(exitUsage)
}

// mustCreate opens an output table for writing, failing the run on error.
func mustCreate(path string) *os.File {
	f, err := os.Create(path)
	if err != nil {
		fail(fmt.Sprintf("cannot create output file %s", path), err)
	}
	return f
}

// mustClose flushes an output table, failing the run if the close loses
// buffered rows.
func mustClose(f *os.File) {
	if err := f.Close(); err != nil {
		fail(fmt.Sprintf("cannot finalize output file %s", f.Name()), err)
	}
}

// confirmOverwrite prompts before clobbering existing output tables.
//
// Description:
//
//	Collects the paths that already exist and, on an interactive
//	terminal, asks once for all of them. Non-interactive runs never
//	prompt and always proceed, matching how the analyses behave under
//	cron or make. Declining aborts with exitFailure so shell chains
//	like "overlap && classify" stop.
func confirmOverwrite(paths ...string) {
	if !ux.IsInteractive() {
		return
	}
	var existing []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return
	}

	overwrite := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Overwrite %d existing file(s)?", len(existing))).
		Description(strings.Join(existing, "\n")).
		Affirmative("Overwrite").
		Negative("Cancel").
		Value(&overwrite).
		Run()
	if err != nil {
		fail("confirmation prompt failed", err)
	}
	if !overwrite {
		ux.Warning("aborted, existing files left untouched")
		os.Exit(exitFailure)
	}
}

// newRunLogger builds the CLI logger from flags and config. Flags win.
func newRunLogger() *logging.Logger {
	name := logLevel
	if name == "" {
		name = config.Global.Run.LogLevel
	}
	level := logging.LevelInfo
	if lv, ok := logging.ParseLevel(name); ok {
		level = lv
	}
	return logging.New(logging.Config{
		Level:   level,
		Service: "cli",
		JSON:    logJSON || config.Global.Run.LogJSON,
		Quiet:   quiet,
	})
}

// newEngine assembles the analysis engine shared by all commands. When
// spin is non-nil, throttled engine progress drives the spinner text.
func newEngine(spin *ux.ProgressSpinner) *engine.Engine {
	opts := []engine.Option{
		engine.WithLogger(cliLogger),
		engine.WithFlushEvery(resolveFlushEvery()),
	}
	if spin != nil {
		opts = append(opts, engine.WithProgress(func(p engine.Progress) {
			spin.SetStatus(p.Phase, p.Processed)
		}))
	}
	return engine.New(opts...)
}

// startSpinner returns a running progress spinner, or nil when the
// personality suppresses animation.
func startSpinner(message string) *ux.ProgressSpinner {
	if !ux.ShouldShowProgress() {
		return nil
	}
	spin := ux.NewProgressSpinner(message)
	spin.Start()
	return spin
}

func stopSpinnerOK(spin *ux.ProgressSpinner, message string) {
	if spin != nil {
		spin.StopWithSuccess(message)
	}
}

func stopSpinnerErr(spin *ux.ProgressSpinner, message string) {
	if spin != nil {
		spin.StopWithError(message)
	}
}

// graphInputs bundles the shared --nodes/--edges/--hierarchy flags.
func graphInputs() engine.Inputs {
	return engine.Inputs{
		NodesPath:     nodesPath,
		EdgesPath:     edgesPath,
		HierarchyPath: hierarchyPath,
	}
}

func resolveFlushEvery() int {
	if flushEvery > 0 {
		return flushEvery
	}
	return config.Global.Run.FlushEvery
}

func resolveMaxSamples() int {
	if directionMaxSamples > 0 {
		return directionMaxSamples
	}
	if config.Global.Direction.MaxSamples > 0 {
		return config.Global.Direction.MaxSamples
	}
	return 1000
}

func resolveStrategy() string {
	if directionStrategy != "" {
		return directionStrategy
	}
	if config.Global.Direction.Strategy != "" {
		return config.Global.Direction.Strategy
	}
	return "measure"
}

// resolveSeed keeps an explicit --seed and draws one from the clock when
// the flag is 0. The effective seed is logged either way so any draw can
// be reproduced afterwards.
func resolveSeed(flag int64) int64 {
	if flag != 0 {
		return flag
	}
	return time.Now().UnixNano()
}

// telemetryConfig maps the config file's telemetry section onto the
// exporter wiring, leaving unset fields at their environment-derived
// defaults.
func telemetryConfig() telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	g := config.Global.Telemetry
	if g.TraceExporter != "" {
		tc.TraceExporter = g.TraceExporter
	}
	if g.MetricExporter != "" {
		tc.MetricExporter = g.MetricExporter
	}
	if g.OTLPEndpoint != "" {
		tc.OTLPEndpoint = g.OTLPEndpoint
	}
	tc.OTLPInsecure = g.OTLPInsecure
	if g.PrometheusPort != 0 {
		tc.PrometheusPort = g.PrometheusPort
	}
	if g.SampleRate > 0 {
		tc.SampleRate = g.SampleRate
	}
	return tc
}
