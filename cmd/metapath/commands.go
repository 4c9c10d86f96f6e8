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
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/config"
	"github.com/AleutianAI/MetapathFOSS/pkg/logging"
	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/telemetry"
)

// --- Global Command Variables ---
var (
	cfgFile          string
	logLevel         string
	logJSON          bool
	quiet            bool
	telemetryOn      bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	// Shared graph inputs
	nodesPath     string
	edgesPath     string
	hierarchyPath string

	// Overlap
	overlapOutput    string
	overlapClassify  bool
	classifiedOutput string
	aggregateOutput  string
	flushEvery       int

	// Classify
	overlapTable string

	// Direction
	directionMaxSamples int
	directionStrategy   string
	directionOutput     string
	headroomOutput      string

	// Samples. Generate and run write different tables, so each keeps
	// its own output path and default.
	samplesTotal     int
	samplesSeed      int64
	samplesGenOutput string
	samplesRunOutput string
	samplesInput     string

	// Estimate
	estimateBudget   int
	benchmarkResults string
	estimateOutput   string

	// Publish
	publishDir     string
	publishBucket  string
	publishPrefix  string
	publishProject string
	publishSAKey   string
	publishYes     bool

	rootCmd = &cobra.Command{
		Use:   "metapath",
		Short: "Analyze metapath composition and performance over a biolink knowledge graph",
		Long: `Metapath enumerates three-hop relation chains over a typed knowledge
				graph, scores how well they predict direct one-hop relations, and
				profiles the cost of computing them at scale.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
			if quiet {
				ux.SetPersonalityLevel(ux.PersonalityMachine)
			}
			// version must work without a config file
			if cmd.Name() == "version" {
				return
			}
			if err := config.Load(cfgFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(exitFailure)
			}
			cliLogger = newRunLogger()
			if telemetryOn || config.Global.Telemetry.Enabled {
				initTelemetry(cmd)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownTelemetry()
			if cliLogger != nil {
				_ = cliLogger.Close()
			}
		},
	}

	// --- Analyses ---
	overlapCmd = &cobra.Command{
		Use:   "overlap",
		Short: "Enumerate three-hop chains and score overlap against one-hop relations",
		Run:   runOverlap, // Defined in cmd_overlap.go
	}
	classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Score an existing overlap table with classification metrics",
		Run:   runClassify, // Defined in cmd_classify.go
	}
	directionCmd = &cobra.Command{
		Use:   "direction",
		Short: "Benchmark forward vs reverse composition order on sampled chains",
		Run:   runDirection, // Defined in cmd_direction.go
	}

	// --- Benchmark samples ---
	samplesCmd = &cobra.Command{
		Use:   "samples",
		Short: "Generate and run stratified benchmark samples",
	}
	samplesGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Draw a size-stratified sample of chains for benchmarking",
		Run:   runSamplesGenerate, // Defined in cmd_samples.go
	}
	samplesRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Measure sampled chains and write benchmark results",
		Run:   runSamplesRun, // Defined in cmd_samples.go
	}

	estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Project the full enumeration's runtime from benchmark timings",
		Run:   runEstimate, // Defined in cmd_estimate.go
	}

	// --- GCS ---
	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Upload result tables to Google Cloud Storage",
		Run:   runPublish, // Defined in cmd_publish.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion, // Defined in helpers.go
	}
)

// cliLogger is built in PersistentPreRun and shared by all handlers.
var cliLogger *logging.Logger

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default ~/.metapath/metapath.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Emit logs as JSON lines")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false,
		"Suppress terminal decoration and stderr logs (implies --personality machine)")
	rootCmd.PersistentFlags().BoolVar(&telemetryOn, "telemetry", false,
		"Enable OpenTelemetry traces and metrics for this run")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default, rich), standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(overlapCmd)
	overlapCmd.Flags().StringVar(&nodesPath, "nodes", "", "Path to the KGX nodes JSONL file")
	overlapCmd.Flags().StringVar(&edgesPath, "edges", "", "Path to the KGX edges JSONL file")
	overlapCmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Optional class hierarchy YAML for type resolution")
	overlapCmd.Flags().StringVarP(&overlapOutput, "output", "o", "3hop_1hop_overlap.tsv", "Overlap table output path")
	overlapCmd.Flags().BoolVar(&overlapClassify, "classify", false, "Also write classification tables in the same pass")
	overlapCmd.Flags().StringVar(&classifiedOutput, "classified-output", "metapath_prediction_metrics.tsv", "Classification table output path (with --classify)")
	overlapCmd.Flags().StringVar(&aggregateOutput, "aggregate-output", "metapath_prediction_by_3hop.tsv", "Per-chain aggregate output path (with --classify)")
	overlapCmd.Flags().IntVar(&flushEvery, "flush-every", 0, "Rows between output flushes (default from config)")
	_ = overlapCmd.MarkFlagRequired("nodes")
	_ = overlapCmd.MarkFlagRequired("edges")

	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&overlapTable, "overlap-table", "3hop_1hop_overlap.tsv", "Overlap table to score")
	classifyCmd.Flags().StringVarP(&classifiedOutput, "output", "o", "metapath_prediction_metrics.tsv", "Classification table output path")
	classifyCmd.Flags().StringVar(&aggregateOutput, "aggregate-output", "metapath_prediction_by_3hop.tsv", "Per-chain aggregate output path")

	rootCmd.AddCommand(directionCmd)
	directionCmd.Flags().StringVar(&nodesPath, "nodes", "", "Path to the KGX nodes JSONL file")
	directionCmd.Flags().StringVar(&edgesPath, "edges", "", "Path to the KGX edges JSONL file")
	directionCmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Optional class hierarchy YAML for type resolution")
	directionCmd.Flags().IntVar(&directionMaxSamples, "max-samples", 0, "Chains to profile (default from config, 1000)")
	directionCmd.Flags().StringVar(&directionStrategy, "strategy", "", "Cost strategy: measure or estimate (default from config)")
	directionCmd.Flags().StringVarP(&directionOutput, "output", "o", "direction_analysis.tsv", "Benchmark table output path")
	directionCmd.Flags().StringVar(&headroomOutput, "headroom-output", "direction_headroom.tsv", "Memory headroom table output path")
	_ = directionCmd.MarkFlagRequired("nodes")
	_ = directionCmd.MarkFlagRequired("edges")

	rootCmd.AddCommand(samplesCmd)
	samplesCmd.AddCommand(samplesGenerateCmd)
	samplesGenerateCmd.Flags().StringVar(&nodesPath, "nodes", "", "Path to the KGX nodes JSONL file")
	samplesGenerateCmd.Flags().StringVar(&edgesPath, "edges", "", "Path to the KGX edges JSONL file")
	samplesGenerateCmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Optional class hierarchy YAML for type resolution")
	samplesGenerateCmd.Flags().IntVar(&samplesTotal, "total-samples", 1000, "Total samples to draw across size buckets")
	samplesGenerateCmd.Flags().Int64Var(&samplesSeed, "seed", 0, "Random seed for a reproducible draw (0 uses entropy)")
	samplesGenerateCmd.Flags().StringVarP(&samplesGenOutput, "output", "o", "benchmark_samples.tsv", "Sample table output path")
	_ = samplesGenerateCmd.MarkFlagRequired("nodes")
	_ = samplesGenerateCmd.MarkFlagRequired("edges")

	samplesCmd.AddCommand(samplesRunCmd)
	samplesRunCmd.Flags().StringVar(&nodesPath, "nodes", "", "Path to the KGX nodes JSONL file")
	samplesRunCmd.Flags().StringVar(&edgesPath, "edges", "", "Path to the KGX edges JSONL file")
	samplesRunCmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Optional class hierarchy YAML for type resolution")
	samplesRunCmd.Flags().StringVar(&samplesInput, "samples", "", "Sample table from 'samples generate'")
	samplesRunCmd.Flags().StringVarP(&samplesRunOutput, "output", "o", "benchmark_results.tsv", "Benchmark results output path")
	_ = samplesRunCmd.MarkFlagRequired("nodes")
	_ = samplesRunCmd.MarkFlagRequired("edges")
	_ = samplesRunCmd.MarkFlagRequired("samples")

	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().StringVar(&nodesPath, "nodes", "", "Path to the KGX nodes JSONL file")
	estimateCmd.Flags().StringVar(&edgesPath, "edges", "", "Path to the KGX edges JSONL file")
	estimateCmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Optional class hierarchy YAML for type resolution")
	estimateCmd.Flags().IntVar(&estimateBudget, "sample-budget", 0, "Measure this many fresh samples for timings")
	estimateCmd.Flags().StringVar(&benchmarkResults, "benchmark", "", "Reuse an existing benchmark results table for timings")
	estimateCmd.Flags().StringVarP(&estimateOutput, "output", "o", "runtime_estimate.tsv", "Runtime estimate table output path")
	_ = estimateCmd.MarkFlagRequired("nodes")
	_ = estimateCmd.MarkFlagRequired("edges")

	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishDir, "results-dir", "", "Local directory of result tables to upload")
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "Destination GCS bucket (default from config)")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "Object prefix (default runs/<date>)")
	publishCmd.Flags().StringVar(&publishProject, "project", "", "GCP project (default from config)")
	publishCmd.Flags().StringVar(&publishSAKey, "sa-key", "", "Service account key file (default from config, empty uses ADC)")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "Skip the upload confirmation prompt")
	_ = publishCmd.MarkFlagRequired("results-dir")

	rootCmd.AddCommand(versionCmd)
}

// initTelemetry wires OpenTelemetry and, for the prometheus exporter,
// serves /metrics for the duration of the run so long enumerations can
// be scraped while they work.
func initTelemetry(cmd *cobra.Command) {
	tc := telemetryConfig()
	shutdown, err := telemetry.Init(cmd.Context(), tc)
	if err != nil {
		cliLogger.Warn("telemetry disabled", "error", err)
		return
	}
	telemetryShutdown = shutdown

	if tc.MetricExporter == "prometheus" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.MetricsHandler())
		addr := fmt.Sprintf("localhost:%d", tc.PrometheusPort)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				cliLogger.Warn("metrics endpoint unavailable", "addr", addr, "error", err)
			}
		}()
		cliLogger.Info("metrics endpoint listening", "addr", addr)
	}
}
