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
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/direction"
)

// configValidate is the validator instance for config structs.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

type MetapathConfig struct {
	// Run: defaults shared by every analysis command
	Run RunConfig `yaml:"run"`

	// Direction: defaults for the direction benchmark
	Direction DirectionConfig `yaml:"direction"`

	// Publish: GCS destination for result tables
	Publish PublishConfig `yaml:"publish"`

	// Telemetry: OpenTelemetry exporter wiring
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type RunConfig struct {
	FlushEvery int    `yaml:"flush_every" validate:"min=1"`                              // rows between sink flushes
	LogLevel   string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"` // e.g. info
	LogJSON    bool   `yaml:"log_json"`                                                  // JSON lines instead of text
}

type DirectionConfig struct {
	Strategy   string `yaml:"strategy" validate:"oneof=measure estimate"` // how second stages are costed
	MaxSamples int    `yaml:"max_samples" validate:"min=1"`               // chains profiled per run
	BudgetsMB  []int  `yaml:"budgets_mb" validate:"omitempty,dive,gt=0"`  // headroom thresholds
}

type PublishConfig struct {
	Project   string `yaml:"project"`     // e.g. metapath-results
	Bucket    string `yaml:"bucket"`      // e.g. metapath-tables
	SAKeyPath string `yaml:"sa_key_path"` // service account JSON key
}

type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled"`
	TraceExporter  string  `yaml:"trace_exporter" validate:"omitempty,oneof=otlp jaeger stdout none"`
	MetricExporter string  `yaml:"metric_exporter" validate:"omitempty,oneof=prometheus stdout none"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	PrometheusPort int     `yaml:"prometheus_port" validate:"omitempty,gt=0,lte=65535"`
	SampleRate     float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Validate checks the loaded config against its struct tags.
//
// Description:
//
//	Performs validation using go-playground/validator tags. Called after
//	every load so a hand-edited config file fails fast with a field-level
//	error instead of surfacing as a confusing runtime default.
//
// Outputs:
//   - error: validator.ValidationErrors naming the offending fields, or nil.
func (c *MetapathConfig) Validate() error {
	return configValidate.Struct(c)
}

func DefaultConfig() MetapathConfig {
	return MetapathConfig{
		Run: RunConfig{
			FlushEvery: 50000,
			LogLevel:   "info",
			LogJSON:    false,
		},
		Direction: DirectionConfig{
			Strategy:   "measure",
			MaxSamples: 1000,
			BudgetsMB:  direction.DefaultBudgetsMB(),
		},
		Publish: PublishConfig{},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
			PrometheusPort: 9090,
			SampleRate:     1.0,
		},
	}
}
