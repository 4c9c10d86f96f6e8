// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package estimate

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BucketEstimate is one ladder row of a runtime projection.
type BucketEstimate struct {
	Bucket     SizeBucket
	Population int64

	// Samples counts the measurements backing AvgSeconds.
	Samples int

	// AvgSeconds and ProjectedSeconds are meaningful only when Known.
	AvgSeconds       float64
	ProjectedSeconds float64

	// Known is false when the bucket has population but no measurements.
	// Such buckets are never estimated by interpolation; their cost is
	// simply unknown.
	Known bool
}

// Projection extrapolates census populations with measured averages.
type Projection struct {
	// Buckets holds one row per populated bucket, in ladder order.
	Buckets []BucketEstimate

	// TotalChains is the census total.
	TotalChains int64

	// KnownSeconds sums projected cost across known buckets only.
	KnownSeconds float64

	// UnknownBuckets counts populated buckets without measurements. A
	// nonzero value means KnownSeconds is a lower bound.
	UnknownBuckets int
}

// Project joins a census with benchmark measurements: per populated
// bucket, average measured total time scaled by population.
func Project(census *Census, measurements []Measurement) Projection {
	var sums [numBuckets]float64
	var counts [numBuckets]int
	for _, m := range measurements {
		if int(m.Bucket) >= numBuckets {
			continue
		}
		sums[m.Bucket] += m.TotalTime.Seconds()
		counts[m.Bucket]++
	}

	projection := Projection{TotalChains: census.Total()}
	for _, b := range Buckets() {
		population := census.Population(b)
		if population == 0 {
			continue
		}
		row := BucketEstimate{Bucket: b, Population: population, Samples: counts[b]}
		if counts[b] > 0 {
			row.Known = true
			row.AvgSeconds = sums[b] / float64(counts[b])
			row.ProjectedSeconds = row.AvgSeconds * float64(population)
			projection.KnownSeconds += row.ProjectedSeconds
		} else {
			projection.UnknownBuckets++
		}
		projection.Buckets = append(projection.Buckets, row)
	}
	return projection
}

const measurementFields = 9

// LoadMeasurements reads a benchmark results TSV written by the sample
// runner. The header row is discarded; malformed rows are skipped, with
// warn (when non-nil) receiving the line number and reason.
func LoadMeasurements(path string, warn func(line int, reason string)) ([]Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening benchmark results: %w", err)
	}
	defer f.Close()

	skip := func(line int, reason string) {
		if warn != nil {
			warn(line, reason)
		}
	}

	var measurements []Measurement
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		m, reason := parseMeasurementRow(text)
		if reason != "" {
			skip(line, reason)
			continue
		}
		measurements = append(measurements, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading benchmark results: %w", err)
	}
	return measurements, nil
}

func parseMeasurementRow(text string) (Measurement, string) {
	parts := strings.Split(text, "\t")
	if len(parts) < measurementFields {
		return Measurement{}, fmt.Sprintf("expected %d fields, got %d", measurementFields, len(parts))
	}

	bucket, err := ParseBucket(parts[0])
	if err != nil {
		return Measurement{}, err.Error()
	}

	ints := make([]int, 3)
	for i, field := range parts[2:5] {
		v, err := strconv.Atoi(field)
		if err != nil {
			return Measurement{}, fmt.Sprintf("bad count %q", field)
		}
		ints[i] = v
	}

	durations := make([]time.Duration, 4)
	for i, field := range parts[5:9] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Measurement{}, fmt.Sprintf("bad time %q", field)
		}
		durations[i] = time.Duration(v * float64(time.Second))
	}

	return Measurement{
		Bucket:         bucket,
		Metapath:       parts[1],
		ABEdges:        ints[0],
		ABCEdges:       ints[1],
		NumComparisons: ints[2],
		ABTime:         durations[0],
		ABCTime:        durations[1],
		ComparisonTime: durations[2],
		TotalTime:      durations[3],
	}, ""
}
