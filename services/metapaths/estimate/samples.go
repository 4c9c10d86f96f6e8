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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

const samplesHeader = "bucket\tsrc_type1\tpred1\ttgt_type1\tdir1\t" +
	"src_type2\tpred2\ttgt_type2\tdir2\t" +
	"src_type3\tpred3\ttgt_type3\tdir3\tab_edges"

const samplesFields = 14

// WriteSamples persists a sample set as a headed TSV, one chain per row
// with its bucket and first-stage edge count.
func WriteSamples(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, samplesHeader); err != nil {
		return err
	}
	for _, s := range samples {
		mp := s.Metapath
		_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.Bucket,
			mp.E1.SourceType, mp.E1.Predicate, mp.E1.TargetType, mp.E1.Direction,
			mp.E2.SourceType, mp.E2.Predicate, mp.E2.TargetType, mp.E2.Direction,
			mp.E3.SourceType, mp.E3.Predicate, mp.E3.TargetType, mp.E3.Direction,
			s.ABEdges)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadSamples reads a sample TSV written by WriteSamples.
//
// Description:
//
//	The header row is discarded. Malformed rows (wrong field count,
//	unknown bucket or direction, non-numeric edge count, hops that do
//	not chain) are skipped; warn, when non-nil, receives the line number
//	and reason for each skip.
//
// Errors:
//
//	Only unreadable files fail the load.
func LoadSamples(path string, warn func(line int, reason string)) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening samples: %w", err)
	}
	defer f.Close()

	skip := func(line int, reason string) {
		if warn != nil {
			warn(line, reason)
		}
	}

	var samples []Sample
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
		sample, reason := parseSampleRow(text)
		if reason != "" {
			skip(line, reason)
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return samples, nil
}

func parseSampleRow(text string) (Sample, string) {
	parts := strings.Split(text, "\t")
	if len(parts) != samplesFields {
		return Sample{}, fmt.Sprintf("expected %d fields, got %d", samplesFields, len(parts))
	}

	bucket, err := ParseBucket(parts[0])
	if err != nil {
		return Sample{}, err.Error()
	}

	var keys [3]matrix.Key
	for hop := 0; hop < 3; hop++ {
		base := 1 + hop*4
		dir, err := matrix.ParseDirection(parts[base+3])
		if err != nil {
			return Sample{}, err.Error()
		}
		keys[hop] = matrix.Key{
			SourceType: parts[base],
			Predicate:  parts[base+1],
			TargetType: parts[base+2],
			Direction:  dir,
		}
	}

	mp, err := compose.NewMetapath(keys[0], keys[1], keys[2])
	if err != nil {
		return Sample{}, err.Error()
	}

	abEdges, err := strconv.Atoi(parts[samplesFields-1])
	if err != nil {
		return Sample{}, fmt.Sprintf("bad ab_edges %q", parts[samplesFields-1])
	}

	return Sample{Bucket: bucket, Metapath: mp, ABEdges: abEdges}, ""
}
