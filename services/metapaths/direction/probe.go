// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package direction

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// MemoryProbe reports the process's current resident memory. Profiling
// takes a reading after each direction's evaluation so callers can relate
// intermediate sizes to real footprint. Tests inject fakes.
type MemoryProbe interface {
	ResidentBytes() (uint64, error)
}

// RuntimeProbe reads the Go heap via runtime.ReadMemStats. It sees only
// allocator-managed memory, which understates the process footprint but
// needs no OS support.
type RuntimeProbe struct{}

func (RuntimeProbe) ResidentBytes() (uint64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse, nil
}

// RusageProbe reads the process max RSS via getrusage(2). The reading is a
// high-water mark, not an instantaneous value.
type RusageProbe struct{}

func (RusageProbe) ResidentBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	// Linux reports ru_maxrss in kilobytes.
	return uint64(ru.Maxrss) * 1024, nil
}
