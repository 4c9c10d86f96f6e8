// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package output emits the analysis tables as tab-separated files.
//
// Every table is append-only with a single header row. TableWriter
// handles buffering and periodic flushing; the typed column helpers pin
// each table's column order so downstream loaders and the historical
// tooling keep parsing the files. Positive infinity renders as "inf"
// and unmeasured runtime buckets render as "unknown".
package output

import "errors"

// ErrColumnMismatch indicates a row with a different width than the
// table's header.
var ErrColumnMismatch = errors.New("row width does not match table columns")
