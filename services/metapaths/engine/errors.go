// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine runs the metapath pipeline end to end: ingest the KGX
// files, resolve node types against the hierarchy, build the relation
// matrices, then drive the analyses and stream their tables.
//
// Every run carries a generated run ID on its logs and spans so
// overlapping invocations can be told apart in shared telemetry.
//
// Thread Safety:
//
//	An Engine is safe to share, but each operation expects exclusive
//	use of the writers passed to it.
package engine

import "errors"

var (
	// ErrNilSink indicates a required output writer was not provided.
	ErrNilSink = errors.New("required output writer is nil")

	// ErrNoNodes indicates the inputs name no nodes file.
	ErrNoNodes = errors.New("nodes path is required")

	// ErrNoEdges indicates the inputs name no edges file.
	ErrNoEdges = errors.New("edges path is required")
)
