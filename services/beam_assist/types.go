// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package beam_assist

import (
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	// Error is a human-readable description.
	Error string `json:"error"`

	// Code is a machine-readable error code.
	Code string `json:"code"`
}

// HealthResponse is the response for GET health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is the response for GET ready.
type ReadyResponse struct {
	// Ready is true once a namespace snapshot has been received.
	Ready bool `json:"ready"`

	// SnapshotVersion is the current namespace snapshot counter.
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// NamespaceResponse is the response for GET namespace.
type NamespaceResponse struct {
	// Version is the snapshot counter, 0 before the first update.
	Version uint64 `json:"version"`

	// UpdatedAtMilli is when the snapshot was last replaced, 0 if never.
	UpdatedAtMilli int64 `json:"updated_at_ms"`

	// Names are the top-level namespace names, sorted.
	Names []string `json:"names"`
}

// ResolveResponse is the response for GET namespace/resolve.
type ResolveResponse struct {
	// Found is false when any path component is absent.
	Found bool `json:"found"`

	// Object is the resolved node, nil when Found is false.
	Object *namespace.Object `json:"object,omitempty"`
}

// CompleteRequest is the request body for POST complete.
type CompleteRequest struct {
	// Content is the document text. Required, may be empty only with
	// offset 0.
	Content string `json:"content"`

	// Offset is the cursor byte offset. Required.
	Offset int `json:"offset" binding:"min=0"`
}

// SignatureRequest is the request body for POST signature.
type SignatureRequest struct {
	// Content is the document text.
	Content string `json:"content"`

	// Offset is the cursor byte offset.
	Offset int `json:"offset" binding:"min=0"`
}

// SignatureResponse wraps signature help so an absent result is explicit.
type SignatureResponse struct {
	// Help is nil when the cursor is not inside a known open call.
	Help *protocol.SignatureHelp `json:"help"`
}
