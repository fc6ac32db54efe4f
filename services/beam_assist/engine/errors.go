// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "errors"

// Common errors for the engine package.
var (
	// ErrDocumentTooLarge is returned when a document exceeds the size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrInvalidContent is returned when a document is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrNoCallSite is returned when no open call encloses the cursor.
	ErrNoCallSite = errors.New("no open call at cursor")

	// ErrInvalidSignature is returned for signature strings that cannot be
	// shaped into a parseable Python definition.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrParseFailure is returned when tree-sitter fails outright.
	ErrParseFailure = errors.New("parse failed")
)
