// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package callsite

import "unicode/utf16"

// Position is a zero-based line/character cursor location.
//
// Character counts UTF-16 code units within the line, matching the LSP wire
// convention used by the host.
type Position struct {
	Line      int
	Character int
}

// Locate determines which formal parameter the cursor occupies inside an
// open call.
//
// Description:
//
//	Finds the innermost unclosed open parenthesis before the cursor,
//	decomposes the argument list typed so far, and maps the in-progress
//	token to an index into params.
//
// Inputs:
//
//	source - Document text, at least up to the cursor.
//	pos - Zero-based cursor position (UTF-16 character offsets).
//	params - Declared parameters of the callable, in order.
//
// Outputs:
//
//	int - Active parameter index in [0, len(params)-1] when params is
//	      non-empty; 0 otherwise.
//
// The function is pure and never fails: malformed input degrades to the
// best-effort index accumulated so far.
func Locate(source string, pos Position, params []Param) int {
	offset := ByteOffset(source, pos)
	span, _, ok := OpenCallSpan(source, offset)
	if !ok {
		return sentinelIndex
	}
	return LocateInSpan(span, params)
}

// sentinelIndex is returned when no better answer exists: no enclosing
// call, or an empty parameter list.
const sentinelIndex = 0

// LocateInSpan is Locate for a pre-extracted span, the text between the
// call's open parenthesis and the cursor.
//
// Collaborators that already know the open-paren offset (the tree-sitter
// engine) call this directly to keep the scan proportional to the span.
func LocateInSpan(span string, params []Param) int {
	if len(params) == 0 {
		return sentinelIndex
	}

	cs := Split(span)

	if cs.CurrentIsKeyword {
		for i, p := range params {
			if p.Name == cs.CurrentName {
				return i
			}
		}
		// Unknown keyword name: fall through to the positional rule.
	}

	return positionalIndex(cs.Positional(), params)
}

// positionalIndex maps the count of completed positional arguments to a
// parameter index, honoring variadic absorption and clamping.
func positionalIndex(count int, params []Param) int {
	if vi := VariadicIndex(params); vi >= 0 && count >= vi {
		// Every positional argument at or past the variadic parameter
		// fills the variadic parameter itself.
		return vi
	}
	if count >= len(params) {
		return len(params) - 1
	}
	return count
}

// ByteOffset converts a Position into a byte offset into source.
//
// Out-of-range lines or characters clamp to the nearest valid offset; the
// locator must tolerate positions the editor sends a beat ahead of the
// buffered text. The document layer shares this conversion so every
// consumer agrees on where a position lands.
func ByteOffset(source string, pos Position) int {
	lineStart := 0
	for l := 0; l < pos.Line; l++ {
		next := indexNewline(source, lineStart)
		if next < 0 {
			return len(source)
		}
		lineStart = next + 1
	}

	lineEnd := indexNewline(source, lineStart)
	if lineEnd < 0 {
		lineEnd = len(source)
	}
	line := source[lineStart:lineEnd]

	// Walk the line rune by rune, spending one or two UTF-16 units per rune.
	units := 0
	for i, r := range line {
		if units >= pos.Character {
			return lineStart + i
		}
		units += len(utf16.Encode([]rune{r}))
	}
	return lineEnd
}

// indexNewline returns the offset of the next \n at or after from, or -1.
func indexNewline(s string, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}
