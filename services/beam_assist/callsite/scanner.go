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

import "strings"

// maxScanWindow bounds how far back OpenCallSpan looks for the enclosing
// open parenthesis. Keeps scanning proportional to the call prefix rather
// than the whole document.
const maxScanWindow = 4096

// textState tracks string-literal and bracket state during a left-to-right
// scan of Python source.
//
// The tracker is deliberately forgiving: an unmatched closing bracket clamps
// depth at zero instead of failing, so truncated or syntactically broken
// spans still produce usable token boundaries.
type textState struct {
	depth  int  // nesting depth of (, [ and {
	quote  byte // active string quote, 0 when outside a string
	triple bool // active string is triple-quoted
	escape bool // previous byte was a backslash inside a string
}

// inString reports whether the scanner is inside a string literal.
func (s *textState) inString() bool { return s.quote != 0 }

// topLevel reports whether the scanner is at argument level: outside any
// string and outside any nested bracket.
func (s *textState) topLevel() bool { return s.depth == 0 && s.quote == 0 }

// advance consumes span[i] and returns the number of bytes consumed
// (1, or 3 when a triple quote opens or closes).
func (s *textState) advance(span string, i int) int {
	b := span[i]

	if s.quote != 0 {
		if s.escape {
			s.escape = false
			return 1
		}
		switch {
		case b == '\\':
			s.escape = true
		case b == s.quote:
			if s.triple {
				if strings.HasPrefix(span[i:], strings.Repeat(string(s.quote), 3)) {
					s.quote = 0
					s.triple = false
					return 3
				}
				return 1
			}
			s.quote = 0
		}
		return 1
	}

	switch b {
	case '\'', '"':
		s.quote = b
		if strings.HasPrefix(span[i:], strings.Repeat(string(b), 3)) {
			s.triple = true
			return 3
		}
	case '(', '[', '{':
		s.depth++
	case ')', ']', '}':
		if s.depth > 0 {
			s.depth--
		}
	}
	return 1
}

// Split decomposes the text between an open parenthesis and the cursor into
// completed argument tokens plus the in-progress token.
//
// Splitting happens only on top-level commas: commas nested in brackets or
// inside string literals belong to the surrounding token. Each completed
// token is classified as positional or keyword, and the in-progress token is
// inspected for a keyword name being typed.
//
// Malformed spans (unbalanced delimiters, unterminated strings) are scanned
// as far as possible; the accumulated tokens are returned as the best-effort
// result.
func Split(span string) *CallSite {
	cs := &CallSite{}
	var st textState
	start := 0

	for i := 0; i < len(span); {
		if span[i] == ',' && st.topLevel() {
			cs.Args = append(cs.Args, classify(span[start:i]))
			start = i + 1
			i++
			continue
		}
		i += st.advance(span, i)
	}

	cs.Current = strings.TrimLeft(span[start:], " \t\n")
	if name, ok := keywordName(cs.Current); ok {
		cs.CurrentIsKeyword = true
		cs.CurrentName = name
	}
	return cs
}

// classify turns a completed token into an Argument.
func classify(token string) Argument {
	token = strings.TrimSpace(token)
	if name, ok := keywordName(token); ok {
		return Argument{Kind: ArgKeyword, Name: name, Text: token}
	}
	return Argument{Kind: ArgPositional, Text: token}
}

// keywordName reports whether token carries a top-level keyword assignment
// and returns the name to the left of the =.
//
// A = counts only when it sits at bracket depth zero outside strings, is not
// doubled (==), and is not the second half of a comparison, walrus or
// augmented operator. The extracted name must additionally look like a
// Python identifier, which rules out expressions such as lambda defaults.
func keywordName(token string) (string, bool) {
	var st textState
	for i := 0; i < len(token); {
		if token[i] == '=' && st.topLevel() {
			if i+1 < len(token) && token[i+1] == '=' {
				i += 2
				continue
			}
			if i > 0 && strings.IndexByte("=!<>:+-*/%&|^@", token[i-1]) >= 0 {
				i++
				continue
			}
			name := strings.TrimSpace(token[:i])
			if isIdentifier(name) {
				return name, true
			}
			return "", false
		}
		i += st.advance(token, i)
	}
	return "", false
}

// isIdentifier reports whether s is a plausible Python identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r > 127:
			// Non-ASCII identifiers are legal Python; accept them.
		default:
			return false
		}
	}
	return true
}

// OpenCallSpan extracts the text between the innermost unclosed open
// parenthesis before offset and the offset itself.
//
// The scan starts at most maxScanWindow bytes before the cursor, aligned to
// a line start, and walks forward with full string and bracket awareness.
// Returns ok=false when no open call encloses the offset.
func OpenCallSpan(text string, offset int) (span string, open int, ok bool) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}

	start := offset - maxScanWindow
	if start < 0 {
		start = 0
	}
	// Align to a line boundary so the state machine starts outside any
	// single-line string.
	if idx := strings.LastIndexByte(text[start:offset], '\n'); start > 0 && idx >= 0 {
		start += idx + 1
	}

	var st textState
	var opens []int  // offsets of unclosed open brackets
	var kinds []byte // the bracket byte at each offset
	for i := start; i < offset; {
		b := text[i]
		if !st.inString() {
			switch b {
			case '(', '[', '{':
				opens = append(opens, i)
				kinds = append(kinds, b)
			case ')', ']', '}':
				if len(opens) > 0 {
					opens = opens[:len(opens)-1]
					kinds = kinds[:len(kinds)-1]
				}
			}
		}
		i += st.advance(text, i)
	}

	// Innermost unclosed round paren wins; an unclosed [ or { between it and
	// the cursor means the cursor is inside a literal, not the call itself,
	// but Split handles that via depth tracking, so only the ( matters here.
	for i := len(opens) - 1; i >= 0; i-- {
		if kinds[i] == '(' {
			return text[opens[i]+1 : offset], opens[i], true
		}
	}
	return "", -1, false
}
