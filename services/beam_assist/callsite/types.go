// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package callsite maps a cursor inside an open Python call to the formal
// parameter it is currently filling.
//
// The package operates on raw source text only. It never resolves which
// callable is being invoked; the caller supplies the declared parameter
// list and callsite answers the single question "which parameter does the
// cursor occupy". Scanning is bounded and error tolerant: malformed or
// truncated argument lists degrade to a best-effort index, never an error.
package callsite

// ArgumentKind classifies a completed argument token.
type ArgumentKind int

const (
	// ArgPositional is a plain positional argument.
	ArgPositional ArgumentKind = iota

	// ArgKeyword is a name=value argument.
	ArgKeyword
)

// Argument is one completed argument token before the cursor.
type Argument struct {
	// Kind of the argument (positional or keyword).
	Kind ArgumentKind

	// Name is the keyword name for ArgKeyword, empty otherwise.
	Name string

	// Text is the raw token text with surrounding whitespace trimmed.
	Text string
}

// Param is one formal parameter of the target callable.
//
// Variadic marks a *args-style parameter. Once positional arguments reach a
// variadic parameter, every further positional argument maps to its index.
type Param struct {
	Name     string
	Variadic bool
}

// VariadicIndex returns the index of the first variadic parameter, or -1.
func VariadicIndex(params []Param) int {
	for i, p := range params {
		if p.Variadic {
			return i
		}
	}
	return -1
}

// Names returns the parameter names in declaration order.
func Names(params []Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// CallSite is the decomposed argument list of an open call up to the cursor.
type CallSite struct {
	// Args are the completed argument tokens, in source order.
	Args []Argument

	// Current is the in-progress token after the last top-level comma.
	// May be empty (cursor right after a comma or the open paren).
	Current string

	// CurrentName is the keyword name being typed in the current token,
	// set only when CurrentIsKeyword is true.
	CurrentName string

	// CurrentIsKeyword reports whether the current token contains a
	// top-level = that is not part of a comparison operator.
	CurrentIsKeyword bool
}

// Positional returns the number of completed positional arguments.
func (c *CallSite) Positional() int {
	n := 0
	for _, a := range c.Args {
		if a.Kind == ArgPositional {
			n++
		}
	}
	return n
}
