// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package namespace

import "strings"

// Lookuper resolves a single name to an object.
//
// Two variants exist: keyed-container lookup (Mapping, Object.Item) and
// named-member lookup (Object.LookupName). Resolve tries them in sequence
// per path component, which mirrors how the runtime exposes devices both as
// attributes and as dictionary entries.
type Lookuper interface {
	LookupName(name string) (*Object, bool)
}

// Resolve walks a dot-separated path against the root mapping.
//
// Description:
//
//	The first component is looked up by key in root. Each subsequent
//	component is looked up on the previous result, container-style first,
//	member-style second.
//
// Inputs:
//
//	path - Dotted path such as "dev.samx.velocity" or "scans.line_scan".
//	root - Root mapping of top-level names. May be nil.
//
// Outputs:
//
//	*Object - The resolved object, nil when absent.
//	bool - False when any component is missing at any step.
//
// Resolve never fails hard: empty paths, nil roots and dangling components
// all report absence. The root may be mutated externally between calls; a
// component that disappeared is treated as absent at lookup time.
func Resolve(path string, root Mapping) (*Object, bool) {
	if root == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, false
	}

	obj, ok := root.LookupName(parts[0])
	if !ok {
		return nil, false
	}

	for _, part := range parts[1:] {
		if part == "" {
			return nil, false
		}
		obj, ok = lookupChild(obj, part)
		if !ok {
			return nil, false
		}
	}
	return obj, true
}

// lookupChild tries the two lookup variants in sequence.
func lookupChild(obj *Object, name string) (*Object, bool) {
	if child, ok := obj.Item(name); ok {
		return child, ok
	}
	return obj.LookupName(name)
}
