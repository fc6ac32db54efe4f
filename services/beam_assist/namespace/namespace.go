// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package namespace models the live object graph of a beamline-control
// runtime: devices with their signals, scan callables, and the client root.
//
// The graph is a snapshot published by the runtime client whenever the
// control server announces a change. Readers (completion and signature
// providers) resolve dotted paths against the current snapshot; a name that
// vanished between snapshots is simply absent, never an error.
package namespace

import (
	"sync"
	"time"
)

// ObjectKind classifies a runtime object for completion item mapping.
type ObjectKind string

const (
	// KindNamespace is a pure container (the client root, the device
	// manager, the scan registry).
	KindNamespace ObjectKind = "namespace"

	// KindDevice is a positioner or detector exposed by the device manager.
	KindDevice ObjectKind = "device"

	// KindSignal is a sub-signal of a device (setpoint, readback, limits).
	KindSignal ObjectKind = "signal"

	// KindCallable is a scan or utility function with a declared signature.
	KindCallable ObjectKind = "callable"

	// KindProperty is a plain attribute with no members of its own.
	KindProperty ObjectKind = "property"
)

// Object is one node of the runtime object graph.
//
// Members holds attribute-style children (device.velocity), Items holds
// container-style children keyed by name (dev["samx"]). A device manager has
// Items, a device has Members, the scan registry has both faces for the
// same children.
type Object struct {
	// Name is the object's own name, the last path component.
	Name string `json:"name"`

	// Kind drives completion item kinds and filtering.
	Kind ObjectKind `json:"kind"`

	// Doc is the runtime-provided documentation string, may be empty.
	Doc string `json:"doc,omitempty"`

	// Signature is the declared Python signature for callables, in
	// "def name(a, b=1, *args)" or "(a, b=1, *args)" form. Empty for
	// non-callables.
	Signature string `json:"signature,omitempty"`

	// Enabled mirrors the runtime's user-access flag for devices.
	// Disabled devices still resolve but are ranked last in completions.
	Enabled bool `json:"enabled"`

	// Members are attribute-style children.
	Members map[string]*Object `json:"members,omitempty"`

	// Items are container-style children.
	Items map[string]*Object `json:"items,omitempty"`
}

// LookupName implements member-style lookup.
func (o *Object) LookupName(name string) (*Object, bool) {
	if o == nil || o.Members == nil {
		return nil, false
	}
	child, ok := o.Members[name]
	return child, ok
}

// Item implements container-style lookup.
func (o *Object) Item(name string) (*Object, bool) {
	if o == nil || o.Items == nil {
		return nil, false
	}
	child, ok := o.Items[name]
	return child, ok
}

// MemberNames returns the names reachable from this object, both member
// and item style, deduplicated. Order is unspecified.
func (o *Object) MemberNames() []string {
	if o == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(o.Members)+len(o.Items))
	names := make([]string, 0, len(o.Members)+len(o.Items))
	for name := range o.Members {
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for name := range o.Items {
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// Mapping is a root namespace: top-level names to live objects.
type Mapping map[string]*Object

// LookupName implements keyed-container lookup for the root mapping.
func (m Mapping) LookupName(name string) (*Object, bool) {
	obj, ok := m[name]
	return obj, ok
}

// Store is the thread-safe holder of the current namespace snapshot.
//
// The runtime client replaces the snapshot wholesale on every namespace
// message; readers take the current Mapping and walk it without further
// locking, since a published Mapping is never mutated afterward.
type Store struct {
	mu        sync.RWMutex
	root      Mapping
	version   uint64
	updatedAt time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{root: Mapping{}}
}

// Snapshot returns the current root mapping.
//
// The returned Mapping must be treated as read-only.
func (s *Store) Snapshot() Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Replace installs a new snapshot and bumps the version counter.
func (s *Store) Replace(root Mapping) {
	if root == nil {
		root = Mapping{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.version++
	s.updatedAt = time.Now()
}

// Version returns the snapshot version, starting at 0 for the empty store.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// UpdatedAt returns when the snapshot was last replaced.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
