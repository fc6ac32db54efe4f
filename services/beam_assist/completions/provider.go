// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package completions suggests names from the live runtime namespace.
//
// The provider is strictly additive: when the static analysis layer already
// produced completions for a position, the runtime namespace stays silent so
// the two sources never compete for the same prefix.
package completions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/engine"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
)

// Provider builds completion lists from a namespace snapshot.
//
// Thread Safety:
//
//	Safe for concurrent use. The store publishes immutable snapshots, and
//	settings swaps are guarded by a read-write lock.
type Provider struct {
	store  *namespace.Store
	engine *engine.Engine

	mu       sync.RWMutex
	settings config.Completions
}

// NewProvider creates a completion provider over the given namespace store.
func NewProvider(store *namespace.Store, eng *engine.Engine, settings config.Completions) *Provider {
	return &Provider{store: store, engine: eng, settings: settings}
}

// UpdateSettings swaps the matching and documentation settings. The config
// watcher calls this on reload so a changed file takes effect without a
// restart; in-flight requests finish on the settings they started with.
func (p *Provider) UpdateSettings(settings config.Completions) {
	p.mu.Lock()
	p.settings = settings
	p.mu.Unlock()
}

// Request describes one completion query.
type Request struct {
	// Content is the full document text.
	Content string

	// Offset is the byte offset of the cursor within Content.
	Offset int

	// EngineAnswered is set when a baseline completion engine already
	// produced results for this position, silencing the namespace so the
	// two sources never compete for the same prefix. The standalone stdio
	// server has no such engine and leaves this false; hosts that embed
	// the provider next to one set it per request.
	EngineAnswered bool
}

// Complete returns namespace completions for the request.
//
// Description:
//
//	Splits the dotted prefix under the cursor into a base path and a
//	partial component, resolves the base against the current snapshot,
//	and filters that object's members against the partial. An empty
//	base completes against the namespace root. Absent paths and an
//	empty snapshot produce an empty list, never an error.
//
// Outputs:
//
//	protocol.CompletionList - Matching items, possibly empty.
func (p *Provider) Complete(ctx context.Context, req Request) protocol.CompletionList {
	list := protocol.CompletionList{Items: []protocol.CompletionItem{}}
	if req.EngineAnswered {
		return list
	}

	root := p.store.Snapshot()
	if len(root) == 0 {
		return list
	}

	p.mu.RLock()
	settings := p.settings
	p.mu.RUnlock()

	base, partial, ok := p.engine.DottedPrefix([]byte(req.Content), req.Offset)
	if !ok {
		// The name hangs off a call or subscript result; suggesting the
		// namespace root there would be noise.
		return list
	}

	var names []string
	var parent *namespace.Object
	if base == "" {
		names = make([]string, 0, len(root))
		for name := range root {
			names = append(names, name)
		}
	} else {
		obj, ok := namespace.Resolve(base, root)
		if !ok {
			return list
		}
		parent = obj
		names = obj.MemberNames()
	}

	type match struct {
		item protocol.CompletionItem
		obj  *namespace.Object
	}
	matched := make([]match, 0, len(names))
	for _, name := range names {
		if !matchesName(settings, name, partial) {
			continue
		}
		child := p.child(root, parent, name)
		matched = append(matched, match{item: p.item(name, child), obj: child})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].item.SortText != matched[j].item.SortText {
			return matched[i].item.SortText < matched[j].item.SortText
		}
		return matched[i].item.Label < matched[j].item.Label
	})

	docBudget := len(matched)
	if !settings.Eager {
		docBudget = 0
	} else if settings.ResolveAtMost > 0 && settings.ResolveAtMost < docBudget {
		docBudget = settings.ResolveAtMost
	}

	for i, m := range matched {
		if i < docBudget && m.obj != nil && m.obj.Doc != "" {
			m.item.Documentation = m.obj.Doc
		}
		list.Items = append(list.Items, m.item)
	}
	return list
}

// matchesName applies prefix or fuzzy subsequence matching per the settings.
func matchesName(settings config.Completions, name, partial string) bool {
	if partial == "" {
		return true
	}
	if settings.Fuzzy {
		return subsequence(strings.ToLower(partial), strings.ToLower(name))
	}
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(partial))
}

// subsequence reports whether needle's bytes appear in order within hay.
func subsequence(needle, hay string) bool {
	i := 0
	for j := 0; i < len(needle) && j < len(hay); j++ {
		if needle[i] == hay[j] {
			i++
		}
	}
	return i == len(needle)
}

// child resolves the named member so kind and docs can be attached. Either
// lookup may come back empty for names the snapshot only lists.
func (p *Provider) child(root namespace.Mapping, parent *namespace.Object, name string) *namespace.Object {
	if parent == nil {
		return root[name]
	}
	if obj, ok := parent.Item(name); ok {
		return obj
	}
	if obj, ok := parent.LookupName(name); ok {
		return obj
	}
	return nil
}

// item builds the protocol item. Disabled devices sort after everything
// else so a parked motor never outranks a live one.
func (p *Provider) item(name string, obj *namespace.Object) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:    name,
		Kind:     protocol.KindVariable,
		SortText: fmt.Sprintf("1-%s", name),
	}
	if obj == nil {
		return item
	}

	switch obj.Kind {
	case namespace.KindNamespace:
		item.Kind = protocol.KindModule
	case namespace.KindDevice:
		item.Kind = protocol.KindClass
	case namespace.KindSignal:
		item.Kind = protocol.KindField
	case namespace.KindCallable:
		item.Kind = protocol.KindFunction
	case namespace.KindProperty:
		item.Kind = protocol.KindProperty
	}

	if obj.Kind == namespace.KindDevice && !obj.Enabled {
		item.SortText = fmt.Sprintf("2-%s", name)
		item.Detail = "disabled"
	} else if obj.Signature != "" {
		item.Detail = obj.Signature
	}
	return item
}
