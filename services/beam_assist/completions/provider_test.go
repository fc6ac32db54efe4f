// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package completions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/engine"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
)

func testStore() *namespace.Store {
	store := namespace.NewStore()
	store.Replace(namespace.Mapping{
		"dev": {
			Name: "dev",
			Kind: namespace.KindNamespace,
			Items: map[string]*namespace.Object{
				"samx": {
					Name:    "samx",
					Kind:    namespace.KindDevice,
					Enabled: true,
					Doc:     "Sample stage x motor.",
					Members: map[string]*namespace.Object{
						"velocity": {Name: "velocity", Kind: namespace.KindSignal, Enabled: true},
						"limits":   {Name: "limits", Kind: namespace.KindSignal, Enabled: true},
					},
				},
				"samy":   {Name: "samy", Kind: namespace.KindDevice, Enabled: true},
				"parked": {Name: "parked", Kind: namespace.KindDevice, Enabled: false},
			},
		},
		"scans": {
			Name: "scans",
			Kind: namespace.KindNamespace,
			Members: map[string]*namespace.Object{
				"line_scan": {
					Name:      "line_scan",
					Kind:      namespace.KindCallable,
					Signature: "def line_scan(*args, exp_time=0)",
					Doc:       "Scan a motor over a line.",
				},
			},
		},
	})
	return store
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestProvider_Complete(t *testing.T) {
	ctx := context.Background()
	settings := config.DefaultConfig().Completions
	p := NewProvider(testStore(), engine.New(), settings)

	t.Run("members of a resolved base", func(t *testing.T) {
		src := "dev."
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		assert.ElementsMatch(t, []string{"samx", "samy", "parked"}, labels(list.Items))
	})

	t.Run("partial filters members", func(t *testing.T) {
		src := "dev.samx.vel"
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		require.Len(t, list.Items, 1)
		assert.Equal(t, "velocity", list.Items[0].Label)
		assert.Equal(t, protocol.KindField, list.Items[0].Kind)
	})

	t.Run("empty base completes the root", func(t *testing.T) {
		src := "sca"
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		require.Len(t, list.Items, 1)
		assert.Equal(t, "scans", list.Items[0].Label)
		assert.Equal(t, protocol.KindModule, list.Items[0].Kind)
	})

	t.Run("disabled devices rank last", func(t *testing.T) {
		src := "dev."
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		require.Len(t, list.Items, 3)
		assert.Equal(t, "parked", list.Items[2].Label)
		assert.Equal(t, "disabled", list.Items[2].Detail)
	})

	t.Run("absent base yields empty list", func(t *testing.T) {
		src := "ghost."
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		assert.Empty(t, list.Items)
	})

	t.Run("engine-answered positions stay silent", func(t *testing.T) {
		src := "dev."
		list := p.Complete(ctx, Request{Content: src, Offset: len(src), EngineAnswered: true})
		assert.Empty(t, list.Items)
	})

	t.Run("call results are never completed", func(t *testing.T) {
		// The namespace cannot name the value a call returns, so a chain
		// hanging off a call or subscript result gets no suggestions.
		for _, src := range []string{"get_device().", "get_device().sa", "rows[0]."} {
			list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
			assert.Empty(t, list.Items, "at %q", src)
		}
	})

	t.Run("callable detail shows signature", func(t *testing.T) {
		src := "scans.li"
		list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
		require.Len(t, list.Items, 1)
		assert.Equal(t, "def line_scan(*args, exp_time=0)", list.Items[0].Detail)
		assert.Equal(t, protocol.KindFunction, list.Items[0].Kind)
	})
}

func TestProvider_Fuzzy(t *testing.T) {
	ctx := context.Background()

	fuzzy := config.Completions{Fuzzy: true}
	p := NewProvider(testStore(), engine.New(), fuzzy)
	src := "dev.vlct"
	list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
	assert.Empty(t, list.Items, "fuzzy match must not cross path components")

	src = "dev.samx.vlct"
	list = p.Complete(ctx, Request{Content: src, Offset: len(src)})
	require.Len(t, list.Items, 1)
	assert.Equal(t, "velocity", list.Items[0].Label)

	strict := config.Completions{Fuzzy: false}
	p = NewProvider(testStore(), engine.New(), strict)
	list = p.Complete(ctx, Request{Content: src, Offset: len(src)})
	assert.Empty(t, list.Items, "prefix matching rejects subsequences")
}

func TestProvider_EagerDocs(t *testing.T) {
	ctx := context.Background()

	eager := config.Completions{Eager: true, ResolveAtMost: 1}
	p := NewProvider(testStore(), engine.New(), eager)
	src := "dev.sam"
	list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
	require.Len(t, list.Items, 2)

	// Only the first item gets documentation under the resolve cap.
	assert.Equal(t, "Sample stage x motor.", list.Items[0].Documentation)
	assert.Empty(t, list.Items[1].Documentation)

	lazy := config.Completions{Eager: false}
	p = NewProvider(testStore(), engine.New(), lazy)
	list = p.Complete(ctx, Request{Content: src, Offset: len(src)})
	for _, item := range list.Items {
		assert.Empty(t, item.Documentation)
	}
}

func TestProvider_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(testStore(), engine.New(), config.Completions{Fuzzy: false})

	src := "dev.samx.vlct"
	list := p.Complete(ctx, Request{Content: src, Offset: len(src)})
	require.Empty(t, list.Items)

	// A config reload swaps the settings without rebuilding the provider.
	p.UpdateSettings(config.Completions{Fuzzy: true})
	list = p.Complete(ctx, Request{Content: src, Offset: len(src)})
	require.Len(t, list.Items, 1)
	assert.Equal(t, "velocity", list.Items[0].Label)
}

func TestProvider_EmptySnapshot(t *testing.T) {
	p := NewProvider(namespace.NewStore(), engine.New(), config.Completions{})
	src := "dev."
	list := p.Complete(context.Background(), Request{Content: src, Offset: len(src)})
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
}
