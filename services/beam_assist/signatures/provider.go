// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package signatures assembles textDocument/signatureHelp responses.
//
// Static analysis answers first: when the analysis layer already produced
// help for the position, the provider only recomputes the active parameter
// index against the live argument text. Otherwise it resolves the callee in
// the runtime namespace and renders the runtime-declared signature.
package signatures

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/callsite"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/engine"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
)

// Provider builds signature help from the runtime namespace.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Provider struct {
	store  *namespace.Store
	engine *engine.Engine
}

// NewProvider creates a signature help provider.
func NewProvider(store *namespace.Store, eng *engine.Engine) *Provider {
	return &Provider{store: store, engine: eng}
}

// Request describes one signature help query.
type Request struct {
	// Content is the full document text.
	Content string

	// Offset is the byte offset of the cursor within Content.
	Offset int

	// EngineHelp is the help a baseline engine produced for this position,
	// nil when it had no answer. The standalone stdio server has no such
	// engine and leaves this nil; hosts that embed the provider next to
	// one pass its result here so only the active index is recomputed.
	EngineHelp *protocol.SignatureHelp
}

// Help returns signature help for the request, or nil when no enclosing
// open call exists or the callee is unknown to the runtime.
//
// Description:
//
//	Locates the innermost open call around the cursor. When static help
//	is supplied, its active parameter is recomputed from the live
//	argument text and the help is returned otherwise untouched. When it
//	is not, the callee's dotted path is resolved against the current
//	namespace snapshot and its declared signature is parsed and
//	rendered. Both paths share the same argument locator, so the active
//	index agrees regardless of which source answered.
func (p *Provider) Help(ctx context.Context, req Request) *protocol.SignatureHelp {
	cc, err := p.engine.CallContext(ctx, []byte(req.Content), req.Offset)
	if err != nil {
		if !errors.Is(err, engine.ErrNoCallSite) {
			slog.Debug("signature help: call context failed", "error", err)
		}
		return nil
	}

	if req.EngineHelp != nil && len(req.EngineHelp.Signatures) > 0 {
		return p.reindex(ctx, req.EngineHelp, cc)
	}
	return p.fromRuntime(ctx, cc)
}

// reindex recomputes the active parameter of statically produced help
// against the live argument text.
func (p *Provider) reindex(ctx context.Context, help *protocol.SignatureHelp, cc *engine.CallContext) *protocol.SignatureHelp {
	active := clampIndex(help.ActiveSignature, len(help.Signatures))
	sig := help.Signatures[active]

	out := *help
	out.ActiveSignature = active

	params, receivers := p.paramsFromLabels(ctx, sig)
	// The rendered labels keep any receiver, so the located index shifts
	// past it to land on the label the client highlights.
	out.ActiveParameter = callsite.LocateInSpan(cc.Span, params) + receivers
	return &out
}

// paramsFromLabels rebuilds the locator's parameter model from rendered
// parameter labels, reporting how many leading receiver labels were
// excluded from it. Labels carry annotations and defaults, so each one is
// parsed rather than split on punctuation.
func (p *Provider) paramsFromLabels(ctx context.Context, sig protocol.SignatureInformation) ([]callsite.Param, int) {
	if len(sig.Parameters) == 0 {
		return nil, 0
	}
	labels := make([]string, len(sig.Parameters))
	for i, param := range sig.Parameters {
		labels[i] = param.Label
	}
	parsed, err := p.engine.ParseSignature(ctx, "("+strings.Join(labels, ", ")+")")
	if err != nil {
		slog.Debug("signature help: label parse failed", "error", err)
		return nil, 0
	}
	return parsed.CallParams(), parsed.Receivers()
}

// fromRuntime resolves the callee in the namespace and renders its
// declared signature.
func (p *Provider) fromRuntime(ctx context.Context, cc *engine.CallContext) *protocol.SignatureHelp {
	if cc.Callee == "" {
		return nil
	}
	obj, ok := namespace.Resolve(cc.Callee, p.store.Snapshot())
	if !ok || obj.Signature == "" {
		return nil
	}

	parsed, err := p.engine.ParseSignature(ctx, obj.Signature)
	if err != nil {
		slog.Debug("signature help: runtime signature unparseable",
			"callee", cc.Callee, "error", err)
		return nil
	}
	if parsed.Name == "" {
		parsed.Name = obj.Name
	}
	// Method signatures arrive with the receiver the caller never passes.
	// Dropping it here keeps the rendered labels and the located index on
	// the same list.
	parsed.DropReceiver()

	info := protocol.SignatureInformation{
		Label:         parsed.Label(),
		Documentation: obj.Doc,
	}
	for _, param := range parsed.Parameters {
		info.Parameters = append(info.Parameters, protocol.ParameterInformation{
			Label: param.Label(),
		})
	}

	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{info},
		ActiveSignature: 0,
		ActiveParameter: callsite.LocateInSpan(cc.Span, parsed.CallParams()),
	}
}

func clampIndex(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}
