// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package beam_assist provides the BeamBuddy inspection HTTP service.
//
// The primary surface of BeamBuddy is the LSP stream; this service is the
// sidecar for operators: namespace inspection, health checks, and direct
// debug access to the completion and signature providers without an editor
// in the loop.
package beam_assist

import (
	"context"
	"sort"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/completions"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/signatures"
)

// Service bundles the namespace store with the two providers.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Service struct {
	store       *namespace.Store
	completions *completions.Provider
	signatures  *signatures.Provider
}

// NewService creates the inspection service.
func NewService(store *namespace.Store, comp *completions.Provider, sig *signatures.Provider) *Service {
	return &Service{
		store:       store,
		completions: comp,
		signatures:  sig,
	}
}

// Namespace summarizes the current snapshot.
func (s *Service) Namespace() NamespaceResponse {
	root := s.store.Snapshot()
	names := make([]string, 0, len(root))
	for name := range root {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := NamespaceResponse{
		Version: s.store.Version(),
		Names:   names,
	}
	if at := s.store.UpdatedAt(); !at.IsZero() {
		resp.UpdatedAtMilli = at.UnixMilli()
	}
	return resp
}

// Resolve walks a dotted path through the current snapshot.
//
// Description:
//
//	Absence is a normal outcome: a missing component, an empty path, or
//	an empty snapshot all yield Found=false with no error.
func (s *Service) Resolve(path string) ResolveResponse {
	obj, ok := namespace.Resolve(path, s.store.Snapshot())
	if !ok {
		return ResolveResponse{}
	}
	return ResolveResponse{Found: true, Object: obj}
}

// Complete runs the completion provider directly.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) protocol.CompletionList {
	return s.completions.Complete(ctx, completions.Request{
		Content: req.Content,
		Offset:  req.Offset,
	})
}

// Signature runs the signature provider directly.
func (s *Service) Signature(ctx context.Context, req SignatureRequest) SignatureResponse {
	help := s.signatures.Help(ctx, signatures.Request{
		Content: req.Content,
		Offset:  req.Offset,
	})
	return SignatureResponse{Help: help}
}

// Ready reports whether a namespace snapshot has arrived.
func (s *Service) Ready() ReadyResponse {
	version := s.store.Version()
	return ReadyResponse{
		Ready:           version > 0,
		SnapshotVersion: version,
	}
}
