// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
)

// ErrUnknownEvent indicates a message event the client does not handle.
var ErrUnknownEvent = errors.New("unknown runtime event")

// Runtime event names on the namespace feed.
const (
	eventNamespace = "namespace"
	eventHeartbeat = "heartbeat"
)

// envelope is the outer shape of every feed message.
type envelope struct {
	Event     string            `json:"event"`
	Namespace namespace.Mapping `json:"namespace,omitempty"`
}

// decodeMessage parses one feed message.
//
// Description:
//
//	Returns the new namespace mapping for namespace events. Heartbeats
//	return (nil, nil) so the read loop can skip them without treating
//	them as updates.
func decodeMessage(data []byte) (namespace.Mapping, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode runtime message: %w", err)
	}

	switch env.Event {
	case eventNamespace:
		if env.Namespace == nil {
			env.Namespace = namespace.Mapping{}
		}
		return env.Namespace, nil
	case eventHeartbeat:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
