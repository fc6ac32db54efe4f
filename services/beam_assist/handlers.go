// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package beam_assist

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the BeamBuddy service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the inspection service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleHealth handles GET /v1/beambuddy/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/beambuddy/ready.
//
// Response:
//
//	200 OK: ReadyResponse with Ready=true
//	503 Service Unavailable: ReadyResponse with Ready=false, no
//	    namespace snapshot has arrived yet
func (h *Handlers) HandleReady(c *gin.Context) {
	resp := h.svc.Ready()
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// HandleNamespace handles GET /v1/beambuddy/namespace.
func (h *Handlers) HandleNamespace(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Namespace())
}

// HandleResolve handles GET /v1/beambuddy/namespace/resolve.
//
// Query Parameters:
//
//	path - Dotted namespace path, e.g. "dev.samx.velocity". Required.
//
// Response:
//
//	200 OK: ResolveResponse; Found=false for absent paths
//	400 Bad Request: missing path parameter
func (h *Handlers) HandleResolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path query parameter is required",
			Code:  "MISSING_PATH",
		})
		return
	}
	c.JSON(http.StatusOK, h.svc.Resolve(path))
}

// HandleComplete handles POST /v1/beambuddy/complete.
//
// Request Body:
//
//	CompleteRequest
//
// Response:
//
//	200 OK: protocol.CompletionList
//	400 Bad Request: malformed body
func (h *Handlers) HandleComplete(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleComplete")

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.JSON(http.StatusOK, h.svc.Complete(c.Request.Context(), req))
}

// HandleSignature handles POST /v1/beambuddy/signature.
//
// Request Body:
//
//	SignatureRequest
//
// Response:
//
//	200 OK: SignatureResponse; Help is null outside an open call
//	400 Bad Request: malformed body
func (h *Handlers) HandleSignature(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSignature")

	var req SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.JSON(http.StatusOK, h.svc.Signature(c.Request.Context(), req))
}

// getOrCreateRequestID returns the request ID from the X-Request-ID header,
// generating one when the caller sent none.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
