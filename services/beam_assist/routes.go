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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all BeamBuddy inspection routes with the router.
//
// Description:
//
//	Registers all /v1/beambuddy/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	GET  /v1/beambuddy/health - Health check
//	GET  /v1/beambuddy/ready - Readiness check (namespace received)
//	GET  /v1/beambuddy/namespace - Namespace snapshot summary
//	GET  /v1/beambuddy/namespace/resolve - Resolve a dotted path
//	POST /v1/beambuddy/complete - Run the completion provider directly
//	POST /v1/beambuddy/signature - Run the signature provider directly
//
// Example:
//
//	service := beam_assist.NewService(store, comp, sig)
//	handlers := beam_assist.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	beam_assist.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	beambuddy := rg.Group("/beambuddy")
	{
		// Health checks
		beambuddy.GET("/health", handlers.HandleHealth)
		beambuddy.GET("/ready", handlers.HandleReady)

		// Namespace inspection
		beambuddy.GET("/namespace", handlers.HandleNamespace)
		beambuddy.GET("/namespace/resolve", handlers.HandleResolve)

		// Provider debug access
		beambuddy.POST("/complete", handlers.HandleComplete)
		beambuddy.POST("/signature", handlers.HandleSignature)
	}
}
