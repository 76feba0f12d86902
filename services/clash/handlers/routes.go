// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/engine"
)

// RegisterRoutes registers the clash endpoints with the router group.
//
// Description:
//
//	Registers all /v1/clash/* endpoints. The router group should already
//	have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	eng - The clash engine
//
// Endpoints:
//
//	POST /v1/clash/check - Check one model, returns the run report
//	POST /v1/clash/batch - Check a list of models, one report per model
func RegisterRoutes(rg *gin.RouterGroup, eng *engine.Engine) {
	clash := rg.Group("/clash")
	clash.POST("/check", HandleCheck(eng))
	clash.POST("/batch", HandleCheckBatch(eng))
}
