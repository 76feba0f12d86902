// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers exposes the clash engine over HTTP.
package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/KestrelSteel/KestrelFOSS/pkg/validation"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/engine"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
)

var checkTracer = otel.Tracer("kestrel.clash.handlers")

// maxModelBytes caps the request body. A structural model of a full
// building fits comfortably; anything larger is almost certainly abuse.
const maxModelBytes = 32 << 20

// HandleCheck runs one detection and correction pass over the posted model.
//
// The body is a model document in YAML or JSON (JSON parses as YAML). The
// response is the full run report: clashes with terminal statuses, the
// correction log, the summary, and the corrected model.
func HandleCheck(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := checkTracer.Start(c.Request.Context(), "HandleCheck")
		defer span.End()

		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxModelBytes))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		m, err := model.Parse(raw)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Rejected malformed model document", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validation.ValidateModelName(m.Name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		report, err := eng.Run(ctx, m)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Clash run failed", "model", m.Name, "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// HandleCheckBatch runs independent checks over a list of models and
// returns one report per model, in input order.
func HandleCheckBatch(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := checkTracer.Start(c.Request.Context(), "HandleCheckBatch")
		defer span.End()

		var req struct {
			Models []*model.Model `json:"models"`
		}
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if len(req.Models) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no models provided"})
			return
		}
		for _, m := range req.Models {
			if err := validation.ValidateModelName(m.Name); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		reports, err := eng.RunBatch(ctx, req.Models)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Batch clash run failed", "models", len(req.Models), "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports})
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
