// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	eng, err := engine.New()
	require.NoError(t, err)

	router := gin.New()
	router.GET("/healthz", HealthCheck)
	RegisterRoutes(router.Group("/v1"), eng)
	return router
}

const crossingMembers = `{
  "name": "crossing-members",
  "members": [
    {"id": "A", "start": {"x": 0, "y": 0, "z": 0}, "end": {"x": 5000, "y": 0, "z": 0}, "profile": "W310x39", "material": "A992"},
    {"id": "B", "start": {"x": 2000, "y": 0, "z": -1000}, "end": {"x": 2000, "y": 0, "z": 1000}, "profile": "W310x39", "material": "A992"}
  ]
}`

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestHandleCheck_CorrectsModel(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/clash/check", bytes.NewBufferString(crossingMembers))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report engine.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "crossing-members", report.Model)
	assert.Equal(t, "converged", report.Summary.FinalState)
	require.NotEmpty(t, report.Clashes)
	assert.NotNil(t, report.CorrectedModel)
}

func TestHandleCheck_AcceptsYAML(t *testing.T) {
	router := newTestRouter(t)

	body := `
name: yaml-frame
members:
  - id: M1
    start: {x: 0, y: 0, z: 0}
    end: {x: 5000, y: 0, z: 0}
    profile: W310x39
    material: A992
`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/clash/check", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report engine.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "converged", report.Summary.FinalState)
	assert.Zero(t, report.Summary.TotalDetected)
}

func TestHandleCheck_Deterministic(t *testing.T) {
	router := newTestRouter(t)

	post := func() string {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/clash/check", bytes.NewBufferString(crossingMembers))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}
	assert.Equal(t, post(), post())
}

func TestHandleCheck_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unparseable", `{{{`},
		{"empty model", `{"name": "empty"}`},
		{"missing entity id", `{"name": "frame", "members": [{"start": {"x": 0}, "end": {"x": 1}}]}`},
		{"bad model name", `{"name": "../escape", "members": [{"id": "M1", "end": {"x": 5000}}]}`},
		{"duplicate ids", `{"name": "frame", "members": [{"id": "M1", "end": {"x": 5000}}, {"id": "M1", "end": {"y": 5000}}]}`},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/v1/clash/check", bytes.NewBufferString(tt.body))
			router.ServeHTTP(w, req)

			assert.NotEqual(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandleCheckBatch(t *testing.T) {
	router := newTestRouter(t)

	body := `{"models": [
  {"name": "first", "members": [{"id": "M1", "end": {"x": 5000}, "profile": "W310x39", "material": "A992"}]},
  {"name": "second", "members": [{"id": "M1", "end": {"y": 4000}, "profile": "W310x39", "material": "A992"}]}
]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/clash/batch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Reports []engine.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Reports, 2)
	assert.Equal(t, "first", response.Reports[0].Model)
	assert.Equal(t, "second", response.Reports[1].Model)
}

func TestHandleCheckBatch_EmptyList(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/clash/batch", bytes.NewBufferString(`{"models": []}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
