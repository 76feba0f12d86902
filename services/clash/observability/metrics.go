// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability exposes the Prometheus metrics for clash engine
// runs.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace prefixes every metric exported by the clash engine.
const namespace = "kestrel"

var (
	// runsTotal counts completed engine runs by terminal state.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clash_runs_total",
		Help:      "Total clash engine runs by terminal state",
	}, []string{"state"})

	// runDuration tracks end-to-end run latency.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clash_run_duration_seconds",
		Help:      "Clash engine run duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
	})

	// runIterations tracks correction iterations per run.
	runIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clash_run_iterations",
		Help:      "Correction iterations per clash engine run",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	})

	// clashesDetected counts detected clashes by category and severity.
	clashesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clashes_detected_total",
		Help:      "Total clashes detected by category and severity",
	}, []string{"category", "severity"})

	// correctionsTotal counts correction attempts by outcome.
	correctionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "corrections_total",
		Help:      "Total correction attempts by action and outcome",
	}, []string{"action", "outcome"})
)

// RecordRun records a completed engine run.
func RecordRun(state string, iterations int, duration time.Duration) {
	runsTotal.WithLabelValues(state).Inc()
	runDuration.Observe(duration.Seconds())
	runIterations.Observe(float64(iterations))
}

// RecordClash records one detected clash.
func RecordClash(category, severity string) {
	clashesDetected.WithLabelValues(category, severity).Inc()
}

// RecordCorrection records one correction attempt.
func RecordCorrection(action, outcome string) {
	correctionsTotal.WithLabelValues(action, outcome).Inc()
}
