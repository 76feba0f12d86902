// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/KestrelSteel/KestrelFOSS/services/clash/correction"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration for engine runs.
type Config struct {
	// MaxIterations is the correction iteration budget. When a pass still
	// detects clashes after this many correct/revalidate cycles, the run
	// terminates as IterationLimitReached.
	// Default: 5
	MaxIterations int

	// Thresholds are the numeric tolerances shared by detection and
	// correction.
	Thresholds rules.Thresholds

	// Logger receives structured run events. Defaults to a discard logger.
	Logger *slog.Logger

	// Predictor is the optional external sizing capability consulted by
	// sizing transforms. Nil means table lookup only.
	Predictor correction.SizePredictor

	// PredictorTimeout bounds each predictor call.
	// Default: correction.DefaultPredictorTimeout
	PredictorTimeout time.Duration

	// BatchParallelism caps concurrent runs in RunBatch.
	// Default: 4
	BatchParallelism int
}

// DefaultConfig returns a Config with the documented defaults.
//
// Outputs:
//
//	*Config - Configuration with default values
func DefaultConfig() *Config {
	return &Config{
		MaxIterations:    5,
		Thresholds:       rules.DefaultThresholds(),
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		PredictorTimeout: correction.DefaultPredictorTimeout,
		BatchParallelism: 4,
	}
}

// Validate clamps out-of-range values to usable ones.
func (c *Config) Validate() error {
	if c.MaxIterations < 1 {
		c.MaxIterations = 1
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.PredictorTimeout <= 0 {
		c.PredictorTimeout = correction.DefaultPredictorTimeout
	}
	if c.BatchParallelism < 1 {
		c.BatchParallelism = 1
	}
	return nil
}

// =============================================================================
// CONFIGURATION OPTIONS
// =============================================================================

// Option is a function that modifies Config.
type Option func(*Config)

// WithMaxIterations sets the correction iteration budget.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.MaxIterations = n
	}
}

// WithThresholds sets the numeric tolerances.
func WithThresholds(t rules.Thresholds) Option {
	return func(c *Config) {
		c.Thresholds = t
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithPredictor sets the external sizing capability.
func WithPredictor(p correction.SizePredictor) Option {
	return func(c *Config) {
		c.Predictor = p
	}
}

// WithPredictorTimeout bounds each predictor call.
func WithPredictorTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.PredictorTimeout = d
	}
}

// WithBatchParallelism caps concurrent runs in RunBatch.
func WithBatchParallelism(n int) Option {
	return func(c *Config) {
		c.BatchParallelism = n
	}
}

// NewConfig creates a Config with the given options applied.
//
// Inputs:
//
//	opts - Options to apply to the default config
//
// Outputs:
//
//	*Config - Configuration with options applied
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	_ = cfg.Validate()
	return cfg
}
