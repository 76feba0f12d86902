// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KestrelSteel/KestrelFOSS/pkg/logging"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/engine"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	checkMaxIterations int  // Correction iteration budget
	checkJSONOutput    bool // Output reports as JSON instead of YAML
	checkNoFail        bool // Always exit zero, even with unresolved errors
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// checkCmd runs clash detection and correction over model files.
//
// # Description
//
// Each argument is a model document (YAML or JSON). Models are checked
// independently; with more than one file the runs happen concurrently and
// the reports print in argument order. The report for each model lists
// every clash with its terminal status, the corrections applied, and the
// corrected model.
//
// # Examples
//
//	kestrel check frame.yaml                # One model, YAML report on stdout
//	kestrel check --json frame.yaml         # JSON report for scripting
//	kestrel check a.yaml b.yaml c.yaml      # Independent concurrent runs
//	kestrel check --no-fail frame.yaml      # Report only, always exit 0
//
// The exit code is 1 when any model ends with unresolved or failed
// error-severity clashes, so the command works as a CI gate.
var checkCmd = &cobra.Command{
	Use:   "check [model.yaml...]",
	Short: "Detect and correct clashes in structural model files",
	Args:  cobra.MinimumNArgs(1),
	Run:   runCheckCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	checkCmd.Flags().IntVar(&checkMaxIterations, "max-iterations", 5,
		"Correction iteration budget per model")
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false,
		"Output reports as JSON")
	checkCmd.Flags().BoolVar(&checkNoFail, "no-fail", false,
		"Exit 0 even when unresolved error clashes remain")
}

// =============================================================================
// COMMAND EXECUTION
// =============================================================================

func runCheckCommand(cmd *cobra.Command, args []string) {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(logLevel),
		Service: "kestrel",
		Quiet:   quiet,
	})

	models := make([]*model.Model, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("Failed to open model file", "path", path, "error", err)
			os.Exit(1)
		}
		m, err := model.Load(f)
		f.Close()
		if err != nil {
			logger.Error("Failed to parse model file", "path", path, "error", err)
			os.Exit(1)
		}
		if m.Name == "" {
			m.Name = path
		}
		models = append(models, m)
	}

	eng, err := engine.New(
		engine.WithMaxIterations(checkMaxIterations),
		engine.WithLogger(logger.Slog()),
	)
	if err != nil {
		logger.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	reports, err := eng.RunBatch(context.Background(), models)
	if err != nil {
		logger.Error("Clash run failed", "error", err)
		os.Exit(1)
	}

	unresolved := 0
	for _, report := range reports {
		if err := printReport(report); err != nil {
			logger.Error("Failed to write report", "model", report.Model, "error", err)
			os.Exit(1)
		}
		for _, clash := range report.Clashes {
			if clash.Severity == rules.SeverityError && clash.Status != rules.StatusCorrected {
				unresolved++
			}
		}
	}

	if unresolved > 0 && !checkNoFail {
		logger.Warn("Unresolved error clashes remain", "count", unresolved)
		os.Exit(1)
	}
}

func printReport(report *engine.Report) error {
	if checkJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	raw, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stdout, "---\n%s", raw)
	return err
}
