// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command kestrel checks structural models for clashes from the terminal.
//
// Usage:
//
//	kestrel check frame.yaml
//	kestrel check --json frame.yaml tower.yaml
//	kestrel check --max-iterations 3 --log-level debug frame.yaml
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	quiet    bool

	rootCmd = &cobra.Command{
		Use:   "kestrel",
		Short: "A cli to check structural steel models for clashes",
		Long: `Kestrel detects geometric, standards, and structural-logic clashes
in steel detailing models, applies deterministic corrections, and
reports every clash with a terminal status.`,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Suppress log output, print only the report")
	rootCmd.AddCommand(checkCmd)
}
