// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"github.com/KestrelSteel/KestrelFOSS/services/clash/correction"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/model"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/rules"
)

// Summary aggregates a run for the report consumer.
type Summary struct {
	// ByCategory counts detected clashes per category.
	ByCategory map[rules.Category]int `yaml:"by_category" json:"by_category"`

	// BySeverity counts detected clashes per severity.
	BySeverity map[rules.Severity]int `yaml:"by_severity" json:"by_severity"`

	// TotalDetected is the number of distinct clashes seen across all
	// passes.
	TotalDetected int `yaml:"total_detected" json:"total_detected"`

	// TotalCorrected is the number of clashes absent from the final pass.
	TotalCorrected int `yaml:"total_corrected" json:"total_corrected"`

	// CorrectionRate is TotalCorrected / TotalDetected; zero when nothing
	// was detected.
	CorrectionRate float64 `yaml:"correction_rate" json:"correction_rate"`

	// Iterations is the number of correct/revalidate cycles performed.
	Iterations int `yaml:"iterations" json:"iterations"`

	// FinalState is the terminal run state.
	FinalState string `yaml:"final_state" json:"final_state"`
}

// Report is the structured output of one engine run.
type Report struct {
	// RunID is deterministic for identical input and configuration.
	RunID string `yaml:"run_id" json:"run_id"`

	// Model is the input model name.
	Model string `yaml:"model" json:"model"`

	// Clashes lists every distinct clash detected across all passes, with
	// its final status.
	Clashes []rules.ClashRecord `yaml:"clashes" json:"clashes"`

	// Corrections lists every correction attempt in application order.
	Corrections []correction.Record `yaml:"corrections" json:"corrections"`

	Summary Summary `yaml:"summary" json:"summary"`

	// CorrectedModel is the model after the final accepted correction
	// pass, in the input shape.
	CorrectedModel *model.Model `yaml:"corrected_model" json:"corrected_model"`
}

// buildSummary aggregates the classified clash list.
func buildSummary(clashes []rules.ClashRecord, iterations int, state RunState) Summary {
	s := Summary{
		ByCategory: make(map[rules.Category]int),
		BySeverity: make(map[rules.Severity]int),
		Iterations: iterations,
		FinalState: state.String(),
	}
	for _, c := range clashes {
		s.ByCategory[c.Category]++
		s.BySeverity[c.Severity]++
		s.TotalDetected++
		if c.Status == rules.StatusCorrected {
			s.TotalCorrected++
		}
	}
	if s.TotalDetected > 0 {
		s.CorrectionRate = float64(s.TotalCorrected) / float64(s.TotalDetected)
	}
	return s
}
