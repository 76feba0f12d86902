// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-supplied
// identifiers.
//
// Model names and entity IDs arrive from uploaded documents and end up in
// log lines, report files, and API responses. Validating them here keeps
// control characters and path separators out of those sinks.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// modelNamePattern matches valid model names.
// Allows: letters, digits, dots, hyphens, underscores, inner spaces.
// Max length: 128 characters.
var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\- ]{0,127}$`)

// entityIDPattern matches valid entity IDs (members, plates, bolts, welds,
// anchors). Same alphabet without spaces, max 64 characters.
var entityIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateModelName validates a model document name.
//
// Valid names:
//   - 1-128 characters
//   - Letters, digits, dots, hyphens, underscores, spaces
//   - Must start with a letter or digit, must not end with a space
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateModelName(m.Name); err != nil {
//	    return fmt.Errorf("invalid model name: %w", err)
//	}
func ValidateModelName(name string) error {
	if name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if strings.HasSuffix(name, " ") {
		return fmt.Errorf("model name cannot end with a space: %q", name)
	}
	if !modelNamePattern.MatchString(name) {
		return fmt.Errorf("invalid model name: %q (must be 1-128 alphanumeric chars, dots, hyphens, underscores, or spaces)", name)
	}
	return nil
}

// ValidateEntityID validates a single entity identifier.
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("entity ID cannot be empty")
	}
	if !entityIDPattern.MatchString(id) {
		return fmt.Errorf("invalid entity ID: %q (must be 1-64 alphanumeric chars, dots, hyphens, or underscores)", id)
	}
	return nil
}

// ValidateEntityIDs validates multiple entity identifiers.
// Returns an error listing all invalid IDs if any fail validation.
func ValidateEntityIDs(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateEntityID(id); err != nil {
			invalid = append(invalid, id)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid entity IDs: %v", invalid)
	}
	return nil
}
