// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime calculator. It uses the Go
embed package to bake standard_tables.yaml directly into the compiled binary,
so the code-standards data is immutable at runtime and travels with the
executable.
*/

package tables

import (
	_ "embed"
)

// StandardTables holds the raw byte content of the 'standard_tables.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed' directive.
// Baking the AISC/AWS/ACI tables into the binary guarantees that every run of
// the engine evaluates against the same standards data, which the determinism
// contract of the engine depends on.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(tables.StandardTables, &targetStruct)
//
//go:embed standard_tables.yaml
var StandardTables []byte
