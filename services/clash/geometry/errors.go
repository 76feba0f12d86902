// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import "errors"

// Sentinel errors for the geometry package.
var (
	// ErrDegenerateGeometry indicates a zero-length segment, zero-area
	// rectangle, or near-zero vector where a direction is required.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
