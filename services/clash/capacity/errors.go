// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package capacity

import "errors"

// Sentinel errors for the capacity package.
var (
	// ErrUnknownGrade indicates a bolt grade absent from the tables.
	ErrUnknownGrade = errors.New("unknown bolt grade")

	// ErrUnknownElectrode indicates an electrode absent from the tables.
	ErrUnknownElectrode = errors.New("unknown electrode")

	// ErrUnknownProfile indicates a cross-section absent from the tables.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrNoStandardSize indicates no stocked size satisfies the demand.
	ErrNoStandardSize = errors.New("no standard size large enough")

	// ErrInvalidInput indicates a non-positive dimension or length.
	ErrInvalidInput = errors.New("invalid input")
)
