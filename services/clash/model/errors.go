// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package model

import "errors"

// Sentinel errors for the model package.
var (
	// ErrDuplicateID indicates two entities of the same kind share an ID.
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrEmptyModel indicates a document with no entities at all.
	ErrEmptyModel = errors.New("empty model")
)
