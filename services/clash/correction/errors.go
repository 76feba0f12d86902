// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correction

import (
	"errors"
	"fmt"
)

// ErrNoTransform indicates the clash type has no corrective transform; the
// clash can only be reported, never fixed automatically.
var ErrNoTransform = errors.New("no corrective transform for clash type")

// ErrMissingEntity indicates the clash record references an entity that is
// no longer in the snapshot.
var ErrMissingEntity = errors.New("clash entity missing from snapshot")

// FailedError wraps the reason a transform could not satisfy its rule, e.g.
// no stocked size is large enough. The convergence loop records it and
// continues; it never aborts a pass.
type FailedError struct {
	// ClashID identifies the clash the transform was invoked for.
	ClashID string

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying cause, when one exists.
	Err error
}

func (e *FailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("correction failed for clash %s: %s: %v", e.ClashID, e.Reason, e.Err)
	}
	return fmt.Sprintf("correction failed for clash %s: %s", e.ClashID, e.Reason)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// failed builds a FailedError for a clash.
func failed(clashID, reason string, err error) error {
	return &FailedError{ClashID: clashID, Reason: reason, Err: err}
}
