// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import "errors"

var (
	// ErrGraphFrozen indicates a mutation was attempted after Freeze().
	ErrGraphFrozen = errors.New("graph is frozen (read-only)")

	// ErrInvalidNode indicates an empty or malformed node path.
	ErrInvalidNode = errors.New("invalid node")
)
