// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import "fmt"

// NotFoundError indicates no analyzed file matched the query.
type NotFoundError struct {
	Query string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File not found: %s", e.Query)
}

// AmbiguousError indicates the query matched more than one file.
// Candidates is sorted ascending.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("Ambiguous file path: %s (%d candidates)", e.Query, len(e.Candidates))
}
