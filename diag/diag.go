// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diag provides a structured diagnostics collector for the
// analysis pipeline.
//
// Scanning, indexing, and resolution all produce non-fatal findings
// (missing source roots, module-name collisions, unparseable files).
// Instead of printing to a side channel while the run is in progress,
// each stage appends to a Collector and the accumulated diagnostics
// are returned to the caller as data, separate from query results.
package diag

import "fmt"

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityInfo is for informational findings that need no action.
	SeverityInfo Severity = iota

	// SeverityWarning is for findings that may degrade result quality
	// (collisions, skipped files) but do not stop the run.
	SeverityWarning

	// SeverityError is for per-file failures. The run continues; the
	// affected file is excluded from the index.
	SeverityError
)

// String returns the human-readable name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so diagnostics
// serialize with readable severities in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic codes emitted by the pipeline.
const (
	// CodeParseFailure marks a file that could not be parsed.
	CodeParseFailure = "parse_failure"

	// CodeModuleCollision marks two files claiming the same module name.
	CodeModuleCollision = "module_collision"

	// CodeEmptyModuleName marks a file whose derived module name is empty.
	CodeEmptyModuleName = "empty_module_name"

	// CodeMissingSourceRoot marks a configured source root absent on disk.
	CodeMissingSourceRoot = "missing_source_root"

	// CodeOutsideSourceRoots marks a file skipped for being outside all
	// configured source roots.
	CodeOutsideSourceRoots = "outside_source_roots"
)

// Diagnostic is a single structured finding from the pipeline.
type Diagnostic struct {
	// Severity classifies how serious the finding is.
	Severity Severity `json:"severity"`

	// Code is a stable machine-readable identifier (Code* constants).
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Path is the project-relative file the finding refers to, if any.
	Path string `json:"path,omitempty"`

	// Related names a second file involved in the finding, such as the
	// earlier claimant of a colliding module name.
	Related string `json:"related,omitempty"`
}

// String renders the diagnostic in "severity: message (path)" form.
func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Path)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Collector accumulates diagnostics during a single analysis run.
//
// Collector is NOT safe for concurrent use. The pipeline appends from
// one goroutine at a time; parallel stages collect locally and merge
// during the serialized index step.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{diags: make([]Diagnostic, 0, 8)}
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Addf appends a diagnostic with a formatted message and no paths.
func (c *Collector) Addf(sev Severity, code, format string, args ...any) {
	c.Add(Diagnostic{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
}

// AddPath appends a diagnostic tied to a file path.
func (c *Collector) AddPath(sev Severity, code, path, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	})
}

// Merge appends all diagnostics from another collector.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.diags = append(c.diags, other.diags...)
}

// All returns a copy of the collected diagnostics in emission order.
func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.diags)
}
