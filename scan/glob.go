// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"path/filepath"
	"strings"
)

// ExcludeMatcher matches project-relative paths against user-supplied
// exclude patterns.
//
// Patterns use glob syntax with ** for recursive matching:
//   - * matches any sequence of non-separator characters
//   - ** matches any sequence of characters including separators
//   - ? matches any single non-separator character
//   - [abc] matches one of the characters in brackets
//
// A pattern without a separator also matches against the bare file
// name, so "conftest.py" excludes every conftest.py in the tree.
//
// Thread Safety: ExcludeMatcher is safe for concurrent use after
// creation.
type ExcludeMatcher struct {
	patterns []string
}

// NewExcludeMatcher creates a matcher for the given patterns. An empty
// pattern list excludes nothing.
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	return &ExcludeMatcher{patterns: patterns}
}

// Excluded returns true if the path matches any exclude pattern. The
// path should use forward slashes as separators.
func (m *ExcludeMatcher) Excluded(path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range m.patterns {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchGlob matches a path against a single glob pattern.
func matchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, path)
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Try matching against just the filename.
	matched, _ = filepath.Match(pattern, filepath.Base(path))
	return matched
}

// matchDoublestar handles ** recursive patterns of the common
// "prefix/**/suffix" shape.
func matchDoublestar(pattern, path string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		path = strings.TrimPrefix(path, prefix+"/")
	}
	if suffix == "" {
		return true
	}
	return matchSuffix(suffix, path)
}

// matchSuffix checks whether some path suffix matches the pattern tail
// that follows a **.
func matchSuffix(suffix, path string) bool {
	if strings.ContainsAny(suffix, "*?[") {
		parts := strings.Split(path, "/")
		for i := range parts {
			subpath := strings.Join(parts[i:], "/")
			if matched, _ := filepath.Match(suffix, subpath); matched {
				return true
			}
		}
		return false
	}
	return path == suffix || strings.HasSuffix(path, "/"+suffix) || strings.Contains(path, suffix+"/")
}
