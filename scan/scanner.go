// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scan discovers the Python files of a project.
//
// The scanner walks the project root (or its configured source roots),
// applies the ignore-directory list and user exclude globs, and
// returns a sorted, deduplicated list of project-relative paths. Every
// path uses forward slashes regardless of platform.
package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/impscope/diag"
)

// DefaultIgnoreDirs are directory names skipped during the walk
// regardless of user excludes.
var DefaultIgnoreDirs = []string{
	".git", ".hg", ".svn",
	".venv", "venv", "env",
	"node_modules", "dist", "build",
	"__pycache__", ".mypy_cache", ".pytest_cache",
}

// Scanner walks a project tree for Python source files.
type Scanner struct {
	root           string
	sourceRoots    []string
	includeOutside bool
	ignoreDirs     map[string]struct{}
	excludes       *ExcludeMatcher
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSourceRoots restricts the scan to the given project-relative
// directories. Module naming elsewhere is computed against the same
// roots.
func WithSourceRoots(roots []string) Option {
	return func(s *Scanner) { s.sourceRoots = roots }
}

// WithIncludeOutsideRoots also scans files outside every source root.
// Only meaningful when source roots are set.
func WithIncludeOutsideRoots(include bool) Option {
	return func(s *Scanner) { s.includeOutside = include }
}

// WithExcludeGlobs sets user exclude patterns, matched against the
// project-relative path.
func WithExcludeGlobs(globs []string) Option {
	return func(s *Scanner) { s.excludes = NewExcludeMatcher(globs) }
}

// WithIgnoreDirs replaces the default ignore-directory list.
func WithIgnoreDirs(dirs []string) Option {
	return func(s *Scanner) {
		s.ignoreDirs = make(map[string]struct{}, len(dirs))
		for _, d := range dirs {
			s.ignoreDirs[d] = struct{}{}
		}
	}
}

// NewScanner creates a scanner rooted at the given directory.
func NewScanner(root string, opts ...Option) *Scanner {
	s := &Scanner{
		root:     root,
		excludes: NewExcludeMatcher(nil),
	}
	WithIgnoreDirs(DefaultIgnoreDirs)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the tree and returns project-relative paths of all
// Python files, sorted ascending. Symlinks are skipped. Unreadable
// subtrees are logged and skipped rather than failing the scan.
//
// Missing source roots are reported on the collector; when every
// configured root is missing the scan returns an empty list.
func (s *Scanner) Scan(ctx context.Context, diags *diag.Collector) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(rel string) {
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		files = append(files, rel)
	}

	searchRoots, err := s.searchRoots(diags)
	if err != nil {
		return nil, err
	}

	for _, base := range searchRoots {
		if err := s.walk(ctx, base, nil, add); err != nil {
			return nil, err
		}
	}

	// A second pass over the whole project picks up files outside every
	// source root. Subtrees already covered are pruned.
	if len(s.sourceRoots) > 0 && s.includeOutside {
		if err := s.walk(ctx, s.root, searchRoots, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// searchRoots returns the absolute directories to walk.
func (s *Scanner) searchRoots(diags *diag.Collector) ([]string, error) {
	if len(s.sourceRoots) == 0 {
		return []string{s.root}, nil
	}

	var roots []string
	for _, sr := range s.sourceRoots {
		abs := filepath.Join(s.root, filepath.FromSlash(sr))
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			diags.AddPath(diag.SeverityWarning, diag.CodeMissingSourceRoot, sr,
				"source root does not exist: %s", sr)
			continue
		}
		roots = append(roots, abs)
	}
	if len(roots) == 0 {
		diags.Addf(diag.SeverityWarning, diag.CodeMissingSourceRoot,
			"no valid source roots exist on disk, nothing to scan")
	}
	return roots, nil
}

// walk visits one base directory. Directories listed in prune (and
// their subtrees) are skipped.
func (s *Scanner) walk(ctx context.Context, base string, prune []string, add func(string)) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if _, ignored := s.ignoreDirs[d.Name()]; ignored && path != base {
				return fs.SkipDir
			}
			for _, p := range prune {
				if path == p {
					return fs.SkipDir
				}
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.excludes.Excluded(rel) {
			return nil
		}

		add(rel)
		return nil
	})
}
