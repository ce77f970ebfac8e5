// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"path"
	"strings"
)

// Namer computes module names from project-relative file paths,
// honoring the configured source roots.
//
// When source roots are set, a file under a root is named relative to
// that root ("src/pkg/mod.py" with root "src" becomes "pkg.mod"); the
// first matching root wins. Files outside every root are excluded
// unless includeOutside is set, in which case they keep their
// project-root-relative name.
type Namer struct {
	roots          []string
	includeOutside bool
}

// NewNamer creates a Namer for the given source roots. Roots are
// project-relative, slash-normalized directory paths; an empty list
// means the project root is the only namespace root.
func NewNamer(sourceRoots []string, includeOutside bool) *Namer {
	roots := make([]string, 0, len(sourceRoots))
	for _, r := range sourceRoots {
		r = strings.Trim(path.Clean(strings.ReplaceAll(r, "\\", "/")), "/")
		if r != "" && r != "." {
			roots = append(roots, r)
		}
	}
	return &Namer{roots: roots, includeOutside: includeOutside}
}

// EffectivePath re-roots a project-relative path against the source
// roots. The second return value is false when the file falls outside
// every configured root and outside-root files are excluded.
func (n *Namer) EffectivePath(rel string) (string, bool) {
	if len(n.roots) == 0 {
		return rel, true
	}
	for _, root := range n.roots {
		if rel == root {
			return "", true
		}
		if strings.HasPrefix(rel, root+"/") {
			return rel[len(root)+1:], true
		}
	}
	if n.includeOutside {
		return rel, true
	}
	return "", false
}

// ModuleName converts an effective path into a dotted module name and
// reports whether the file is a package-unit file.
//
// The ".py" suffix is dropped and directory segments joined with dots.
// A trailing "__init__" segment contributes no name segment, so a
// package-unit file's module name equals its directory's dotted path.
// An empty result (a package-unit file at the root of a source root)
// means the file cannot be registered under any module name.
func ModuleName(effectivePath string) (name string, isPackage bool) {
	p := strings.TrimSuffix(effectivePath, ".py")
	parts := strings.Split(p, "/")

	isPackage = path.Base(effectivePath) == PackageUnitFile
	if isPackage {
		parts = parts[:len(parts)-1]
	}

	// Guard against paths like "" after re-rooting.
	out := parts[:0]
	for _, seg := range parts {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return strings.Join(out, "."), isPackage
}
