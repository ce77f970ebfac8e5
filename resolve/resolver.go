// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolve turns import declarations into concrete project
// files.
//
// Resolution is a deterministic function of the import kind, the
// importing file's place in the module namespace, and the strict-mode
// flag. Imports that resolve to nothing are normal (standard library
// and third-party modules are not indexed) and never produce errors.
//
// # Fallback Policy
//
// In the default (non-strict) mode, an import whose exact module is
// not indexed falls back to the nearest indexed ancestor package,
// preferring the longest match. This approximates how a name imported
// "from a package" is frequently defined in a submodule re-exported by
// the package's __init__, or provided dynamically. Strict mode
// disables every fallback: only exact matches produce edges.
package resolve

import (
	"strings"

	"github.com/AleutianAI/impscope/ast"
	"github.com/AleutianAI/impscope/index"
)

// Resolver resolves import declarations against a completed module
// index. Safe for concurrent use once the index is no longer mutated.
type Resolver struct {
	idx    *index.ModuleIndex
	strict bool
}

// NewResolver creates a resolver over a fully built index.
//
// Resolution must not begin until indexing has completed: any import
// may reference any other file's module name, and the fallback rules
// need the whole namespace to be deterministic.
func NewResolver(idx *index.ModuleIndex, strict bool) *Resolver {
	return &Resolver{idx: idx, strict: strict}
}

// ResolveDecl resolves one declaration from the file whose module name
// and package-unit flag are given. Returns the target file path, or
// ok=false when the import does not land on any indexed file.
func (r *Resolver) ResolveDecl(decl ast.ImportDecl, curModule string, curIsPkg bool) (string, bool) {
	switch decl.Kind {
	case ast.KindImport:
		return r.ResolveAbsolute(decl.Module)
	case ast.KindFromImport:
		return r.ResolveFrom(decl.Level, decl.Module, decl.Name, curModule, curIsPkg)
	default:
		return "", false
	}
}

// ResolveAbsolute resolves "import a.b.c" style references.
//
// Exact match first; in strict mode a miss is final. Otherwise the
// dotted ancestry is climbed ("a.b.c" -> "a.b" -> "a") and the first,
// i.e. longest, indexed ancestor wins.
func (r *Resolver) ResolveAbsolute(module string) (string, bool) {
	if module == "" {
		return "", false
	}

	if path, ok := r.idx.FileFor(module); ok {
		return path, true
	}

	if r.strict {
		return "", false
	}

	return r.climbAncestry(module)
}

// ResolveFrom resolves "from B import N" style references, absolute or
// relative.
//
// The effective base is computed first: a non-package importing file
// drops its last module segment (a plain module's own package is its
// parent), then a relative import ascends level-1 further segments.
// Ascending past the available ancestry makes the import unresolvable
// rather than silently landing on the top level.
//
// For a named import, the submodule form "base.N" is preferred over
// the base itself; packages commonly re-export submodule names from
// their __init__, so the submodule is the more precise target. The
// ancestor climb applies only to absolute from-imports in non-strict
// mode.
func (r *Resolver) ResolveFrom(level int, module, name, curModule string, curIsPkg bool) (string, bool) {
	var curParts []string
	if curModule != "" {
		curParts = strings.Split(curModule, ".")
	}
	if !curIsPkg && len(curParts) > 0 {
		curParts = curParts[:len(curParts)-1]
	}

	var base string
	if level > 0 {
		ascend := level - 1
		if ascend > len(curParts) {
			return "", false
		}
		baseParts := curParts[:len(curParts)-ascend]
		if module != "" {
			baseParts = append(append([]string{}, baseParts...), strings.Split(module, ".")...)
		}
		base = strings.Join(baseParts, ".")
	} else {
		base = module
	}

	if name == ast.WildcardName {
		// A star import lands on the base module itself; individual
		// exported names are not tracked.
		if path, ok := r.idx.FileFor(base); ok {
			return path, true
		}
		if r.strict {
			return "", false
		}
		if base != "" {
			return r.climbAncestry(base)
		}
		return "", false
	}

	candidate := name
	if base != "" {
		candidate = base + "." + name
	}
	if path, ok := r.idx.FileFor(candidate); ok {
		return path, true
	}

	if base != "" {
		if path, ok := r.idx.FileFor(base); ok {
			return path, true
		}
	}

	if r.strict {
		return "", false
	}

	if level == 0 && base != "" {
		return r.climbAncestry(base)
	}

	return "", false
}

// climbAncestry walks a dotted name up one segment at a time and
// returns the first indexed ancestor. The exact name itself is assumed
// already tried by the caller.
func (r *Resolver) climbAncestry(module string) (string, bool) {
	parts := strings.Split(module, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		candidate := strings.Join(parts[:i], ".")
		if path, ok := r.idx.FileFor(candidate); ok {
			return path, true
		}
	}
	return "", false
}
