// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/impscope/ast"
	"github.com/AleutianAI/impscope/index"
)

// buildIndex registers module -> path pairs.
func buildIndex(modules map[string]string) *index.ModuleIndex {
	idx := index.NewModuleIndex()
	for module, path := range modules {
		idx.Add(module, path)
	}
	return idx
}

func TestResolveAbsolute_ExactMatch(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":     "pkg/__init__.py",
		"pkg.mod": "pkg/mod.py",
	})
	r := NewResolver(idx, false)

	path, ok := r.ResolveAbsolute("pkg.mod")
	assert.True(t, ok)
	assert.Equal(t, "pkg/mod.py", path)
}

func TestResolveAbsolute_AncestorFallback(t *testing.T) {
	idx := buildIndex(map[string]string{
		"a":   "a/__init__.py",
		"a.b": "a/b.py",
	})

	// Non-strict: import a.b.c falls back to the longest indexed
	// ancestor, a.b.
	path, ok := NewResolver(idx, false).ResolveAbsolute("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "a/b.py", path)

	// Strict: no fallback, no edge.
	_, ok = NewResolver(idx, true).ResolveAbsolute("a.b.c")
	assert.False(t, ok)
}

func TestResolveAbsolute_Unresolved(t *testing.T) {
	idx := buildIndex(map[string]string{"pkg": "pkg/__init__.py"})
	r := NewResolver(idx, false)

	_, ok := r.ResolveAbsolute("numpy")
	assert.False(t, ok)

	_, ok = r.ResolveAbsolute("")
	assert.False(t, ok)
}

func TestResolveFrom_SubmoduleFirst(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":      "pkg/__init__.py",
		"pkg.name": "pkg/name.py",
	})
	r := NewResolver(idx, false)

	// from pkg import name -> pkg/name.py when the submodule exists.
	path, ok := r.ResolveFrom(0, "pkg", "name", "main", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/name.py", path)

	// Otherwise the package unit itself.
	path, ok = r.ResolveFrom(0, "pkg", "helper", "main", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/__init__.py", path)
}

func TestResolveFrom_AncestorClimb(t *testing.T) {
	idx := buildIndex(map[string]string{"a": "a/__init__.py"})

	// from a.b import x: neither a.b.x nor a.b exist, the nearest
	// indexed ancestor of a.b is a.
	path, ok := NewResolver(idx, false).ResolveFrom(0, "a.b", "x", "main", false)
	assert.True(t, ok)
	assert.Equal(t, "a/__init__.py", path)

	_, ok = NewResolver(idx, true).ResolveFrom(0, "a.b", "x", "main", false)
	assert.False(t, ok)
}

func TestResolveFrom_RelativeSibling(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":   "pkg/__init__.py",
		"pkg.a": "pkg/a.py",
		"pkg.b": "pkg/b.py",
	})
	r := NewResolver(idx, false)

	// from . import b inside pkg/a.py resolves to the sibling
	// submodule pkg.b.
	path, ok := r.ResolveFrom(1, "", "b", "pkg.a", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/b.py", path)
}

func TestResolveFrom_RelativeFromPackageUnit(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":   "pkg/__init__.py",
		"pkg.a": "pkg/a.py",
	})
	r := NewResolver(idx, false)

	// from . import a inside pkg/__init__.py: a package unit's own
	// package is itself, no segment is dropped.
	path, ok := r.ResolveFrom(1, "", "a", "pkg", true)
	assert.True(t, ok)
	assert.Equal(t, "pkg/a.py", path)
}

func TestResolveFrom_RelativeAscent(t *testing.T) {
	idx := buildIndex(map[string]string{
		"a":     "a/__init__.py",
		"a.x":   "a/x.py",
		"a.b":   "a/b/__init__.py",
		"a.b.c": "a/b/c.py",
	})
	r := NewResolver(idx, false)

	// from .. import x inside module a.b.c (non-package): the file's
	// package is a.b, one extra ascent lands on a, then a.x matches.
	path, ok := r.ResolveFrom(2, "", "x", "a.b.c", false)
	assert.True(t, ok)
	assert.Equal(t, "a/x.py", path)

	// Ascending beyond the root yields no edge.
	_, ok = r.ResolveFrom(4, "", "x", "a.b.c", false)
	assert.False(t, ok)
}

func TestResolveFrom_RelativeWithModule(t *testing.T) {
	idx := buildIndex(map[string]string{
		"a":            "a/__init__.py",
		"a.utils":      "a/utils/__init__.py",
		"a.utils.tool": "a/utils/tool.py",
	})
	r := NewResolver(idx, false)

	// from ..utils import tool inside a.b.c (non-package).
	path, ok := r.ResolveFrom(2, "utils", "tool", "a.b.c", false)
	assert.True(t, ok)
	assert.Equal(t, "a/utils/tool.py", path)
}

func TestResolveFrom_Wildcard(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":     "pkg/__init__.py",
		"pkg.sub": "pkg/sub.py",
	})
	r := NewResolver(idx, false)

	// from pkg.sub import * -> the module itself, one edge.
	path, ok := r.ResolveFrom(0, "pkg.sub", ast.WildcardName, "main", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/sub.py", path)

	// Missing base falls back to the nearest ancestor in non-strict.
	path, ok = r.ResolveFrom(0, "pkg.gone", ast.WildcardName, "main", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/__init__.py", path)

	_, ok = NewResolver(idx, true).ResolveFrom(0, "pkg.gone", ast.WildcardName, "main", false)
	assert.False(t, ok)
}

func TestResolveFrom_RelativeNoClimb(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg": "pkg/__init__.py",
	})
	r := NewResolver(idx, false)

	// The ancestor climb applies to absolute from-imports only; a
	// relative miss stays unresolved even in non-strict mode.
	_, ok := r.ResolveFrom(1, "missing", "x", "pkg.a", false)
	assert.False(t, ok)
}

func TestResolveDecl(t *testing.T) {
	idx := buildIndex(map[string]string{
		"pkg":   "pkg/__init__.py",
		"pkg.b": "pkg/b.py",
	})
	r := NewResolver(idx, false)

	path, ok := r.ResolveDecl(ast.ImportDecl{Kind: ast.KindImport, Module: "pkg.b"}, "main", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/b.py", path)

	path, ok = r.ResolveDecl(ast.ImportDecl{
		Kind: ast.KindFromImport, Name: "b", Level: 1,
	}, "pkg.a", false)
	assert.True(t, ok)
	assert.Equal(t, "pkg/b.py", path)
}
