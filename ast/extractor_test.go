package ast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test source code samples (embedded, no file I/O).
const (
	testPyEmpty = ``

	testPySimple = `import os
import os.path
import numpy as np

x = 1
`

	testPyFrom = `from collections import OrderedDict
from pkg.sub import helper as h, other
from pkg import *
`

	testPyRelative = `from . import sibling
from .. import uncle
from ..utils import tool
from .local import thing
`

	testPyNested = `import os

def main():
    import json
    from pathlib import Path
`

	testPyMainGuard = `import sys

if __name__ == "__main__":
    sys.exit(0)
`

	testPyBroken = `def broken(:
    pass
`
)

func extract(t *testing.T, src string) *FileImports {
	t.Helper()
	result, err := NewExtractor().Extract(context.Background(), []byte(src), "test.py")
	require.NoError(t, err)
	return result
}

func TestExtract_Empty(t *testing.T) {
	result := extract(t, testPyEmpty)
	assert.Empty(t, result.Imports)
	assert.Equal(t, 0, result.LineCount)
	assert.False(t, result.HasMainGuard)
}

func TestExtract_PlainImports(t *testing.T) {
	result := extract(t, testPySimple)
	require.Len(t, result.Imports, 3)

	assert.Equal(t, ImportDecl{Kind: KindImport, Module: "os", Line: 1}, result.Imports[0])
	assert.Equal(t, ImportDecl{Kind: KindImport, Module: "os.path", Line: 2}, result.Imports[1])
	assert.Equal(t, ImportDecl{Kind: KindImport, Module: "numpy", Alias: "np", Line: 3}, result.Imports[2])

	assert.Equal(t, 5, result.LineCount)
}

func TestExtract_FromImports(t *testing.T) {
	result := extract(t, testPyFrom)
	require.Len(t, result.Imports, 4)

	assert.Equal(t, ImportDecl{
		Kind: KindFromImport, Module: "collections", Name: "OrderedDict", Line: 1,
	}, result.Imports[0])

	// One declaration per imported name, sharing the base module.
	assert.Equal(t, ImportDecl{
		Kind: KindFromImport, Module: "pkg.sub", Name: "helper", Alias: "h", Line: 2,
	}, result.Imports[1])
	assert.Equal(t, ImportDecl{
		Kind: KindFromImport, Module: "pkg.sub", Name: "other", Line: 2,
	}, result.Imports[2])

	assert.Equal(t, ImportDecl{
		Kind: KindFromImport, Module: "pkg", Name: WildcardName, Line: 3,
	}, result.Imports[3])
}

func TestExtract_RelativeImports(t *testing.T) {
	result := extract(t, testPyRelative)
	require.Len(t, result.Imports, 4)

	tests := []struct {
		module string
		name   string
		level  int
	}{
		{module: "", name: "sibling", level: 1},
		{module: "", name: "uncle", level: 2},
		{module: "utils", name: "tool", level: 2},
		{module: "local", name: "thing", level: 1},
	}
	for i, tt := range tests {
		decl := result.Imports[i]
		assert.Equal(t, KindFromImport, decl.Kind, "decl %d", i)
		assert.Equal(t, tt.module, decl.Module, "decl %d module", i)
		assert.Equal(t, tt.name, decl.Name, "decl %d name", i)
		assert.Equal(t, tt.level, decl.Level, "decl %d level", i)
	}
}

func TestExtract_NestedImports(t *testing.T) {
	result := extract(t, testPyNested)
	require.Len(t, result.Imports, 3)
	assert.Equal(t, "os", result.Imports[0].Module)
	assert.Equal(t, "json", result.Imports[1].Module)
	assert.Equal(t, "pathlib", result.Imports[2].Module)
	assert.Equal(t, "Path", result.Imports[2].Name)
}

func TestExtract_MainGuard(t *testing.T) {
	result := extract(t, testPyMainGuard)
	assert.True(t, result.HasMainGuard)

	result = extract(t, testPySimple)
	assert.False(t, result.HasMainGuard)
}

func TestExtract_SyntaxError(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte(testPyBroken), "broken.py")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestExtract_TooLarge(t *testing.T) {
	e := NewExtractor(WithMaxFileSize(4))
	_, err := e.Extract(context.Background(), []byte(testPySimple), "big.py")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "bad.py")
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExtractor().Extract(ctx, []byte(testPySimple), "test.py")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty", content: "", want: 0},
		{name: "no trailing newline", content: "a\nb", want: 2},
		{name: "trailing newline", content: "a\nb\n", want: 2},
		{name: "single line", content: "a", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countLines([]byte(tt.content)))
		})
	}
}
