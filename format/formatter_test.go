// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/impscope/graph"
	"github.com/AleutianAI/impscope/query"
)

func testEngine(t *testing.T) *query.Engine {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddEdge("a.py", "core.py"))
	require.NoError(t, g.AddEdge("b.py", "core.py"))
	require.NoError(t, g.AddEdge("c.py", "a.py"))
	require.NoError(t, g.AddFile("orphan.py"))
	g.Freeze()
	return query.NewEngine(g, nil)
}

func TestImpact_Text(t *testing.T) {
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	imp := &query.Impact{
		File:               "core.py",
		DirectDependents:   []string{"a.py", "b.py"},
		IndirectDependents: []string{"c.py"},
		TotalImpact:        3,
	}
	require.NoError(t, f.Impact(&buf, imp))

	out := buf.String()
	assert.Contains(t, out, "Impact Analysis for core.py")
	assert.Contains(t, out, "Direct dependents (2):")
	assert.Contains(t, out, "├── a.py")
	assert.Contains(t, out, "└── b.py")
	assert.Contains(t, out, "Indirect dependents (1):")
	assert.Contains(t, out, "Total Impact: 3 files")
}

func TestImpact_TextTruncates(t *testing.T) {
	f := NewFormatter(FormatText, false, 2, false)
	var buf bytes.Buffer

	imp := &query.Impact{
		File:             "core.py",
		DirectDependents: []string{"a.py", "b.py", "c.py", "d.py"},
		TotalImpact:      4,
	}
	require.NoError(t, f.Impact(&buf, imp))

	out := buf.String()
	assert.Contains(t, out, "Direct dependents (4):")
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "d.py")
	assert.Contains(t, out, "Indirect dependents: None")
}

func TestImpact_JSON(t *testing.T) {
	f := NewFormatter(FormatJSON, false, 1, false)
	var buf bytes.Buffer

	imp := &query.Impact{
		File:               "core.py",
		DirectDependents:   []string{"a.py", "b.py"},
		IndirectDependents: []string{},
		TotalImpact:        2,
	}
	require.NoError(t, f.Impact(&buf, imp))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "core.py", decoded["file"])
	// JSON is never truncated.
	assert.Len(t, decoded["direct_dependents"], 2)
	assert.Equal(t, float64(2), decoded["total_impact"])
}

func TestQueryError(t *testing.T) {
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	err := &query.AmbiguousError{
		Query:      "models.py",
		Candidates: []string{"app/models.py", "pkg/models.py"},
	}
	require.NoError(t, f.QueryError(&buf, err))
	assert.Contains(t, buf.String(), "Ambiguous file path")
	assert.Contains(t, buf.String(), "app/models.py")

	buf.Reset()
	f.Format = FormatJSON
	require.NoError(t, f.QueryError(&buf, err))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded["candidates"], 2)
}

func TestUnimported_Text(t *testing.T) {
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Unimported(&buf, []string{"x.py", "y.py"}))
	out := buf.String()
	assert.Contains(t, out, "2 files are not imported by others:")
	assert.Contains(t, out, "├── x.py")
	assert.Contains(t, out, "└── y.py")

	buf.Reset()
	require.NoError(t, f.Unimported(&buf, nil))
	assert.Contains(t, buf.String(), "0 files are not imported by others.")
}

func TestGraph_Text(t *testing.T) {
	e := testEngine(t)
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Graph(&buf, e.MostDepended(10, false), e, false))
	out := buf.String()
	assert.Contains(t, out, "Most Depended Files")
	assert.Contains(t, out, "1. core.py")
	assert.Contains(t, out, "Dependents: 2")
	assert.Contains(t, out, "├── a.py")
}

func TestGraph_JSON(t *testing.T) {
	e := testEngine(t)
	f := NewFormatter(FormatJSON, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Graph(&buf, e.MostDepended(2, false), e, false))
	var decoded struct {
		Order        string         `json:"order"`
		MostDepended []query.Ranked `json:"most_depended"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "desc", decoded.Order)
	require.Len(t, decoded.MostDepended, 2)
	assert.Equal(t, "core.py", decoded.MostDepended[0].File)
}

func TestStats_Text(t *testing.T) {
	e := testEngine(t)
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Stats(&buf, e, false))
	out := buf.String()
	assert.Contains(t, out, "Total Python files: 5")
	assert.Contains(t, out, "Total dependencies: 3")
	assert.Contains(t, out, "Files with dependencies: 3")
	assert.Contains(t, out, "Most depended files:")
	assert.Contains(t, out, "2 ← core.py")
	assert.Contains(t, out, "Not imported by others: 3")
}

func TestSince_Text(t *testing.T) {
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	report := &SinceReport{
		Since:   "main",
		Changed: []string{"core.py"},
		Impacts: map[string]*query.Impact{
			"core.py": {
				File:               "core.py",
				DirectDependents:   []string{"a.py", "b.py"},
				IndirectDependents: []string{"c.py"},
				TotalImpact:        3,
			},
		},
	}
	require.NoError(t, f.Since(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "Impact Since main")
	assert.Contains(t, out, "└── core.py")
	assert.Contains(t, out, "Direct dependents:   2")
	assert.Contains(t, out, "Indirect dependents: 1")
	assert.Contains(t, out, "Total Impact:        3 files")
	assert.Contains(t, out, "• core.py: 3 files")
}

func TestSince_NoChanges(t *testing.T) {
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Since(&buf, &SinceReport{Since: "HEAD~1"}))
	out := buf.String()
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "No impacts could be resolved")
}

func TestBrief(t *testing.T) {
	e := testEngine(t)
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer

	require.NoError(t, f.Brief(&buf, e))
	out := buf.String()
	assert.Contains(t, out, "Analyzed 5 Python files")
	assert.Contains(t, out, "Found 3 dependencies")
	assert.Contains(t, out, "impscope impact <file>")
}

func TestStyledOutputCarriesNoEscapesWhenOff(t *testing.T) {
	e := testEngine(t)
	f := NewFormatter(FormatText, false, 10, false)
	var buf bytes.Buffer
	require.NoError(t, f.Stats(&buf, e, false))
	assert.False(t, strings.Contains(buf.String(), "\x1b["))
}
