// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query answers impact questions over a frozen dependency
// graph.
//
// All query results are deterministic: lists are sorted ascending and
// rankings use the file path as a stable tie-break. The engine never
// mutates the graph and is safe for concurrent use.
package query

import (
	"sort"
	"strings"

	"github.com/AleutianAI/impscope/graph"
)

// Impact is the blast radius of one file.
type Impact struct {
	// File is the resolved project-relative path the query matched.
	File string `json:"file"`

	// DirectDependents are the files importing File, sorted.
	DirectDependents []string `json:"direct_dependents"`

	// IndirectDependents are files reaching File through one or more
	// intermediate imports, sorted. Disjoint from DirectDependents.
	IndirectDependents []string `json:"indirect_dependents"`

	// TotalImpact is len(direct) + len(indirect).
	TotalImpact int `json:"total_impact"`
}

// Ranked is one entry of a dependent-count ranking.
type Ranked struct {
	File       string `json:"file"`
	Dependents int    `json:"dependents"`
}

// Stats summarizes a completed analysis.
type Stats struct {
	TotalFiles            int `json:"total_files"`
	TotalDependencies     int `json:"total_dependencies"`
	FilesWithDependencies int `json:"files_with_dependencies"`
}

// Engine runs read-only queries over a frozen graph.
type Engine struct {
	g *graph.Graph

	// mainGuard marks files containing an `if __name__ == "__main__"`
	// guard; such files are treated as entry points and excluded from
	// the unimported listing.
	mainGuard map[string]bool
}

// NewEngine creates a query engine. The graph must be frozen; the
// mainGuard set may be nil.
func NewEngine(g *graph.Graph, mainGuard map[string]bool) *Engine {
	return &Engine{g: g, mainGuard: mainGuard}
}

// FindFile resolves a possibly-partial query to exactly one analyzed
// file. Exact path match wins; otherwise suffix matches are tried, and
// only if none exist, substring matches. A single candidate resolves;
// several produce an AmbiguousError, none a NotFoundError.
func (e *Engine) FindFile(q string) (string, error) {
	normalized := strings.ReplaceAll(q, "\\", "/")
	if e.g.HasFile(normalized) {
		return normalized, nil
	}

	var suffix, substr []string
	for _, f := range e.g.Files() {
		if strings.HasSuffix(f, normalized) {
			suffix = append(suffix, f)
		} else if strings.Contains(f, normalized) {
			substr = append(substr, f)
		}
	}

	candidates := suffix
	if len(candidates) == 0 {
		candidates = substr
	}
	switch len(candidates) {
	case 0:
		return "", &NotFoundError{Query: q}
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", &AmbiguousError{Query: q, Candidates: candidates}
	}
}

// ImpactOf computes the full blast radius of the file matching q.
//
// Direct dependents come straight from the reverse adjacency; indirect
// dependents are discovered by a breadth-first walk over it, excluding
// the target and the direct set. Cycles terminate naturally through
// the visited set.
func (e *Engine) ImpactOf(q string) (*Impact, error) {
	target, err := e.FindFile(q)
	if err != nil {
		return nil, err
	}

	direct := e.g.Dependents(target)

	visited := make(map[string]bool, len(direct)+1)
	visited[target] = true
	for _, d := range direct {
		visited[d] = true
	}

	var indirect []string
	queue := append([]string{}, direct...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range e.g.Dependents(current) {
			if !visited[dep] {
				visited[dep] = true
				indirect = append(indirect, dep)
				queue = append(queue, dep)
			}
		}
	}
	sort.Strings(indirect)

	return &Impact{
		File:               target,
		DirectDependents:   direct,
		IndirectDependents: indirect,
		TotalImpact:        len(direct) + len(indirect),
	}, nil
}

// Unimported lists files no other file imports, sorted. Files carrying
// a main guard are considered entry points and skipped.
func (e *Engine) Unimported() []string {
	var out []string
	for _, f := range e.g.Files() {
		if e.g.DependentCount(f) > 0 {
			continue
		}
		if e.mainGuard[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MostDepended ranks every file by dependent count. Descending by
// default, ascending when asked; ties break by path ascending in both
// directions. A non-positive limit returns the full ranking.
func (e *Engine) MostDepended(limit int, ascending bool) []Ranked {
	files := e.g.Files()
	out := make([]Ranked, 0, len(files))
	for _, f := range files {
		out = append(out, Ranked{File: f, Dependents: e.g.DependentCount(f)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dependents != out[j].Dependents {
			if ascending {
				return out[i].Dependents < out[j].Dependents
			}
			return out[i].Dependents > out[j].Dependents
		}
		return out[i].File < out[j].File
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Statistics returns the analysis-wide counters.
func (e *Engine) Statistics() Stats {
	withDeps := 0
	for _, f := range e.g.Files() {
		if e.g.DependencyCount(f) > 0 {
			withDeps++
		}
	}
	return Stats{
		TotalFiles:            e.g.NodeCount(),
		TotalDependencies:     e.g.EdgeCount(),
		FilesWithDependencies: withDeps,
	}
}

// Dependents exposes the sorted reverse adjacency of one file, for
// renderers that show per-node previews.
func (e *Engine) Dependents(path string) []string {
	return e.g.Dependents(path)
}
