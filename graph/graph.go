// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph holds the file-level dependency graph.
//
// Nodes are project-relative file paths; a directed edge a -> b means
// "a imports b". The graph keeps forward adjacency (dependencies) and
// the derived reverse adjacency (dependents) in lockstep.
//
// # Lifecycle
//
// A graph is built by a single writer during resolution, then frozen.
// After Freeze() it is read-only and safe for concurrent reads; any
// further mutation returns ErrGraphFrozen.
package graph

import (
	"fmt"
	"sort"
	"time"
)

// State represents the lifecycle state of the graph.
type State int

const (
	// StateBuilding indicates the graph is accepting AddFile/AddEdge.
	StateBuilding State = iota

	// StateReadOnly indicates the graph is frozen.
	StateReadOnly
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Graph is the dependency graph for one analysis run.
//
// Invariants:
//   - edge (a -> b) is in the forward map iff (b -> a) is in the
//     reverse map
//   - no self-edges
//   - the node set equals the indexed file set
type Graph struct {
	// dependencies: file -> set of files it imports.
	dependencies map[string]map[string]struct{}

	// dependents: file -> set of files that import it.
	dependents map[string]map[string]struct{}

	// edgeCount is the number of forward edges.
	edgeCount int

	state State

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero while building.
	BuiltAtMilli int64
}

// New creates an empty graph in the building state.
func New() *Graph {
	return &Graph{
		dependencies: make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
		state:        StateBuilding,
	}
}

// State returns the current lifecycle state.
func (g *Graph) State() State {
	return g.state
}

// IsFrozen returns true if the graph is read-only.
func (g *Graph) IsFrozen() bool {
	return g.state == StateReadOnly
}

// Freeze transitions the graph to read-only mode. Irreversible.
func (g *Graph) Freeze() {
	g.state = StateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// AddFile registers a node with no edges. Adding the same file twice
// is a no-op. Every indexed file must be added so that files without
// imports still appear in statistics and unimported queries.
func (g *Graph) AddFile(path string) error {
	if g.state == StateReadOnly {
		return ErrGraphFrozen
	}
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidNode)
	}
	g.ensureNode(path)
	return nil
}

// AddEdge records "from imports to". Self-edges are dropped silently;
// duplicate edges collapse into one.
func (g *Graph) AddEdge(from, to string) error {
	if g.state == StateReadOnly {
		return ErrGraphFrozen
	}
	if from == "" || to == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidNode)
	}
	if from == to {
		return nil
	}

	g.ensureNode(from)
	g.ensureNode(to)

	if _, ok := g.dependencies[from][to]; ok {
		return nil
	}
	g.dependencies[from][to] = struct{}{}
	g.dependents[to][from] = struct{}{}
	g.edgeCount++
	return nil
}

func (g *Graph) ensureNode(path string) {
	if _, ok := g.dependencies[path]; !ok {
		g.dependencies[path] = make(map[string]struct{})
	}
	if _, ok := g.dependents[path]; !ok {
		g.dependents[path] = make(map[string]struct{})
	}
}

// HasFile reports whether a path is a node in the graph.
func (g *Graph) HasFile(path string) bool {
	_, ok := g.dependencies[path]
	return ok
}

// Files returns all node paths in ascending lexical order.
func (g *Graph) Files() []string {
	out := make([]string, 0, len(g.dependencies))
	for path := range g.dependencies {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the files a path imports, sorted.
func (g *Graph) Dependencies(path string) []string {
	return sortedKeys(g.dependencies[path])
}

// Dependents returns the files importing a path, sorted.
func (g *Graph) Dependents(path string) []string {
	return sortedKeys(g.dependents[path])
}

// DependentCount returns the number of files importing a path.
func (g *Graph) DependentCount(path string) int {
	return len(g.dependents[path])
}

// DependencyCount returns the number of files a path imports.
func (g *Graph) DependencyCount(path string) int {
	return len(g.dependencies[path])
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.dependencies)
}

// EdgeCount returns the total number of edges (the sum of forward
// adjacency sizes).
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
