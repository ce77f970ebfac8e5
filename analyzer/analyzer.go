// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analyzer runs the full analysis pipeline: discover files,
// extract imports, index module names, resolve dependencies, and
// freeze the graph.
//
// # Pipeline
//
// Scanning returns a sorted file list. Extraction is parallel and
// CPU-bound; each worker parses independent files. Everything after
// extraction is serialized and processes files in ascending path
// order, so index collisions (first-wins) and the resulting graph are
// identical across runs regardless of worker scheduling.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/impscope/ast"
	"github.com/AleutianAI/impscope/diag"
	"github.com/AleutianAI/impscope/graph"
	"github.com/AleutianAI/impscope/index"
	"github.com/AleutianAI/impscope/query"
	"github.com/AleutianAI/impscope/resolve"
	"github.com/AleutianAI/impscope/scan"
)

// SourceFile is one analyzed file.
type SourceFile struct {
	// Path is the project-relative path, forward slashes.
	Path string

	// Module is the dotted module name. Empty for files that could not
	// be registered under any name.
	Module string

	// IsPackage is true for package-unit (__init__.py) files.
	IsPackage bool

	// Imports are the extracted declarations in source order.
	Imports []ast.ImportDecl

	// LineCount is the number of source lines.
	LineCount int

	// HasMainGuard is true when the file carries an entry-point guard.
	HasMainGuard bool
}

// Result is the output of one analysis run. The graph is frozen and
// all fields are read-only.
type Result struct {
	RunID       string
	Graph       *graph.Graph
	Index       *index.ModuleIndex
	Files       map[string]*SourceFile
	Diagnostics []diag.Diagnostic
	Elapsed     time.Duration
}

// MainGuardSet returns the set of files carrying an entry-point guard,
// in the shape the query engine consumes.
func (r *Result) MainGuardSet() map[string]bool {
	out := make(map[string]bool, len(r.Files))
	for path, sf := range r.Files {
		if sf.HasMainGuard {
			out[path] = true
		}
	}
	return out
}

// NewEngine builds a query engine over this result's graph.
func (r *Result) NewEngine() *query.Engine {
	return query.NewEngine(r.Graph, r.MainGuardSet())
}

// Analyzer orchestrates a run over one project root.
type Analyzer struct {
	cfg       Config
	extractor *ast.Extractor
}

// New creates an Analyzer after validating the configuration.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var extOpts []ast.ExtractorOption
	if cfg.MaxFileSizeBytes > 0 {
		extOpts = append(extOpts, ast.WithMaxFileSize(cfg.MaxFileSizeBytes))
	}
	return &Analyzer{
		cfg:       cfg,
		extractor: ast.NewExtractor(extOpts...),
	}, nil
}

// extraction is a per-file parse outcome, held until the serialized
// indexing step.
type extraction struct {
	imports   []ast.ImportDecl
	lineCount int
	mainGuard bool
	err       error
}

// Run executes the pipeline and returns the frozen result.
//
// Per-file failures (unreadable, unparseable, oversized) become
// diagnostics and exclude the file; only context cancellation or a
// broken project root fails the run as a whole.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := slog.With(slog.String("run_id", runID))

	root, err := filepath.Abs(a.cfg.RootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", a.cfg.RootPath)
	}

	diags := diag.NewCollector()

	scanner := scan.NewScanner(root,
		scan.WithSourceRoots(a.cfg.SourceRoots),
		scan.WithIncludeOutsideRoots(a.cfg.IncludeOutsideRoots),
		scan.WithExcludeGlobs(a.cfg.Exclude),
	)
	files, err := scanner.Scan(ctx, diags)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	log.Debug("scan complete", slog.Int("files", len(files)))

	extractions, err := a.extractAll(ctx, root, files)
	if err != nil {
		return nil, err
	}

	result := a.link(files, extractions, diags)
	result.RunID = runID
	result.Elapsed = time.Since(start)

	log.Info("analysis complete",
		slog.Int("files", result.Graph.NodeCount()),
		slog.Int("edges", result.Graph.EdgeCount()),
		slog.Int("diagnostics", len(result.Diagnostics)),
		slog.Duration("elapsed", result.Elapsed))
	return result, nil
}

// extractAll parses all files in parallel. The returned slice is
// positionally aligned with files.
func (a *Analyzer) extractAll(ctx context.Context, root string, files []string) ([]extraction, error) {
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	extractions := make([]extraction, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				extractions[i] = extraction{err: err}
				return nil
			}
			fi, err := a.extractor.Extract(gctx, content, rel)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				extractions[i] = extraction{err: err}
				return nil
			}
			extractions[i] = extraction{
				imports:   fi.Imports,
				lineCount: fi.LineCount,
				mainGuard: fi.HasMainGuard,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return extractions, nil
}

// link indexes the extracted files in ascending path order, resolves
// their imports, and freezes the graph.
func (a *Analyzer) link(files []string, extractions []extraction, diags *diag.Collector) *Result {
	namer := index.NewNamer(a.cfg.SourceRoots, a.cfg.IncludeOutsideRoots)
	idx := index.NewModuleIndex()
	srcFiles := make(map[string]*SourceFile, len(files))
	order := make([]string, 0, len(files))

	for i, rel := range files {
		ext := extractions[i]
		if ext.err != nil {
			diags.AddPath(diag.SeverityError, diag.CodeParseFailure, rel,
				"analyzing %s: %v", rel, ext.err)
			continue
		}

		eff, included := namer.EffectivePath(rel)
		if !included {
			diags.AddPath(diag.SeverityInfo, diag.CodeOutsideSourceRoots, rel,
				"skipping file outside source roots: %s", rel)
			continue
		}

		module, isPkg := index.ModuleName(eff)
		if module == "" {
			// Still a graph node; just unreachable by module name.
			diags.AddPath(diag.SeverityWarning, diag.CodeEmptyModuleName, rel,
				"skipping module registration, empty module name: %s", rel)
			idx.AddFileOnly(rel)
		} else if prev, collided := idx.Add(module, rel); collided {
			diags.Add(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.CodeModuleCollision,
				Message:  fmt.Sprintf("duplicate module name %q (already mapped to %s)", module, prev),
				Path:     rel,
				Related:  prev,
			})
		}

		srcFiles[rel] = &SourceFile{
			Path:         rel,
			Module:       module,
			IsPackage:    isPkg,
			Imports:      ext.imports,
			LineCount:    ext.lineCount,
			HasMainGuard: ext.mainGuard,
		}
		order = append(order, rel)
	}

	res := resolve.NewResolver(idx, a.cfg.StrictResolution)
	g := graph.New()
	for _, rel := range order {
		_ = g.AddFile(rel)
	}
	for _, rel := range order {
		sf := srcFiles[rel]
		for _, decl := range sf.Imports {
			if target, ok := res.ResolveDecl(decl, sf.Module, sf.IsPackage); ok {
				_ = g.AddEdge(rel, target)
			}
		}
	}
	g.Freeze()

	return &Result{
		Graph:       g,
		Index:       idx,
		Files:       srcFiles,
		Diagnostics: diags.All(),
	}
}
