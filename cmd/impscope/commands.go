// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// Version is the CLI version, overridable at build time with
// -ldflags "-X main.Version=...".
var Version = "0.3.0"

// --- Global Command Variables ---
var (
	rootPath            string
	excludeGlobs        []string
	outputFormat        string
	fullOutput          bool
	listLimit           int
	sourceRoots         []string
	includeOutsideRoots bool
	strictResolution    bool
	configPath          string
	workers             int
	verbose             bool
	quiet               bool

	graphSort string
	statsSort string

	rootCmd = &cobra.Command{
		Use:   "impscope",
		Short: "Python Dependency Impact Analyzer",
		Long: `impscope scans a Python project, builds its import dependency
graph, and reports which files are affected when a given file changes.`,
		Example: `  impscope impact models.py                   # Analyze impact of changing models.py
  impscope unimported                         # List files not imported by others
  impscope graph                              # Show dependency graph (top most depended files)
  impscope stats --sort asc                   # Stats sorted ascending
  impscope since HEAD~1                       # Impact of files changed since a commit
  impscope --path . --source-root src impact foo.py
  impscope --exclude "tests/*" --format json impact models.py`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	impactCmd = &cobra.Command{
		Use:   "impact FILE",
		Short: "Analyze the impact of changing a specific file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImpact,
	}

	unimportedCmd = &cobra.Command{
		Use:   "unimported",
		Short: "List files that are not imported by any other file",
		Args:  cobra.NoArgs,
		RunE:  runUnimported,
	}

	graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "Show dependency graph (top most depended files)",
		Args:  cobra.NoArgs,
		RunE:  runGraph,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show comprehensive dependency statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	sinceCmd = &cobra.Command{
		Use:   "since COMMIT",
		Short: "Analyze union impact of files changed since a commit",
		Long:  "Analyze union impact of Python files changed since a commit, branch, or hash.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSince,
	}
)

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle (runBrief refers back to rootCmd's flags).
	rootCmd.RunE = runBrief
	rootCmd.Version = Version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootPath, "path", ".",
		"Root path to analyze")
	pf.StringArrayVar(&excludeGlobs, "exclude", nil,
		`Glob patterns to exclude (repeatable). Example: --exclude "tests/*"`)
	pf.StringVar(&outputFormat, "format", "text",
		"Output format: text or json")
	pf.BoolVar(&fullOutput, "full", false,
		"Do not truncate long lists in text output (JSON is always full)")
	pf.IntVar(&listLimit, "limit", 10,
		"Max items to show per list in text output when not using --full")
	pf.StringArrayVar(&sourceRoots, "source-root", nil,
		"Directory treated as an import root (relative to --path). Repeatable.")
	pf.BoolVar(&includeOutsideRoots, "include-outside-roots", false,
		"When --source-root is provided, also include Python files outside those roots")
	pf.BoolVar(&strictResolution, "strict-resolution", false,
		"Only resolve imports that exactly match indexed modules (no parent-package fallback)")
	pf.StringVar(&configPath, "config", "",
		"Config file (default: .impscope.yaml in --path)")
	pf.IntVar(&workers, "workers", 0,
		"Parse parallelism (0 = one worker per CPU)")
	pf.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"Suppress logs and diagnostics")

	graphCmd.Flags().StringVar(&graphSort, "sort", "desc",
		"Sort order for ranked list: asc or desc")
	statsCmd.Flags().StringVar(&statsSort, "sort", "desc",
		"Sort order for ranked list: asc or desc")

	rootCmd.AddCommand(impactCmd, unimportedCmd, graphCmd, statsCmd, sinceCmd)
}

// Execute runs the CLI. Errors returned here reach main's boundary
// and produce a non-zero exit.
func Execute() error {
	return rootCmd.Execute()
}
