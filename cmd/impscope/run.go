// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/impscope/analyzer"
	"github.com/AleutianAI/impscope/format"
	"github.com/AleutianAI/impscope/gitdiff"
	"github.com/AleutianAI/impscope/pkg/logging"
	"github.com/AleutianAI/impscope/query"
	"github.com/AleutianAI/impscope/scan"
)

// buildConfig merges defaults, the config file, and explicit flags, in
// that precedence order.
func buildConfig() (analyzer.Config, error) {
	cfgFile := configPath
	explicit := configPath != ""
	if !explicit {
		cfgFile = filepath.Join(rootPath, analyzer.DefaultConfigFile)
	}

	cfg, err := analyzer.LoadConfig(cfgFile, explicit)
	if err != nil {
		return cfg, err
	}

	pf := rootCmd.PersistentFlags()
	if pf.Changed("path") || cfg.RootPath == "" {
		cfg.RootPath = rootPath
	}
	if pf.Changed("exclude") {
		cfg.Exclude = excludeGlobs
	}
	if pf.Changed("source-root") {
		cfg.SourceRoots = sourceRoots
	}
	if pf.Changed("include-outside-roots") {
		cfg.IncludeOutsideRoots = includeOutsideRoots
	}
	if pf.Changed("strict-resolution") {
		cfg.StrictResolution = strictResolution
	}
	if pf.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, cfg.Validate()
}

// newFormatter builds the output formatter from the global flags.
// Styling is enabled only for text output on a real terminal.
func newFormatter() (*format.Formatter, error) {
	if outputFormat != format.FormatText && outputFormat != format.FormatJSON {
		return nil, fmt.Errorf("invalid --format %q (want text or json)", outputFormat)
	}
	styled := outputFormat == format.FormatText && format.StdoutIsTerminal()
	return format.NewFormatter(outputFormat, fullOutput, listLimit, styled), nil
}

// runAnalysis executes the pipeline shared by every subcommand and
// reports diagnostics on stderr.
func runAnalysis(cmd *cobra.Command) (*analyzer.Result, *query.Engine, *format.Formatter, error) {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{
		Level:   level,
		Service: "impscope",
		Quiet:   quiet || !verbose,
	})

	f, err := newFormatter()
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	a, err := analyzer.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := a.Run(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}

	if !quiet {
		diagFmt := format.NewFormatter(format.FormatText, true, 0, false)
		_ = diagFmt.Diagnostics(os.Stderr, res.Diagnostics)
	}

	if len(res.Files) == 0 {
		return nil, nil, nil, errors.New("no Python files found in the specified directory")
	}

	return res, res.NewEngine(), f, nil
}

func parseSort(sort string) (ascending bool, err error) {
	switch sort {
	case "asc":
		return true, nil
	case "desc":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --sort %q (want asc or desc)", sort)
	}
}

func runBrief(cmd *cobra.Command, _ []string) error {
	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}
	return f.Brief(cmd.OutOrStdout(), engine)
}

func runImpact(cmd *cobra.Command, args []string) error {
	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}

	imp, err := engine.ImpactOf(args[0])
	if err != nil {
		var notFound *query.NotFoundError
		var ambiguous *query.AmbiguousError
		if errors.As(err, &notFound) || errors.As(err, &ambiguous) {
			// Structured query failure: rendered, not fatal.
			return f.QueryError(cmd.OutOrStdout(), err)
		}
		return err
	}
	return f.Impact(cmd.OutOrStdout(), imp)
}

func runUnimported(cmd *cobra.Command, _ []string) error {
	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}
	return f.Unimported(cmd.OutOrStdout(), engine.Unimported())
}

func runGraph(cmd *cobra.Command, _ []string) error {
	ascending, err := parseSort(graphSort)
	if err != nil {
		return err
	}

	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}

	limit := 0
	if !fullOutput {
		limit = listLimit
		if limit < 10 {
			limit = 10
		}
	}
	return f.Graph(cmd.OutOrStdout(), engine.MostDepended(limit, ascending), engine, ascending)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ascending, err := parseSort(statsSort)
	if err != nil {
		return err
	}

	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}
	return f.Stats(cmd.OutOrStdout(), engine, ascending)
}

func runSince(cmd *cobra.Command, args []string) error {
	_, engine, f, err := runAnalysis(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return err
	}

	matcher := scan.NewExcludeMatcher(excludeGlobs)
	changed := gitdiff.ChangedPythonFiles(cmd.Context(), root, args[0], matcher.Excluded)

	impacts := make(map[string]*query.Impact, len(changed))
	for _, rel := range changed {
		imp, impErr := engine.ImpactOf(rel)
		if impErr != nil {
			// Changed files outside the analyzed set are reported in
			// the changed list but carry no impact entry.
			continue
		}
		impacts[rel] = imp
	}

	return f.Since(cmd.OutOrStdout(), &format.SinceReport{
		Since:   args[0],
		Changed: changed,
		Impacts: impacts,
	})
}
