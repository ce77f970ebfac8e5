// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package format renders query results for the terminal.
//
// Two output modes exist: "text" is a truncated human summary with
// tree-drawing connectors, "json" is the full machine-readable dump.
// JSON mode never truncates regardless of the limit setting.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/impscope/diag"
	"github.com/AleutianAI/impscope/query"
)

// Output format identifiers.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// StdoutIsTerminal reports whether stdout is an interactive terminal.
// Styling defaults to off when output is piped.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Formatter renders analysis results. The zero value renders plain
// text with a limit of 10.
type Formatter struct {
	// Format selects FormatText or FormatJSON.
	Format string

	// Full disables truncation in text mode.
	Full bool

	// Limit caps list lengths in text mode. Clamped to at least 1.
	Limit int

	// Styled enables terminal colors in text mode.
	Styled bool
}

// NewFormatter creates a Formatter with a clamped limit.
func NewFormatter(format string, full bool, limit int, styled bool) *Formatter {
	if limit < 1 {
		limit = 1
	}
	if format == "" {
		format = FormatText
	}
	return &Formatter{Format: format, Full: full, Limit: limit, Styled: styled}
}

func (f *Formatter) json() bool { return f.Format == FormatJSON }

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.Styled {
		return text
	}
	return s.Render(text)
}

func (f *Formatter) title(w io.Writer, text string) {
	fmt.Fprintln(w, f.style(titleStyle, text))
	fmt.Fprintln(w, strings.Repeat("-", 60))
}

// truncate applies the text-mode limit and reports how many entries
// were cut.
func (f *Formatter) truncate(items []string) ([]string, int) {
	if f.Full || len(items) <= f.Limit {
		return items, 0
	}
	return items[:f.Limit], len(items) - f.Limit
}

// tree prints items with box-drawing connectors at the given indent.
func (f *Formatter) tree(w io.Writer, indent string, items []string, omitted int) {
	for i, item := range items {
		connector := "├──"
		if i == len(items)-1 && omitted == 0 {
			connector = "└──"
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, connector, item)
	}
	if omitted > 0 {
		fmt.Fprintf(w, "%s└── %s\n", indent, f.style(dimStyle, fmt.Sprintf("... and %d more", omitted)))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Impact renders one impact analysis.
func (f *Formatter) Impact(w io.Writer, imp *query.Impact) error {
	if f.json() {
		return writeJSON(w, imp)
	}

	f.title(w, fmt.Sprintf("Impact Analysis for %s", imp.File))

	if len(imp.DirectDependents) > 0 {
		items, omitted := f.truncate(imp.DirectDependents)
		fmt.Fprintf(w, "Direct dependents (%d):\n", len(imp.DirectDependents))
		f.tree(w, "  ", items, omitted)
	} else {
		fmt.Fprintln(w, "Direct dependents: None")
	}

	if len(imp.IndirectDependents) > 0 {
		items, omitted := f.truncate(imp.IndirectDependents)
		fmt.Fprintf(w, "\nIndirect dependents (%d):\n", len(imp.IndirectDependents))
		f.tree(w, "  ", items, omitted)
	} else {
		fmt.Fprintln(w, "\nIndirect dependents: None")
	}

	fmt.Fprintf(w, "\nTotal Impact: %s\n", f.style(countStyle, fmt.Sprintf("%d files", imp.TotalImpact)))
	return nil
}

// QueryError renders a structured query failure (not found, ambiguous)
// without aborting the process.
func (f *Formatter) QueryError(w io.Writer, err error) error {
	if f.json() {
		payload := map[string]any{"error": err.Error()}
		if ambig, ok := err.(*query.AmbiguousError); ok {
			payload["candidates"] = ambig.Candidates
		}
		return writeJSON(w, payload)
	}

	fmt.Fprintln(w, err.Error())
	if ambig, ok := err.(*query.AmbiguousError); ok {
		items, omitted := f.truncate(ambig.Candidates)
		f.tree(w, "  ", items, omitted)
	}
	return nil
}

// Unimported renders the unimported-files listing.
func (f *Formatter) Unimported(w io.Writer, files []string) error {
	if f.json() {
		return writeJSON(w, map[string][]string{"unimported_files": emptyIfNil(files)})
	}

	f.title(w, "Not Imported By Other Files")
	if len(files) == 0 {
		fmt.Fprintln(w, "0 files are not imported by others.")
		return nil
	}

	items, omitted := f.truncate(files)
	fmt.Fprintf(w, "%d files are not imported by others:\n", len(files))
	f.tree(w, "  ", items, omitted)
	return nil
}

// Graph renders the most/least-depended ranking with per-node
// dependent previews.
func (f *Formatter) Graph(w io.Writer, ranked []query.Ranked, e *query.Engine, ascending bool) error {
	if f.json() {
		return writeJSON(w, map[string]any{
			"order":         order(ascending),
			"most_depended": emptyIfNilRanked(ranked),
		})
	}

	if ascending {
		f.title(w, "Dependency Graph — Least Depended Files")
	} else {
		f.title(w, "Dependency Graph — Most Depended Files")
	}

	if len(ranked) == 0 {
		fmt.Fprintln(w, "No dependency relationships found")
		return nil
	}

	items := ranked
	if !f.Full && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	for i, r := range items {
		fmt.Fprintf(w, "\n%2d. %s\n", i+1, r.File)
		fmt.Fprintf(w, "     Dependents: %s\n", f.style(countStyle, fmt.Sprintf("%d", r.Dependents)))

		dependents := e.Dependents(r.File)
		if len(dependents) == 0 {
			continue
		}
		if f.Full {
			f.tree(w, "     ", dependents, 0)
			continue
		}
		preview := min(3, f.Limit)
		if preview > len(dependents) {
			preview = len(dependents)
		}
		f.tree(w, "     ", dependents[:preview], len(dependents)-preview)
	}
	return nil
}

// statsPayload is the JSON shape of the full statistics report.
type statsPayload struct {
	query.Stats
	Order        string         `json:"order"`
	MostDepended []query.Ranked `json:"most_depended_files"`
	Unimported   []string       `json:"unimported_files"`
}

// Stats renders the full statistics report.
func (f *Formatter) Stats(w io.Writer, e *query.Engine, ascending bool) error {
	stats := e.Statistics()

	if f.json() {
		limit := f.Limit
		if f.Full {
			limit = 0
		}
		return writeJSON(w, statsPayload{
			Stats:        stats,
			Order:        order(ascending),
			MostDepended: emptyIfNilRanked(e.MostDepended(limit, ascending)),
			Unimported:   emptyIfNil(e.Unimported()),
		})
	}

	f.title(w, "Dependency Statistics")
	fmt.Fprintf(w, "Total Python files: %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Total dependencies: %d\n", stats.TotalDependencies)
	fmt.Fprintf(w, "Files with dependencies: %d\n", stats.FilesWithDependencies)

	limit := f.Limit
	if f.Full {
		limit = 0
	}
	ranked := e.MostDepended(limit, ascending)
	if len(ranked) > 0 {
		if ascending {
			fmt.Fprintln(w, "\nLeast depended files:")
		} else {
			fmt.Fprintln(w, "\nMost depended files:")
		}
		for _, r := range ranked {
			fmt.Fprintf(w, "  %2d ← %s\n", r.Dependents, r.File)
		}
	}

	unimported := e.Unimported()
	fmt.Fprintf(w, "\nNot imported by others: %d\n", len(unimported))
	if len(unimported) > 0 {
		items, omitted := f.truncate(unimported)
		f.tree(w, "     ", items, omitted)
	}
	return nil
}

// SinceReport is the input of the since rendering: the changed files
// and the per-file impact of each one that resolved.
type SinceReport struct {
	Since   string
	Changed []string
	Impacts map[string]*query.Impact
}

// union computes the deduplicated direct/indirect dependent sets
// across all per-file impacts.
func (r *SinceReport) union() (direct, indirect []string, total int) {
	directSet := make(map[string]struct{})
	indirectSet := make(map[string]struct{})
	for _, imp := range r.Impacts {
		for _, d := range imp.DirectDependents {
			directSet[d] = struct{}{}
		}
		for _, d := range imp.IndirectDependents {
			indirectSet[d] = struct{}{}
		}
	}

	all := make(map[string]struct{}, len(directSet)+len(indirectSet))
	for d := range directSet {
		direct = append(direct, d)
		all[d] = struct{}{}
	}
	for d := range indirectSet {
		indirect = append(indirect, d)
		all[d] = struct{}{}
	}
	sort.Strings(direct)
	sort.Strings(indirect)
	return direct, indirect, len(all)
}

// Since renders the changed-since-revision impact report.
func (f *Formatter) Since(w io.Writer, report *SinceReport) error {
	direct, indirect, total := report.union()

	if f.json() {
		return writeJSON(w, map[string]any{
			"since":         report.Since,
			"changed_files": emptyIfNil(report.Changed),
			"union": map[string]any{
				"direct_dependents":   emptyIfNil(direct),
				"indirect_dependents": emptyIfNil(indirect),
				"total_impact":        total,
			},
			"impacts": report.Impacts,
		})
	}

	f.title(w, fmt.Sprintf("Impact Since %s", report.Since))

	fmt.Fprintln(w, "Changed Python files:")
	if len(report.Changed) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		items, omitted := f.truncate(report.Changed)
		f.tree(w, "  ", items, omitted)
	}

	fmt.Fprintln(w, "\nUnion impact across changed files:")
	fmt.Fprintf(w, "  Direct dependents:   %d\n", len(direct))
	fmt.Fprintf(w, "  Indirect dependents: %d\n", len(indirect))
	fmt.Fprintf(w, "  Total Impact:        %s\n", f.style(countStyle, fmt.Sprintf("%d files", total)))

	if len(report.Impacts) == 0 {
		fmt.Fprintln(w, "\nNo impacts could be resolved (not a git repo, bad commit, or files outside path).")
		return nil
	}

	fmt.Fprintln(w, "\nPer-file impact (changed → affected):")
	paths := make([]string, 0, len(report.Impacts))
	for p := range report.Impacts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	shown, omitted := f.truncate(paths)
	for _, p := range shown {
		fmt.Fprintf(w, "  • %s: %d files\n", p, report.Impacts[p].TotalImpact)
	}
	if omitted > 0 {
		fmt.Fprintf(w, "  %s\n", f.style(dimStyle, fmt.Sprintf("... and %d more", omitted)))
	}
	return nil
}

// Brief renders the no-subcommand summary with a pointer to the
// available subcommands.
func (f *Formatter) Brief(w io.Writer, e *query.Engine) error {
	stats := e.Statistics()

	if f.json() {
		return writeJSON(w, stats)
	}

	f.title(w, "impscope — Python Dependency Impact Analyzer")
	fmt.Fprintf(w, "Analyzed %d Python files\n", stats.TotalFiles)
	fmt.Fprintf(w, "Found %d dependencies\n", stats.TotalDependencies)
	if stats.TotalFiles > 0 {
		fmt.Fprintln(w, "\nUse -h/--help to see all options, including global flags (e.g. --path, --exclude, --format)")
		fmt.Fprintln(w, "\nCommon subcommands:")
		fmt.Fprintln(w, "  impscope impact <file>     # Impact analysis")
		fmt.Fprintln(w, "  impscope unimported        # Files not imported by others")
		fmt.Fprintln(w, "  impscope stats             # Full statistics")
		fmt.Fprintln(w, "  impscope graph             # Most/least depended files")
		fmt.Fprintln(w, "  impscope since <commit>    # Impact since a commit/branch/hash")
	}
	return nil
}

// Diagnostics renders pipeline findings, usually to stderr so they
// never interleave with result output.
func (f *Formatter) Diagnostics(w io.Writer, diags []diag.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	if f.json() {
		return writeJSON(w, map[string]any{"diagnostics": diags})
	}
	for _, d := range diags {
		fmt.Fprintln(w, f.style(dimStyle, d.String()))
	}
	return nil
}

func order(ascending bool) string {
	if ascending {
		return "asc"
	}
	return "desc"
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilRanked(s []query.Ranked) []query.Ranked {
	if s == nil {
		return []query.Ranked{}
	}
	return s
}
