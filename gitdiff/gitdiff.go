// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gitdiff lists Python files changed since a git reference.
//
// The package shells out to the git binary rather than linking a git
// library; the query is a single read-only plumbing command and the
// host git honors the repository's own configuration. Every failure
// mode (no git in PATH, not a repository, unknown reference) degrades
// to an empty result so the since report can render "no changes"
// instead of aborting the run.
package gitdiff

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// ChangedPythonFiles returns the repo-relative paths of Python files
// added, copied, modified, or renamed between sinceRef and HEAD,
// filtered by the exclude globs. Paths use forward slashes and are
// sorted by git's own output order.
func ChangedPythonFiles(ctx context.Context, repoRoot, sinceRef string, excluded func(string) bool) []string {
	if _, err := exec.LookPath("git"); err != nil {
		slog.Warn("git not found in PATH, since report will be empty")
		return nil
	}

	cmd := exec.CommandContext(ctx, "git", "-C", repoRoot,
		"diff", "--name-only", "--diff-filter=ACMR",
		sinceRef+"..HEAD", "--", "*.py")
	out, err := cmd.Output()
	if err != nil {
		slog.Warn("git diff failed", "since", sinceRef, "error", err)
		return nil
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		path := strings.TrimSpace(line)
		if path == "" || !strings.HasSuffix(path, ".py") {
			continue
		}
		path = strings.ReplaceAll(path, "\\", "/")
		if excluded != nil && excluded(path) {
			continue
		}
		files = append(files, path)
	}
	return files
}
