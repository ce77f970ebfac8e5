// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for the impscope CLI.
//
// Logs go to stderr so they never interleave with analysis results on
// stdout (Unix convention: results are pipeable, logs are not). The
// package is a thin layer over the standard library slog with a
// CLI-shaped configuration: a verbosity level, an optional quiet mode,
// and a text/JSON toggle.
//
// # Basic Usage
//
//	logging.Setup(logging.Config{Level: logging.LevelInfo, Service: "impscope"})
//	slog.Info("analysis complete", "files", n)
//
// Setup installs the configured handler as the slog default, so every
// package logs through the same pipeline without carrying a logger
// value around.
//
// # Log Levels
//
// Four levels are supported, matching slog conventions:
//
//   - Debug: development troubleshooting, verbose output
//   - Info: normal operations
//   - Warn: recoverable issues (skipped files, fallbacks)
//   - Error: operation failures
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
// Setting a minimum level filters out everything below it.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations the run can
	// survive.
	LevelWarn

	// LevelError is for operation failures.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel bridges Level to the standard library.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures logging behavior. The zero value writes Info+
// messages to stderr in text format.
type Config struct {
	// Level is the minimum severity to emit.
	Level Level

	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON switches records to JSON format for machine consumption.
	JSON bool

	// Quiet raises the threshold to Error regardless of Level.
	Quiet bool

	// Writer overrides the output destination. Defaults to stderr.
	// Used by tests to capture output.
	Writer io.Writer
}

// New builds a slog.Logger from the config without installing it.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	level := cfg.Level
	if cfg.Quiet {
		level = LevelError
	}
	opts := &slog.HandlerOptions{Level: level.toSlogLevel()}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	return logger
}

// Setup builds a logger from the config and installs it as the slog
// default.
func Setup(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}
