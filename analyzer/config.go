// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the per-project config file name, looked up in
// the project root when no explicit config path is given.
const DefaultConfigFile = ".impscope.yaml"

var validate = validator.New()

// Config holds every knob of an analysis run. Flags override file
// values, file values override defaults.
type Config struct {
	// RootPath is the project root to scan.
	RootPath string `yaml:"path" validate:"required"`

	// Exclude lists glob patterns matched against project-relative
	// paths; matching files are skipped.
	Exclude []string `yaml:"exclude"`

	// SourceRoots restricts scanning and module naming to the given
	// project-relative directories.
	SourceRoots []string `yaml:"source_roots"`

	// IncludeOutsideRoots also analyzes files outside every source
	// root, named relative to the project root.
	IncludeOutsideRoots bool `yaml:"include_outside_roots"`

	// StrictResolution disables every resolution fallback; only exact
	// module matches produce edges.
	StrictResolution bool `yaml:"strict_resolution"`

	// Workers bounds parse parallelism. Zero means one worker per CPU.
	Workers int `yaml:"workers" validate:"min=0,max=256"`

	// MaxFileSizeBytes skips files larger than this. Zero keeps the
	// extractor default.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" validate:"min=0"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{RootPath: "."}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig merges a YAML config file over the defaults. A missing
// file is not an error when the path was not explicitly requested; an
// unreadable or malformed file always is.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RootPath == "" {
		cfg.RootPath = "."
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
