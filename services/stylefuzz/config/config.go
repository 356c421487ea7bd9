// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the stylefuzz configuration file.
//
// Values are resolved with priority flags > env > file > defaults. The
// file may be YAML or JSON; YAML is tried first.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/stylefuzz/pkg/logging"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/render"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/search"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/telemetry"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Config is the top-level configuration for every stylefuzz command.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after
// creation.
type Config struct {
	// Inputs locates the seed pair and the resource directories.
	Inputs InputsConfig `json:"inputs" yaml:"inputs"`

	// Output locates variant files and the ledger.
	Output OutputConfig `json:"output" yaml:"output"`

	// Search controls episodes, steps and learning.
	Search search.Config `json:"search" yaml:"search"`

	// Render controls screenshot capture.
	Render render.Config `json:"render" yaml:"render"`

	// Logging controls log level and destinations.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Observability controls tracing and metrics export.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// InputsConfig points at the seed files and resource pools.
type InputsConfig struct {
	SeedCSS  string `json:"seed_css" yaml:"seed_css" validate:"required"`
	SeedHTML string `json:"seed_html" yaml:"seed_html" validate:"required"`
	IconDir  string `json:"icon_dir" yaml:"icon_dir" validate:"required"`
	ImageDir string `json:"image_dir" yaml:"image_dir" validate:"required"`
}

// OutputConfig points at where variants are written.
type OutputConfig struct {
	// Dir holds one variants_<run_id> directory per run.
	Dir string `json:"dir" yaml:"dir" validate:"required"`

	// LedgerPath is the Badger directory indexing saved variants.
	// Empty disables the ledger.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`
}

// LoggingConfig mirrors logging.Config in file-friendly form.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
}

// ObservabilityConfig controls spans and metrics.
type ObservabilityConfig struct {
	// TracingEnabled creates run and episode spans.
	TracingEnabled bool `json:"tracing_enabled" yaml:"tracing_enabled"`

	// MetricsAddr serves /metrics when non-empty, e.g. ":9464".
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	// Telemetry selects exporters.
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Inputs: InputsConfig{
			SeedCSS:  "seed/style.css",
			SeedHTML: "seed/index.html",
			IconDir:  "resources/icons",
			ImageDir: "resources/images",
		},
		Output: OutputConfig{
			Dir:        "output",
			LedgerPath: "output/ledger",
		},
		Search:  search.DefaultConfig(),
		Render:  render.DefaultConfig(),
		Logging: LoggingConfig{Level: "info"},
		Observability: ObservabilityConfig{
			Telemetry: telemetry.DefaultConfig(),
		},
	}
}

// Load builds a Config from defaults, the file at path, the environment,
// and finally each override in order.
//
// Inputs:
//
//	path - YAML or JSON file. Empty or missing means defaults only.
//	overrides - Applied after env, typically from command-line flags.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - A parse failure, or ErrInvalid from Validate.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)

	for _, apply := range overrides {
		apply(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	// Inputs and output
	if v := os.Getenv("STYLEFUZZ_SEED_CSS"); v != "" {
		cfg.Inputs.SeedCSS = v
	}
	if v := os.Getenv("STYLEFUZZ_SEED_HTML"); v != "" {
		cfg.Inputs.SeedHTML = v
	}
	if v := os.Getenv("STYLEFUZZ_ICON_DIR"); v != "" {
		cfg.Inputs.IconDir = v
	}
	if v := os.Getenv("STYLEFUZZ_IMAGE_DIR"); v != "" {
		cfg.Inputs.ImageDir = v
	}
	if v := os.Getenv("STYLEFUZZ_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v, ok := os.LookupEnv("STYLEFUZZ_LEDGER_PATH"); ok {
		cfg.Output.LedgerPath = v
	}

	// Search
	if v := os.Getenv("STYLEFUZZ_EPISODES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Episodes = i
		}
	}
	if v := os.Getenv("STYLEFUZZ_STEPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.StepsPerEpisode = i
		}
	}
	if v := os.Getenv("STYLEFUZZ_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Search.Seed = i
		}
	}
	if v := os.Getenv("STYLEFUZZ_DIVERSITY_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.DiversityWeight = f
		}
	}
	if v := os.Getenv("STYLEFUZZ_TYPOGRAPHY"); v != "" {
		cfg.Search.Learning.Typography = v == "true" || v == "1"
	}

	// Render
	if v := os.Getenv("STYLEFUZZ_BROWSER_URL"); v != "" {
		cfg.Render.BrowserURL = v
	}

	// Logging and observability
	if v := os.Getenv("STYLEFUZZ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STYLEFUZZ_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("STYLEFUZZ_TRACING_ENABLED"); v != "" {
		cfg.Observability.TracingEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("STYLEFUZZ_METRICS_ADDR"); v != "" {
		cfg.Observability.MetricsAddr = v
	}
}

// Validate checks every section.
//
// Outputs:
//
//	error - Wraps ErrInvalid with the first failing section.
func (c Config) Validate() error {
	if err := validate.Struct(c.Inputs); err != nil {
		return fmt.Errorf("%w: inputs: %v", ErrInvalid, err)
	}
	if err := validate.Struct(c.Output); err != nil {
		return fmt.Errorf("%w: output: %v", ErrInvalid, err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("%w: search: %v", ErrInvalid, err)
	}
	if err := validate.Struct(c.Render); err != nil {
		return fmt.Errorf("%w: render: %v", ErrInvalid, err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging: %v", ErrInvalid, err)
	}
	return nil
}

// LoggerConfig converts the logging section for logging.New.
func (c Config) LoggerConfig(service string) logging.Config {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return logging.Config{
		Level:   level,
		LogDir:  c.Logging.Dir,
		Service: service,
		JSON:    c.Logging.JSON,
	}
}
