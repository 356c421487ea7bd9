// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/stylefuzz/pkg/logging"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Search.Episodes, cfg.Search.Episodes)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "stylefuzz.yaml", `
inputs:
  seed_css: a.css
  seed_html: a.html
  icon_dir: icons
  image_dir: images
search:
  episodes: 7
  steps_per_episode: 3
  learning:
    learning_rate: 0.2
    discount: 0.9
    epsilon: 1.0
    epsilon_min: 0.05
    epsilon_decay: 0.99
    trend_window: 5
    trend_threshold: 0.05
    typography: false
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a.css", cfg.Inputs.SeedCSS)
	assert.Equal(t, 7, cfg.Search.Episodes)
	assert.Equal(t, 3, cfg.Search.StepsPerEpisode)
	assert.Equal(t, 0.2, cfg.Search.Learning.LearningRate)
	assert.False(t, cfg.Search.Learning.Typography)
	assert.Equal(t, 10, cfg.Search.CheckpointInterval, "unset keys keep defaults")
	assert.Equal(t, logging.LevelDebug, cfg.LoggerConfig("run").Level)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "stylefuzz.json", `{"search": {"episodes": 4}, "output": {"dir": "out2"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.Episodes)
	assert.Equal(t, "out2", cfg.Output.Dir)
}

func TestLoad_Garbage(t *testing.T) {
	path := writeFile(t, "bad.yaml", "search: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "stylefuzz.yaml", "search:\n  episodes: 7\n")
	t.Setenv("STYLEFUZZ_EPISODES", "9")
	t.Setenv("STYLEFUZZ_TYPOGRAPHY", "false")
	t.Setenv("STYLEFUZZ_LEDGER_PATH", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Search.Episodes)
	assert.False(t, cfg.Search.Learning.Typography)
	assert.Empty(t, cfg.Output.LedgerPath, "explicit empty env disables the ledger")
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("STYLEFUZZ_EPISODES", "9")

	cfg, err := Load("", func(c *Config) { c.Search.Episodes = 2 })
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Search.Episodes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing seed css", func(c *Config) { c.Inputs.SeedCSS = "" }},
		{"missing output dir", func(c *Config) { c.Output.Dir = "" }},
		{"zero episodes", func(c *Config) { c.Search.Episodes = 0 }},
		{"epsilon floor above start", func(c *Config) { c.Search.Learning.EpsilonMin = 2 }},
		{"zero viewport", func(c *Config) { c.Render.Width = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
