// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/config"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/storage/badger"
)

const testCSS = `
.fab-button { color: #333333; background-color: #eeeeee; border-radius: 10px; box-shadow: 0 2px 4px rgba(0,0,0,0.3); }
.card { color: #555555; background-color: #ffffff; border-radius: 6px; font-size: 15px; }
`

const testHTML = `<html><head><link rel="stylesheet" href="seed.css"></head>
<body><img src="a.svg"><img src="b.png"><p class="card">x</p></body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testWorkspace lays out a seed pair and resource pools under a temp dir
// and returns a config pointing at them.
func testWorkspace(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	write := func(rel, body string) string {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	cfg := config.Default()
	cfg.Inputs.SeedCSS = write("seed/seed.css", testCSS)
	cfg.Inputs.SeedHTML = write("seed/index.html", testHTML)
	write("icons/home.svg", "<svg/>")
	write("icons/nested/star.svg", "<svg/>")
	write("images/one.png", "png")
	write("images/two.jpg", "jpg")
	cfg.Inputs.IconDir = filepath.Join(root, "icons")
	cfg.Inputs.ImageDir = filepath.Join(root, "images")
	cfg.Output.Dir = filepath.Join(root, "out")
	cfg.Output.LedgerPath = filepath.Join(root, "ledger")
	cfg.Search.RunID = "cli"
	cfg.Search.Episodes = 3
	cfg.Search.StepsPerEpisode = 5
	cfg.Search.CheckpointInterval = 2
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestExecuteRun_WritesVariantsAndLedger(t *testing.T) {
	cfg := testWorkspace(t)

	report, err := executeRun(context.Background(), cfg, quietLogger(), false)
	require.NoError(t, err)
	require.NotNil(t, report.Result)
	assert.Equal(t, "cli", report.Result.RunID)
	assert.Len(t, report.Result.EpisodeRewards, 3)
	assert.GreaterOrEqual(t, report.Result.BestReward, report.Result.SeedReward)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "variants_cli"), report.RunDir)

	checkpoints, err := filepath.Glob(filepath.Join(report.RunDir, "checkpoints", "*.css"))
	require.NoError(t, err)
	assert.Len(t, checkpoints, 2, "episodes 0 and 2")

	db, err := badger.Open(badger.DefaultConfig(cfg.Output.LedgerPath))
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listVariants(&out, db, ""))
	assert.Equal(t, "cli\n", out.String())

	out.Reset()
	require.NoError(t, listVariants(&out, db, "cli"))
	assert.Contains(t, out.String(), "KIND")
	assert.Contains(t, out.String(), "checkpoint")
}

func TestExecuteRun_MissingSeed(t *testing.T) {
	cfg := testWorkspace(t)
	cfg.Inputs.SeedCSS = filepath.Join(t.TempDir(), "absent.css")

	report, err := executeRun(context.Background(), cfg, quietLogger(), false)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestExecuteRun_Cancelled(t *testing.T) {
	cfg := testWorkspace(t)
	cfg.Output.LedgerPath = ""
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := executeRun(ctx, cfg, quietLogger(), false)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, report.Result.SeedReward, report.Result.BestReward)
}

func TestListVariants_Empty(t *testing.T) {
	db, err := badger.Open(badger.InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listVariants(&out, db, ""))
	assert.Equal(t, "No runs recorded.\n", out.String())

	out.Reset()
	require.NoError(t, listVariants(&out, db, "ghost"))
	assert.Contains(t, out.String(), "ghost")
}

func TestApplyRunFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().Int("episodes", 0, "")
	cmd.Flags().Int("steps", 0, "")
	cmd.Flags().Bool("no-typography", false, "")
	cmd.Flags().String("ledger", "", "")
	require.NoError(t, cmd.Flags().Set("episodes", "4"))
	require.NoError(t, cmd.Flags().Set("no-typography", "true"))
	require.NoError(t, cmd.Flags().Set("ledger", ""))

	cfg := config.Default()
	applyRunFlags(cmd, &cfg)

	assert.Equal(t, 4, cfg.Search.Episodes)
	assert.Equal(t, config.Default().Search.StepsPerEpisode, cfg.Search.StepsPerEpisode, "unchanged flag keeps config")
	assert.False(t, cfg.Search.Learning.Typography)
	assert.Empty(t, cfg.Output.LedgerPath)
}

func TestPrintReport(t *testing.T) {
	cfg := testWorkspace(t)
	cfg.Output.LedgerPath = ""
	report, err := executeRun(context.Background(), cfg, quietLogger(), false)
	require.NoError(t, err)

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "Run cli")
	assert.Contains(t, out.String(), "Best reward:")
	assert.Contains(t, out.String(), report.RunDir)
}

func TestStartMetricsServer(t *testing.T) {
	stop, addr, err := startMetricsServer("127.0.0.1:0", quietLogger())
	require.NoError(t, err)
	defer stop(context.Background())

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
