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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/config"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/persist"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/render"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/resource"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/search"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/storage/badger"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/telemetry"
)

// runReport is what a finished (or interrupted) run prints.
type runReport struct {
	Result      *search.Result
	RunDir      string
	Screenshots int
}

func runSearchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	screenshots, _ := cmd.Flags().GetBool("screenshots")

	logger := newLogger(cfg, "run")
	defer logger.Close()
	log := logger.Slog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		stopMetrics, _, err := startMetricsServer(cfg.Observability.MetricsAddr, log)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = stopMetrics(sctx)
		}()
	}

	report, err := executeRun(ctx, cfg, log, screenshots)
	if report != nil && report.Result != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn("run interrupted; partial results kept")
		return nil
	}
	return err
}

// executeRun wires the seed, resource pools, sinks and engine for one
// run, then optionally renders the saved variants.
//
// Inputs:
//
//	ctx - Cancels the run between steps.
//	cfg - Validated configuration.
//	logger - Run logger.
//	screenshots - Render every saved variant after the search.
//
// Outputs:
//
//	*runReport - Non-nil whenever the search started. Partial on error.
//	error - Any setup, search, persistence or render failure.
func executeRun(ctx context.Context, cfg config.Config, logger *slog.Logger, screenshots bool) (*runReport, error) {
	seedStyle, seedPage, err := search.LoadSeed(cfg.Inputs.SeedCSS, cfg.Inputs.SeedHTML)
	if err != nil {
		return nil, err
	}

	scfg := cfg.Search
	scfg.EnsureDefaults()

	coord, err := resource.Load(cfg.Inputs.IconDir, cfg.Inputs.ImageDir,
		rand.New(rand.NewSource(scfg.ResourceSeed())), logger)
	if err != nil {
		return nil, err
	}

	writer, err := persist.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	var sink persist.Sink = writer
	if cfg.Output.LedgerPath != "" {
		bcfg := badger.DefaultConfig(cfg.Output.LedgerPath)
		bcfg.Logger = logger.With(slog.String("component", "ledger"))
		db, err := badger.Open(bcfg)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		sink = persist.NewLedger(writer, db)
	}

	engine, err := search.New(scfg, coord,
		search.WithLogger(logger),
		search.WithTracer(search.NewTracer(logger, cfg.Observability.TracingEnabled)),
		search.WithSink(sink),
	)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(ctx, seedStyle, seedPage)
	report := &runReport{Result: result, RunDir: writer.RunDir(engine.RunID())}
	if err != nil {
		return report, err
	}

	if screenshots {
		n, err := renderDir(ctx, cfg.Render, report.RunDir, filepath.Join(report.RunDir, "screenshots"), logger)
		report.Screenshots = n
		if err != nil && !errors.Is(err, render.ErrNoPages) {
			return report, err
		}
	}
	return report, nil
}

func printReport(w io.Writer, r *runReport) {
	res := r.Result
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "  Seed reward:   %.4f\n", res.SeedReward)
	fmt.Fprintf(w, "  Best reward:   %.4f\n", res.BestReward)
	fmt.Fprintf(w, "  Improvements:  %d\n", res.Improvements)
	fmt.Fprintf(w, "  Episodes:      %d\n", len(res.EpisodeRewards))
	fmt.Fprintf(w, "  Final epsilon: %.4f\n", res.FinalEpsilon)
	fmt.Fprintf(w, "  Q states:      %d\n", res.States)
	fmt.Fprintf(w, "  Icons used:    %d/%d\n", res.Coverage.Icons.Used, res.Coverage.Icons.Total)
	fmt.Fprintf(w, "  Images used:   %d/%d\n", res.Coverage.Images.Used, res.Coverage.Images.Total)
	fmt.Fprintf(w, "  Output:        %s\n", r.RunDir)
	if r.Screenshots > 0 {
		fmt.Fprintf(w, "  Screenshots:   %d\n", r.Screenshots)
	}
}
