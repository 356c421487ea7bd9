// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "stylefuzz.search"

var meter = otel.Meter(tracerName)

// OpenTelemetry instruments, exported through whichever reader telemetry.Init
// installed. The Prometheus collectors in metrics.go are independent of these.
var (
	runTotal        metric.Int64Counter
	episodeBestHist metric.Float64Histogram

	otelOnce sync.Once
	otelErr  error
)

// initOtelMetrics creates the instruments. Safe to call multiple times.
func initOtelMetrics() error {
	otelOnce.Do(func() {
		var err error

		runTotal, err = meter.Int64Counter(
			"search_run_total",
			metric.WithDescription("Completed search runs by outcome"),
		)
		if err != nil {
			otelErr = err
			return
		}

		episodeBestHist, err = meter.Float64Histogram(
			"search_episode_best_reward",
			metric.WithDescription("Best accepted reward per episode"),
		)
		if err != nil {
			otelErr = err
			return
		}
	})
	return otelErr
}

// Tracer wraps OpenTelemetry spans for a search run.
//
// Thread Safety: Safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a Tracer. When enabled is false every span is a no-op.
//
// Inputs:
//   - logger: Logger for run events (nil for slog.Default()).
//   - enabled: Whether spans are recorded.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartRun starts the span covering a whole run.
func (t *Tracer) StartRun(ctx context.Context, runID string, cfg Config) (context.Context, trace.Span) {
	t.logger.InfoContext(ctx, "search run started",
		slog.String("run_id", runID),
		slog.Int("episodes", cfg.Episodes),
		slog.Int("steps_per_episode", cfg.StepsPerEpisode),
		slog.Float64("diversity_weight", cfg.DiversityWeight),
		slog.Int64("seed", cfg.Seed),
	)
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "search.run",
		trace.WithAttributes(
			attribute.String("search.run_id", runID),
			attribute.Int("search.episodes", cfg.Episodes),
			attribute.Int("search.steps_per_episode", cfg.StepsPerEpisode),
			attribute.Float64("search.diversity_weight", cfg.DiversityWeight),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndRun completes the run span.
func (t *Tracer) EndRun(span trace.Span, result *Result, err error) {
	if initOtelMetrics() == nil {
		runTotal.Add(context.Background(), 1, metric.WithAttributes(
			attribute.Bool("success", err == nil),
		))
	}
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("search run failed", slog.String("error", err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if result != nil {
		span.SetAttributes(
			attribute.Float64("search.result.best_reward", result.BestReward),
			attribute.Int("search.result.episodes", len(result.EpisodeRewards)),
			attribute.Int("search.result.states", result.States),
			attribute.Float64("search.result.epsilon", result.FinalEpsilon),
		)
		t.logger.Info("search run completed",
			slog.String("run_id", result.RunID),
			slog.Float64("best_reward", result.BestReward),
			slog.Int("episodes", len(result.EpisodeRewards)),
			slog.Int("states", result.States),
			slog.Float64("epsilon", result.FinalEpsilon),
		)
	}
	span.End()
}

// StartEpisode starts the span for one episode.
func (t *Tracer) StartEpisode(ctx context.Context, episode int) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "search.episode",
		trace.WithAttributes(attribute.Int("search.episode", episode)),
	)
}

// EndEpisode records the episode outcome on span and ends it.
func (t *Tracer) EndEpisode(span trace.Span, episodeBest, epsilon float64) {
	if initOtelMetrics() == nil {
		episodeBestHist.Record(context.Background(), episodeBest)
	}
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Float64("search.episode.best_reward", episodeBest),
		attribute.Float64("search.episode.epsilon", epsilon),
	)
	span.End()
}

// RecordImprovement adds a new-best event to the span in ctx.
func (t *Tracer) RecordImprovement(ctx context.Context, episode, step int, reward float64) {
	t.logger.DebugContext(ctx, "new best variant",
		slog.Int("episode", episode),
		slog.Int("step", step),
		slog.Float64("reward", reward),
	)
	if !t.enabled {
		return
	}
	trace.SpanFromContext(ctx).AddEvent("search.improvement", trace.WithAttributes(
		attribute.Int("search.step", step),
		attribute.Float64("search.reward", reward),
	))
}

// LoggerWithTrace returns logger annotated with the trace and span IDs in
// ctx, if any.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
