// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search runs the episodic Q-learning hill climb over style
// mutations.
//
// Each episode starts from the pair the previous episode ended on. Within
// an episode a proposed variant replaces the current one only if its
// reward beats the episode's best so far; the Q-table is updated on every
// step regardless. Strict improvements of the all-time best are saved,
// and every CheckpointInterval episodes the current pair is checkpointed.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/agent"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/markup"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/mutation"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/persist"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/resource"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/reward"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// Resources substitutes page assets and reports pool coverage.
type Resources interface {
	ProcessPage(page *markup.Document, doc style.Document) (*markup.Document, style.Document, error)
	CoverageStats() resource.Stats
}

// scorer computes the reward of a proposed style document.
type scorer interface {
	Evaluate(doc style.Document) reward.Breakdown
}

// Result is the outcome of a run.
type Result struct {
	RunID          string
	BestStyle      style.Document
	BestPage       *markup.Document
	BestReward     float64
	SeedReward     float64
	EpisodeRewards []float64
	Improvements   int
	FinalEpsilon   float64
	States         int
	Coverage       resource.Stats
}

// Engine owns every piece of learner state for one run.
//
// Thread Safety: Not safe for concurrent use. Build one Engine per run.
type Engine struct {
	cfg       Config
	agent     *agent.Agent
	operator  *mutation.Operator
	composer  scorer
	resources Resources
	sink      persist.Sink
	logger    *slog.Logger
	tracer    *Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t *Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithSink sets where variants are saved. Defaults to persist.Discard.
func WithSink(s persist.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// New builds an Engine with a fresh agent, history and operator, all
// seeded from cfg.Seed.
//
// Inputs:
//
//	cfg - Run configuration. Validated here; RunID is filled in if empty.
//	resources - The run's resource coordinator. Must not be nil.
//	opts - Optional logger, tracer and sink.
//
// Outputs:
//
//	*Engine - Ready to Run once.
//	error - ErrInvalidConfig on a bad config.
func New(cfg Config, resources Resources, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resources == nil {
		return nil, fmt.Errorf("%w: resources must not be nil", ErrInvalidConfig)
	}
	cfg.EnsureDefaults()

	// Each component draws from its own stream.
	agentRNG := rand.New(rand.NewSource(cfg.streamSeed(streamAgent)))
	mutationRNG := rand.New(rand.NewSource(cfg.streamSeed(streamMutation)))
	rewardRNG := rand.New(rand.NewSource(cfg.streamSeed(streamReward)))

	a := agent.New(cfg.Learning, agentRNG)
	history := mutation.NewHistory()
	e := &Engine{
		cfg:       cfg,
		agent:     a,
		operator:  mutation.NewOperator(mutationRNG, history),
		composer:  reward.NewComposer(cfg.DiversityWeight, a.Catalog().Dimensions(), history, resources, rewardRNG),
		resources: resources,
		sink:      persist.Discard{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = NewTracer(e.logger, false)
	}
	return e, nil
}

// RunID returns the run's identifier.
func (e *Engine) RunID() string { return e.cfg.RunID }

// Agent exposes the learner, mainly for inspection after a run.
func (e *Engine) Agent() *agent.Agent { return e.agent }

// Run searches from the seed pair.
//
// Inputs:
//
//	ctx - Checked between steps; cancellation stops the run.
//	seedStyle - Starting style document.
//	seedPage - Starting page. Must not be nil.
//
// Outputs:
//
//	*Result - Best pair found and per-episode rewards. Partial on error.
//	error - ErrNilDocument, a context error, or a persistence failure.
func (e *Engine) Run(ctx context.Context, seedStyle style.Document, seedPage *markup.Document) (result *Result, err error) {
	if seedPage == nil {
		return nil, ErrNilDocument
	}
	ctx, span := e.tracer.StartRun(ctx, e.cfg.RunID, e.cfg)
	defer func() { e.tracer.EndRun(span, result, err) }()

	seed := e.composer.Evaluate(seedStyle)
	result = &Result{
		RunID:      e.cfg.RunID,
		BestStyle:  seedStyle,
		BestPage:   seedPage,
		BestReward: seed.Total,
		SeedReward: seed.Total,
	}
	bestReward.Set(seed.Total)

	curStyle, curPage := seedStyle, seedPage
	for ep := 0; ep < e.cfg.Episodes; ep++ {
		curStyle, curPage, err = e.runEpisode(ctx, ep, curStyle, curPage, result)
		if err != nil {
			e.finish(result)
			return result, err
		}
	}
	e.finish(result)
	return result, nil
}

func (e *Engine) finish(r *Result) {
	r.FinalEpsilon = e.agent.Epsilon()
	r.States = e.agent.Table().States()
	r.Coverage = e.resources.CoverageStats()
}

// runEpisode runs one episode from the given pair and returns the pair it
// ended on.
func (e *Engine) runEpisode(ctx context.Context, ep int, curStyle style.Document, curPage *markup.Document, result *Result) (style.Document, *markup.Document, error) {
	ctx, span := e.tracer.StartEpisode(ctx, ep)
	episodeBest := 0.0

	for step := 0; step < e.cfg.StepsPerEpisode; step++ {
		if err := ctx.Err(); err != nil {
			span.End()
			return curStyle, curPage, err
		}

		state := e.agent.State(curStyle)
		act := e.agent.Choose(state)
		nextStyle, nextPage, err := e.apply(act, curStyle, curPage)
		if err != nil {
			span.End()
			return curStyle, curPage, fmt.Errorf("episode %d step %d: %w", ep, step, err)
		}
		br := e.composer.Evaluate(nextStyle)
		e.agent.Update(state, act, br.Total, e.agent.State(nextStyle))

		accepted := br.Total > episodeBest
		recordStep(act.Category, accepted, br.Total)
		if !accepted {
			continue
		}
		curStyle, curPage, episodeBest = nextStyle, nextPage, br.Total

		if br.Total > result.BestReward {
			result.BestStyle, result.BestPage, result.BestReward = nextStyle, nextPage, br.Total
			result.Improvements++
			improvementsTotal.Inc()
			bestReward.Set(br.Total)
			e.tracer.RecordImprovement(ctx, ep, step, br.Total)
			if err := e.save(ctx, persist.KindBest, curStyle, curPage, ep, step, br.Total); err != nil {
				span.End()
				return curStyle, curPage, err
			}
		}
	}

	e.agent.Observe(curStyle)
	eps := e.agent.EndEpisode(episodeBest)
	result.EpisodeRewards = append(result.EpisodeRewards, episodeBest)
	episodesTotal.Inc()
	epsilonGauge.Set(eps)
	e.tracer.EndEpisode(span, episodeBest, eps)
	e.logger.Debug("episode finished",
		slog.Int("episode", ep),
		slog.Float64("episode_best", episodeBest),
		slog.Float64("epsilon", eps),
	)

	if e.cfg.CheckpointInterval > 0 && ep%e.cfg.CheckpointInterval == 0 {
		LoggerWithTrace(ctx, e.logger).Info("search progress",
			slog.Int("episode", ep),
			slog.Float64("episode_best", episodeBest),
			slog.Float64("best_reward", result.BestReward),
			slog.Float64("epsilon", eps),
			slog.Float64("decay_rate", e.agent.DecayRate()),
		)
		if err := e.save(ctx, persist.KindCheckpoint, curStyle, curPage, ep, e.cfg.StepsPerEpisode, episodeBest); err != nil {
			return curStyle, curPage, err
		}
	}
	return curStyle, curPage, nil
}

func (e *Engine) apply(act agent.Action, doc style.Document, page *markup.Document) (style.Document, *markup.Document, error) {
	if act.IsResource() {
		nextPage, nextDoc, err := e.resources.ProcessPage(page, doc)
		return nextDoc, nextPage, err
	}
	next, err := e.operator.Apply(doc, act.Kind)
	return next, page, err
}

func (e *Engine) save(ctx context.Context, kind persist.Kind, doc style.Document, page *markup.Document, ep, step int, r float64) error {
	_, err := e.sink.Save(ctx, persist.Variant{
		RunID:    e.cfg.RunID,
		Kind:     kind,
		Style:    doc,
		Page:     page,
		Episode:  ep,
		Step:     step,
		Reward:   r,
		Coverage: e.resources.CoverageStats(),
	})
	if err != nil {
		persistErrorsTotal.WithLabelValues(string(kind)).Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("save %s variant: %w", kind, err)
	}
	return nil
}
