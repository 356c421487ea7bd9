// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent implements the tabular Q-learning policy that decides which
// mutation the search tries next.
//
// The action space is partitioned into categories. Each step picks a
// category uniformly and then an action within it, epsilon-greedily. The
// bootstrap term of the update takes the maximum over the whole catalog,
// not just the chosen category, so the categories share one value scale.
package agent

import (
	"math/rand"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// Config holds the learning hyperparameters.
type Config struct {
	// LearningRate is alpha in the Q update.
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate" validate:"gt=0,lte=1"`

	// Discount is gamma in the Q update.
	Discount float64 `yaml:"discount" json:"discount" validate:"gte=0,lte=1"`

	// Epsilon is the starting exploration rate.
	Epsilon float64 `yaml:"epsilon" json:"epsilon" validate:"gte=0,lte=1"`

	// EpsilonMin is the exploration floor.
	EpsilonMin float64 `yaml:"epsilon_min" json:"epsilon_min" validate:"gte=0,lte=1"`

	// EpsilonDecay is the base per-episode multiplier.
	EpsilonDecay float64 `yaml:"epsilon_decay" json:"epsilon_decay" validate:"gt=0,lte=1"`

	// TrendWindow is the number of episodes compared for decay adaptation.
	TrendWindow int `yaml:"trend_window" json:"trend_window" validate:"gte=2"`

	// TrendThreshold is the relative change treated as a trend.
	TrendThreshold float64 `yaml:"trend_threshold" json:"trend_threshold" validate:"gte=0"`

	// Typography enables the typography category and state family.
	Typography bool `yaml:"typography" json:"typography"`
}

// DefaultConfig returns the standard hyperparameters.
func DefaultConfig() Config {
	return Config{
		LearningRate:   0.1,
		Discount:       0.9,
		Epsilon:        1.0,
		EpsilonMin:     0.01,
		EpsilonDecay:   0.995,
		TrendWindow:    10,
		TrendThreshold: 0.05,
		Typography:     true,
	}
}

// Agent is an epsilon-greedy tabular Q-learner.
//
// Thread Safety: Not safe for concurrent use. Each run owns one Agent.
type Agent struct {
	cfg      Config
	rng      *rand.Rand
	catalog  *Catalog
	table    *QTable
	states   *Discretizer
	schedule *Schedule
	updates  int
}

// New creates an Agent with an empty Q-table.
//
// Inputs:
//
//	cfg - Hyperparameters.
//	rng - Random source for category and exploration draws.
func New(cfg Config, rng *rand.Rand) *Agent {
	return &Agent{
		cfg:      cfg,
		rng:      rng,
		catalog:  NewCatalog(cfg.Typography),
		table:    NewQTable(),
		states:   NewDiscretizer(cfg.Typography),
		schedule: NewSchedule(cfg.Epsilon, cfg.EpsilonMin, cfg.EpsilonDecay, cfg.TrendWindow, cfg.TrendThreshold),
	}
}

// Catalog returns the agent's action catalog.
func (a *Agent) Catalog() *Catalog { return a.catalog }

// Table returns the agent's Q-table.
func (a *Agent) Table() *QTable { return a.table }

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 { return a.schedule.Epsilon() }

// DecayRate returns the epsilon multiplier in effect.
func (a *Agent) DecayRate() float64 { return a.schedule.DecayRate() }

// State returns the discretized state key for doc.
func (a *Agent) State(doc style.Document) string {
	return a.states.Key(doc)
}

// Observe records doc as the baseline that later state keys compare
// against.
func (a *Agent) Observe(doc style.Document) {
	a.states.Record(doc)
}

// Choose picks a category uniformly, then an action within it.
func (a *Agent) Choose(state string) Action {
	cats := a.catalog.Categories()
	return a.SelectAction(state, cats[a.rng.Intn(len(cats))])
}

// SelectAction picks an action of cat epsilon-greedily. Greedy ties go to
// the earliest action in catalog order.
func (a *Agent) SelectAction(state string, cat Category) Action {
	actions := a.catalog.Actions(cat)
	if a.rng.Float64() < a.schedule.Epsilon() {
		return actions[a.rng.Intn(len(actions))]
	}
	best := actions[0]
	bestQ := a.table.Get(state, best.Key())
	for _, act := range actions[1:] {
		if q := a.table.Get(state, act.Key()); q > bestQ {
			best, bestQ = act, q
		}
	}
	return best
}

// Update applies one Q-learning step and returns the new value.
//
//	Q(s,a) <- (1-alpha)Q(s,a) + alpha(r + gamma max_a' Q(s',a'))
//
// The max ranges over every action in the catalog.
func (a *Agent) Update(state string, act Action, reward float64, next string) float64 {
	old := a.table.Get(state, act.Key())
	future := a.table.Max(next, a.catalog.All())
	q := (1-a.cfg.LearningRate)*old + a.cfg.LearningRate*(reward+a.cfg.Discount*future)
	a.table.Set(state, act.Key(), q)
	a.updates++
	return q
}

// Updates returns how many Q updates have been applied.
func (a *Agent) Updates() int { return a.updates }

// EndEpisode feeds the episode's best reward to the exploration schedule
// and returns the decayed epsilon.
func (a *Agent) EndEpisode(episodeBest float64) float64 {
	return a.schedule.EndEpisode(episodeBest)
}
