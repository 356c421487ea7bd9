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
	"fmt"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/agent"
)

var configValidate = validator.New()

// Random streams derived from Config.Seed, in draw order.
const (
	streamAgent = iota
	streamMutation
	streamReward
	streamResources
)

// Config controls one search run.
type Config struct {
	// RunID names the run's output directory and ledger keys. Generated
	// when empty.
	RunID string `json:"run_id" yaml:"run_id"`

	// Episodes is the number of episodes to run.
	Episodes int `json:"episodes" yaml:"episodes" validate:"gte=1"`

	// StepsPerEpisode is the number of mutations tried per episode.
	StepsPerEpisode int `json:"steps_per_episode" yaml:"steps_per_episode" validate:"gte=1"`

	// CheckpointInterval saves the current pair every N episodes.
	// Zero disables checkpoints.
	CheckpointInterval int `json:"checkpoint_interval" yaml:"checkpoint_interval" validate:"gte=0"`

	// DiversityWeight is the probability of scoring diversity instead of
	// guideline compliance.
	DiversityWeight float64 `json:"diversity_weight" yaml:"diversity_weight" validate:"gte=0,lte=1"`

	// Seed seeds every random source of the run.
	Seed int64 `json:"seed" yaml:"seed"`

	// Learning holds the agent's hyperparameters.
	Learning agent.Config `json:"learning" yaml:"learning"`
}

// DefaultConfig returns a 100x100 run with the standard learner.
func DefaultConfig() Config {
	return Config{
		Episodes:           100,
		StepsPerEpisode:    100,
		CheckpointInterval: 10,
		DiversityWeight:    0.8,
		Seed:               1,
		Learning:           agent.DefaultConfig(),
	}
}

// EnsureDefaults fills in a RunID when none is set.
func (c *Config) EnsureDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
}

// Validate checks field ranges.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig with the failing fields.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Learning.EpsilonMin > c.Learning.Epsilon {
		return fmt.Errorf("%w: epsilon_min %.3f exceeds epsilon %.3f",
			ErrInvalidConfig, c.Learning.EpsilonMin, c.Learning.Epsilon)
	}
	return nil
}

// streamSeed returns the seed of the given stream. Streams are successive
// draws from a source seeded with Seed.
func (c Config) streamSeed(stream int) int64 {
	seeds := rand.New(rand.NewSource(c.Seed))
	var s int64
	for i := 0; i <= stream; i++ {
		s = seeds.Int63()
	}
	return s
}

// ResourceSeed returns the seed for the run's resource coordinator. It is
// independent of the streams the Engine uses internally.
func (c Config) ResourceSeed() int64 { return c.streamSeed(streamResources) }
