// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

// QTable maps a state key to per-action values. Missing entries read as 0.
//
// Thread Safety: Not safe for concurrent use.
type QTable struct {
	values map[string]map[string]float64
}

// NewQTable returns an empty table.
func NewQTable() *QTable {
	return &QTable{values: make(map[string]map[string]float64)}
}

// Get returns Q(state, action), 0 when unseen.
func (q *QTable) Get(state, action string) float64 {
	return q.values[state][action]
}

// Set stores Q(state, action), creating the state row lazily.
func (q *QTable) Set(state, action string, v float64) {
	row, ok := q.values[state]
	if !ok {
		row = make(map[string]float64)
		q.values[state] = row
	}
	row[action] = v
}

// Max returns the largest value over actions for state, treating unseen
// entries as 0. It returns 0 for an empty action list.
func (q *QTable) Max(state string, actions []Action) float64 {
	if len(actions) == 0 {
		return 0
	}
	best := q.Get(state, actions[0].Key())
	for _, a := range actions[1:] {
		if v := q.Get(state, a.Key()); v > best {
			best = v
		}
	}
	return best
}

// States returns the number of states with at least one stored value.
func (q *QTable) States() int {
	return len(q.values)
}

// Snapshot returns a deep copy of the table.
func (q *QTable) Snapshot() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(q.values))
	for s, row := range q.values {
		cp := make(map[string]float64, len(row))
		for a, v := range row {
			cp[a] = v
		}
		out[s] = cp
	}
	return out
}
