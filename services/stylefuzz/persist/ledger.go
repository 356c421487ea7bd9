// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const ledgerPrefix = "variant/"

// Store is the key-value surface the ledger needs.
type Store interface {
	PutJSON(key string, v any) error
	Scan(prefix string, fn func(key string, value []byte) error) error
}

// Ledger records every saved variant in a Store after the wrapped Sink has
// written it.
//
// Thread Safety: As safe as the wrapped Sink; the Store must be safe for
// concurrent use.
type Ledger struct {
	next  Sink
	store Store
}

// NewLedger wraps next. Use Discard as next to record without writing
// files.
func NewLedger(next Sink, store Store) *Ledger {
	return &Ledger{next: next, store: store}
}

// LedgerKey returns the key a record is stored under. Keys sort by run,
// kind, episode and step.
func LedgerKey(rec Record) string {
	return fmt.Sprintf("%s%s/%s/%06d/%06d", ledgerPrefix, rec.RunID, rec.Kind, rec.Episode, rec.Step)
}

// Save implements Sink.
func (l *Ledger) Save(ctx context.Context, v Variant) (Record, error) {
	rec, err := l.next.Save(ctx, v)
	if err != nil {
		return rec, err
	}
	if err := l.store.PutJSON(LedgerKey(rec), rec); err != nil {
		return rec, fmt.Errorf("record variant: %w", err)
	}
	return rec, nil
}

// List returns the records of runID in key order. An empty runID lists
// every run.
func (l *Ledger) List(runID string) ([]Record, error) {
	return ListRecords(l.store, runID)
}

// ListRecords reads records of runID from store.
func ListRecords(store Store, runID string) ([]Record, error) {
	prefix := ledgerPrefix
	if runID != "" {
		prefix += runID + "/"
	}
	var out []Record
	err := store.Scan(prefix, func(key string, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Runs returns the distinct run IDs in store, sorted.
func Runs(store Store) ([]string, error) {
	seen := map[string]bool{}
	err := store.Scan(ledgerPrefix, func(key string, _ []byte) error {
		rest := strings.TrimPrefix(key, ledgerPrefix)
		if i := strings.IndexByte(rest, '/'); i > 0 {
			seen[rest[:i]] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	runs := make([]string, 0, len(seen))
	for r := range seen {
		runs = append(runs, r)
	}
	sort.Strings(runs)
	return runs, nil
}
