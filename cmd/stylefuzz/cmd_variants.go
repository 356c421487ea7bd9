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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/persist"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/storage/badger"
)

func runVariantsListCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Output.LedgerPath == "" {
		return fmt.Errorf("no ledger configured; set output.ledger_path or --ledger")
	}

	db, err := badger.Open(badger.DefaultConfig(cfg.Output.LedgerPath))
	if err != nil {
		return err
	}
	defer db.Close()

	runID := ""
	if len(args) == 1 {
		runID = args[0]
	}
	return listVariants(cmd.OutOrStdout(), db, runID)
}

// listVariants prints every run ID, or the records of one run.
func listVariants(w io.Writer, store persist.Store, runID string) error {
	if runID == "" {
		runs, err := persist.Runs(store)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintln(w, r)
		}
		return nil
	}

	records, err := persist.ListRecords(store, runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(w, "No variants recorded for run %s.\n", runID)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tEPISODE\tSTEP\tREWARD\tICONS\tIMAGES\tCSS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%d/%d\t%d/%d\t%s\n",
			r.Kind, r.Episode, r.Step, r.Reward,
			r.IconsUsed, r.Icons, r.ImagesUsed, r.Images, r.CSSPath)
	}
	return tw.Flush()
}
