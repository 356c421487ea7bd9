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
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "stylefuzz",
		Short: "Reinforcement-learning fuzzer for CSS design variants",
		Long: `stylefuzz mutates a seed stylesheet and page with a Q-learning
agent, rewarding design-guideline compliance, style diversity and
resource coverage, and saves every improvement as a CSS/HTML pair.`,
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a search from the seed stylesheet and page",
		RunE:  runSearchCmd,
	}

	renderCmd = &cobra.Command{
		Use:   "render [dir]",
		Short: "Capture a PNG screenshot of every HTML page under dir",
		Args:  cobra.ExactArgs(1),
		RunE:  runRenderCmd,
	}

	variantsCmd = &cobra.Command{
		Use:   "variants",
		Short: "Inspect the variant ledger",
	}

	variantsListCmd = &cobra.Command{
		Use:   "list [run-id]",
		Short: "List runs, or the saved variants of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVariantsListCmd,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("STYLEFUZZ_CONFIG"),
		"Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")

	runCmd.Flags().Int("episodes", 0, "Number of episodes")
	runCmd.Flags().Int("steps", 0, "Steps per episode")
	runCmd.Flags().Int64("seed", 0, "Random seed for the whole run")
	runCmd.Flags().Float64("diversity-weight", 0, "Probability of scoring diversity instead of guidelines")
	runCmd.Flags().String("css", "", "Seed stylesheet")
	runCmd.Flags().String("html", "", "Seed page")
	runCmd.Flags().String("icons", "", "Icon directory (*.svg, recursive)")
	runCmd.Flags().String("images", "", "Image directory (png/jpg/jpeg)")
	runCmd.Flags().String("output", "", "Output directory")
	runCmd.Flags().String("ledger", "", "Ledger directory; empty string disables the ledger")
	runCmd.Flags().String("run-id", "", "Run identifier (generated when empty)")
	runCmd.Flags().Bool("no-typography", false, "Disable typography actions and state")
	runCmd.Flags().Bool("trace", false, "Create run and episode spans")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus /metrics on this address during the run")
	runCmd.Flags().Bool("screenshots", false, "Render every saved variant to PNG after the run")

	renderCmd.Flags().String("out", "", "Screenshot directory (default <dir>/screenshots)")
	renderCmd.Flags().String("browser-url", "", "Connect to a running Chrome instead of launching one")
	renderCmd.Flags().Int("concurrency", 0, "Pages rendered at once")

	variantsListCmd.Flags().String("ledger", "", "Ledger directory (default from config)")

	variantsCmd.AddCommand(variantsListCmd)
	rootCmd.AddCommand(runCmd, renderCmd, variantsCmd)
}
