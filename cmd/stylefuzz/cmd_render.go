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
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/render"
)

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "render")
	defer logger.Close()

	root := args[0]
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(root, "screenshots")
	}

	n, err := renderDir(cmd.Context(), cfg.Render, root, out, logger.Slog())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d pages to %s\n", n, out)
	return nil
}

// renderDir starts a browser, renders every page under root, and shuts
// the browser down.
func renderDir(ctx context.Context, cfg render.Config, root, out string, logger *slog.Logger) (int, error) {
	renderer, err := render.NewRenderer(cfg, logger)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("browser close failed", slog.String("error", err.Error()))
		}
	}()
	return renderer.Dir(ctx, root, out)
}
