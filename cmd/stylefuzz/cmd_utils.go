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
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/stylefuzz/pkg/logging"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/config"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/telemetry"
)

// loadConfig resolves the config file, env, and the flags the user set
// on cmd. Unset flags never override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configPath, func(c *config.Config) {
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		applyRunFlags(cmd, c)
	})
}

// applyRunFlags copies changed run flags into c. Flags absent from cmd
// are skipped, so other commands can share it.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("episodes") {
		c.Search.Episodes, _ = flags.GetInt("episodes")
	}
	if changed("steps") {
		c.Search.StepsPerEpisode, _ = flags.GetInt("steps")
	}
	if changed("seed") {
		c.Search.Seed, _ = flags.GetInt64("seed")
	}
	if changed("diversity-weight") {
		c.Search.DiversityWeight, _ = flags.GetFloat64("diversity-weight")
	}
	if changed("run-id") {
		c.Search.RunID, _ = flags.GetString("run-id")
	}
	if changed("no-typography") {
		off, _ := flags.GetBool("no-typography")
		c.Search.Learning.Typography = !off
	}
	if changed("css") {
		c.Inputs.SeedCSS, _ = flags.GetString("css")
	}
	if changed("html") {
		c.Inputs.SeedHTML, _ = flags.GetString("html")
	}
	if changed("icons") {
		c.Inputs.IconDir, _ = flags.GetString("icons")
	}
	if changed("images") {
		c.Inputs.ImageDir, _ = flags.GetString("images")
	}
	if changed("output") {
		c.Output.Dir, _ = flags.GetString("output")
	}
	if changed("ledger") {
		c.Output.LedgerPath, _ = flags.GetString("ledger")
	}
	if changed("trace") {
		c.Observability.TracingEnabled, _ = flags.GetBool("trace")
	}
	if changed("metrics-addr") {
		c.Observability.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if changed("browser-url") {
		c.Render.BrowserURL, _ = flags.GetString("browser-url")
	}
	if changed("concurrency") {
		c.Render.Concurrency, _ = flags.GetInt("concurrency")
	}
}

// newLogger builds the command's logger. Callers must Close it.
func newLogger(cfg config.Config, service string) *logging.Logger {
	return logging.New(cfg.LoggerConfig(service))
}

// startMetricsServer serves /metrics on addr until the returned stop
// function is called.
//
// The handler is the telemetry Prometheus handler when that exporter is
// active, otherwise the default registry, which carries the search
// collectors either way.
func startMetricsServer(addr string, logger *slog.Logger) (stop func(context.Context) error, bound string, err error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		handler = promhttp.Handler()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(handler))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return srv.Shutdown, ln.Addr().String(), nil
}
