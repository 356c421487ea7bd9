// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns saved variant pages into screenshots.
//
// A loopback HTTP server serves the variant directory so that relative
// stylesheet and image references resolve, and a headless Chrome driven
// through Rod captures each page at a fixed viewport.
package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/errgroup"
)

// ErrNoPages is returned by Dir when no .html files are found.
var ErrNoPages = errors.New("no pages to render")

// Config controls screenshot rendering.
type Config struct {
	// Width and Height are the viewport in CSS pixels.
	Width  int `json:"width" yaml:"width" validate:"gte=1"`
	Height int `json:"height" yaml:"height" validate:"gte=1"`

	// Scale is the device scale factor.
	Scale float64 `json:"scale" yaml:"scale" validate:"gt=0"`

	// Concurrency bounds the number of pages rendered at once.
	Concurrency int `json:"concurrency" yaml:"concurrency" validate:"gte=1"`

	// Timeout bounds each page load and capture.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// BrowserURL connects to a running Chrome instead of launching one.
	BrowserURL string `json:"browser_url" yaml:"browser_url"`
}

// DefaultConfig returns a 1280x800 viewport at 2x scale.
func DefaultConfig() Config {
	return Config{
		Width:       1280,
		Height:      800,
		Scale:       2,
		Concurrency: 4,
		Timeout:     30 * time.Second,
	}
}

// Job is one page to capture.
type Job struct {
	// Page is the path relative to the served root, with forward slashes.
	Page string

	// Output is where the PNG is written.
	Output string
}

// FindPages lists every .html file under root as a Job writing
// <outDir>/<relative dir>/<stem>.png. Jobs are sorted by Page.
func FindPages(root, outDir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(rel, filepath.Ext(rel))
		jobs = append(jobs, Job{
			Page:   filepath.ToSlash(rel),
			Output: filepath.Join(outDir, stem+".png"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find pages in %s: %w", root, err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Page < jobs[j].Page })
	return jobs, nil
}

// Server serves a directory over loopback HTTP.
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// NewHandler returns a gin handler serving root under /files and a
// /healthz probe.
func NewHandler(root string) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.StaticFS("/files", http.Dir(root))
	return router
}

// Serve starts serving root on a free loopback port.
func Serve(root string) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	s := &Server{
		srv:      &http.Server{Handler: NewHandler(root), ReadHeaderTimeout: 10 * time.Second},
		listener: ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("render server stopped", slog.String("error", err.Error()))
		}
	}()
	return s, nil
}

// URL returns the address a page relative to root is served at.
func (s *Server) URL(page string) string {
	return "http://" + s.listener.Addr().String() + "/files/" + strings.TrimPrefix(page, "/")
}

// Close stops the server.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Renderer captures pages with headless Chrome.
//
// Thread Safety: Safe for concurrent use; each capture opens its own tab.
type Renderer struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *slog.Logger
}

// NewRenderer launches (or connects to) Chrome.
func NewRenderer(cfg Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{cfg: cfg, logger: logger}
	u := cfg.BrowserURL
	if u == "" {
		r.lnch = launcher.New().Headless(true)
		var err error
		if u, err = r.lnch.Launch(); err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		logger.Info("launched headless chrome", slog.String("url", u))
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.browser = b
	return r, nil
}

// Capture loads url and writes a PNG screenshot to out.
func (r *Renderer) Capture(ctx context.Context, url, out string) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	page, err := r.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.Width,
		Height:            r.cfg.Height,
		DeviceScaleFactor: r.cfg.Scale,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		r.logger.Warn("page load incomplete", slog.String("url", url), slog.String("error", err.Error()))
	}
	img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", url, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, img, 0o644)
}

// Close shuts the browser down.
func (r *Renderer) Close() error {
	err := r.browser.Close()
	if r.lnch != nil {
		r.lnch.Kill()
	}
	return err
}

// Dir renders every page under root into outDir.
//
// Inputs:
//
//	ctx - Cancels outstanding captures.
//	root - Directory containing variant pages and their assets.
//	outDir - Where screenshots are written, mirroring root's layout.
//
// Outputs:
//
//	int - Number of screenshots written.
//	error - ErrNoPages, or the first capture failure.
func (r *Renderer) Dir(ctx context.Context, root, outDir string) (int, error) {
	jobs, err := FindPages(root, outDir)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoPages, root)
	}
	srv, err := Serve(root)
	if err != nil {
		return 0, err
	}
	defer srv.Close(context.Background())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if err := r.Capture(gctx, srv.URL(job.Page), job.Output); err != nil {
				return fmt.Errorf("%s: %w", job.Page, err)
			}
			r.logger.Debug("rendered page", slog.String("page", job.Page), slog.String("output", job.Output))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(jobs), nil
}
