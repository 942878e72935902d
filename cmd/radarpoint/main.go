// Command radarpoint extracts the radar reflectivity at a configured
// geographic point from a directory of ODIM composite files and prints the
// readings that reach the configured threshold, one line per file.
//
// Usage:
//
//	radarpoint [scan]          scan the data directory and print the report
//	radarpoint fetch DATE      download composites for DATE (2006-01-02)
//	radarpoint inspect FILE    print one file's metadata and decoded reading
//
// Configuration comes from RADARPOINT_* environment variables, optionally
// layered over a YAML file named by RADARPOINT_CONFIG. Logs go to stderr;
// stdout carries only the report and inspect output.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/couchcryptid/radar-point/internal/adapter/archive"
	"github.com/couchcryptid/radar-point/internal/adapter/odim"
	"github.com/couchcryptid/radar-point/internal/config"
	"github.com/couchcryptid/radar-point/internal/domain"
	"github.com/couchcryptid/radar-point/internal/geo"
	"github.com/couchcryptid/radar-point/internal/observability"
	"github.com/couchcryptid/radar-point/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics, runID, os.Args[1:]); err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, runID string, args []string) error {
	cmd := "scan"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "scan":
		return runScan(ctx, cfg, logger, metrics, runID)
	case "fetch":
		if len(args) != 2 {
			return fmt.Errorf("usage: radarpoint fetch DATE (2006-01-02)")
		}
		return runFetch(ctx, cfg, logger, metrics, runID, args[1])
	case "inspect":
		if len(args) != 2 {
			return fmt.Errorf("usage: radarpoint inspect FILE")
		}
		return runInspect(cfg, logger, args[1])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// runScan extracts the target reading from every composite in the data dir
// and prints the qualifying lines to stdout.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, runID string) error {
	extractor := pipeline.NewExtractor(newReader(cfg), geo.NewResolver(), logger, metrics)
	p := pipeline.New(extractor, pipeline.Params{
		DataDir:    cfg.DataDir,
		FileSuffix: cfg.FileSuffix,
		Target:     domain.Geo{Lat: cfg.TargetLat, Lon: cfg.TargetLon},
		Threshold:  cfg.ThresholdDBZ,
		FailFast:   cfg.FailFast,
	}, logger, metrics)

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report)
	pushMetrics(cfg, logger, metrics, runID)
	return nil
}

// runFetch downloads the day's composites into the data dir. Per-file
// download failures are reported in the summary, not as an error.
func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, runID, date string) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	client := archive.NewClient(cfg.ServerURL, cfg.HTTPTimeout, logger, metrics)
	stats, err := client.FetchDate(ctx, date, cfg.DataDir)
	if err != nil {
		return err
	}

	logger.Info("fetch finished",
		"found", stats.Found,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	pushMetrics(cfg, logger, metrics, runID)
	return nil
}

// runInspect prints one file's metadata, the pixel the configured target
// resolves to, and the decoded reading.
func runInspect(cfg *config.Config, logger *slog.Logger, path string) error {
	g, err := newReader(cfg).Read(path)
	if err != nil {
		return err
	}

	target := domain.Geo{Lat: cfg.TargetLat, Lon: cfg.TargetLon}
	pixel, err := geo.NewResolver().Resolve(g, target)
	if err != nil {
		return err
	}
	logger.Debug("resolved pixel", "row", pixel.Row, "col", pixel.Col)

	fmt.Printf("File: %s\n", g.Source)
	fmt.Printf("Acquired (UTC): %s\n", g.Timestamp().Format("2006-01-02 15:04:05"))
	fmt.Printf("Grid: %d rows x %d cols, %.0f x %.0f m/pixel\n", g.Rows, g.Cols, g.YScale, g.XScale)
	fmt.Printf("Upper-left corner: (%.6f, %.6f)\n", g.UpperLeft.Lat, g.UpperLeft.Lon)
	fmt.Printf("Projection: %s\n", g.ProjDef)
	fmt.Printf("Calibration: value = raw * %g + %g (nodata=%g, undetect=%g)\n",
		g.Calibration.Gain, g.Calibration.Offset, g.Calibration.NoData, g.Calibration.Undetect)
	fmt.Printf("Target: (%.6f, %.6f)\n", target.Lat, target.Lon)
	fmt.Printf("Pixel (row, col): (%d, %d)\n", pixel.Row, pixel.Col)

	reading := domain.Reading{At: g.Timestamp(), Category: domain.CategoryOutOfGrid, Source: g.Source}
	if raw, ok := g.At(pixel); ok {
		reading.Category, reading.Value = domain.Decode(raw, g.Calibration)
	}
	fmt.Printf("Reading: %s\n", reading.Describe())
	return nil
}

// printReport writes one line per qualifying reading.
func printReport(w io.Writer, report domain.Report) {
	for _, r := range report.Readings {
		fmt.Fprintf(w, "Time (UTC): %s \t Value: %s \t File: %s\n",
			r.At.Format("2006-01-02 15:04:05"), r.Describe(), r.Source)
	}
}

// pushMetrics sends run metrics to the Pushgateway when one is configured.
// Push failures are logged, never fatal.
func pushMetrics(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, runID string) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(cfg.PushgatewayURL, runID); err != nil {
		logger.Warn("metrics push failed", "gateway", cfg.PushgatewayURL, "error", err)
	}
}

func newReader(cfg *config.Config) *odim.Reader {
	return odim.NewReader(odim.Config{
		DatasetPath: cfg.DatasetPath,
		WhereGroup:  cfg.WhereGroup,
		WhatGroup:   cfg.WhatGroup,
		HowGroup:    cfg.HowGroup,
	})
}
