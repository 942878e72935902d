// Package pipeline orchestrates the scan: enumerate composites, extract one
// reading per file, and assemble the threshold report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/radar-point/internal/domain"
	"github.com/couchcryptid/radar-point/internal/observability"
)

// FileExtractor produces the Reading for one composite file.
type FileExtractor interface {
	Extract(ctx context.Context, path string, target domain.Geo) (domain.Reading, error)
}

// Params fixes the scan inputs for a run.
type Params struct {
	DataDir    string
	FileSuffix string
	Target     domain.Geo
	Threshold  float64

	// FailFast aborts the run on the first unusable file instead of
	// skipping it.
	FailFast bool
}

// Pipeline runs the extraction across a directory of composites.
type Pipeline struct {
	extractor FileExtractor
	params    Params
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline with the given extractor and scan parameters.
func New(extractor FileExtractor, params Params, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		params:    params,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run scans the data directory and builds the report. Directory listing
// order is irrelevant: the report is sorted by acquisition time. With
// FailFast set, the first unusable file aborts the run; otherwise such files
// are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()

	entries, err := os.ReadDir(p.params.DataDir)
	if err != nil {
		return domain.Report{}, fmt.Errorf("scan data dir: %w", err)
	}

	p.logger.Info("scan started",
		"dir", p.params.DataDir,
		"target_lat", p.params.Target.Lat,
		"target_lon", p.params.Target.Lon,
		"threshold_dbz", p.params.Threshold,
		"fail_fast", p.params.FailFast,
	)

	readings := make([]domain.Reading, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return domain.Report{}, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), p.params.FileSuffix) {
			continue
		}
		p.metrics.FilesScanned.Inc()

		path := filepath.Join(p.params.DataDir, entry.Name())
		reading, err := p.extractor.Extract(ctx, path, p.params.Target)
		if err != nil {
			p.metrics.ExtractFailures.Inc()
			if p.params.FailFast {
				return domain.Report{}, fmt.Errorf("extract %s: %w", entry.Name(), err)
			}
			p.logger.Warn("skipping unusable file", "file", entry.Name(), "error", err)
			skipped++
			continue
		}
		readings = append(readings, reading)
	}

	report := domain.BuildReport(p.params.Target, p.params.Threshold, readings)

	p.metrics.ReportEntries.Set(float64(len(report.Readings)))
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("scan finished",
		"readings", len(readings),
		"skipped", skipped,
		"report_entries", len(report.Readings),
		"duration", time.Since(start),
	)
	return report, nil
}
