package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/radar-point/internal/domain"
	"github.com/couchcryptid/radar-point/internal/observability"
)

// MetadataReader opens one composite file and returns its validated grid.
type MetadataReader interface {
	Read(path string) (*domain.GridFile, error)
}

// PixelResolver maps a WGS-84 point onto a grid's pixel indices.
type PixelResolver interface {
	Resolve(g *domain.GridFile, target domain.Geo) (domain.PixelIndex, error)
}

// Extractor turns one composite file into one Reading: read and validate the
// grid, resolve the target to a pixel, classify and decode the cell.
type Extractor struct {
	reader   MetadataReader
	resolver PixelResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewExtractor creates an Extractor with the given collaborators.
func NewExtractor(reader MetadataReader, resolver PixelResolver, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{
		reader:   reader,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// Extract produces the Reading for target from the composite at path. A
// target outside the grid yields an out-of-grid Reading, not an error;
// errors mean the file itself was unusable.
func (e *Extractor) Extract(ctx context.Context, path string, target domain.Geo) (domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reading{}, err
	}

	g, err := e.reader.Read(path)
	if err != nil {
		return domain.Reading{}, err
	}
	e.checkTimestampText(g)

	pixel, err := e.resolver.Resolve(g, target)
	if err != nil {
		return domain.Reading{}, err
	}
	e.logger.Debug("resolved pixel",
		"file", g.Source,
		"row", pixel.Row,
		"col", pixel.Col,
	)

	reading := domain.Reading{At: g.Timestamp(), Source: g.Source}
	if raw, inside := g.At(pixel); inside {
		reading.Category, reading.Value = domain.Decode(raw, g.Calibration)
	} else {
		reading.Category = domain.CategoryOutOfGrid
	}

	e.metrics.Readings.WithLabelValues(reading.Category.String()).Inc()
	return reading, nil
}

// checkTimestampText flags files whose textual end date/time disagrees with
// the epoch attribute. The epoch stays authoritative either way; the warning
// exists because a drifting producer clock tends to show up here first.
func (e *Extractor) checkTimestampText(g *domain.GridFile) {
	if g.EndDate == "" || g.EndTime == "" {
		return
	}
	text := g.EndDate + g.EndTime
	epoch := g.Timestamp().Format("20060102150405")
	if text != epoch {
		e.logger.Warn("textual end timestamp disagrees with epoch attribute",
			"file", g.Source,
			"text", text,
			"epoch", epoch,
		)
	}
}
