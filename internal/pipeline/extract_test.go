package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/radar-point/internal/domain"
	"github.com/couchcryptid/radar-point/internal/observability"
	"github.com/couchcryptid/radar-point/internal/pipeline"
)

type fakeReader struct {
	grid *domain.GridFile
	err  error
}

func (f *fakeReader) Read(string) (*domain.GridFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grid, nil
}

type fakeResolver struct {
	pixel domain.PixelIndex
	err   error
}

func (f *fakeResolver) Resolve(*domain.GridFile, domain.Geo) (domain.PixelIndex, error) {
	if f.err != nil {
		return domain.PixelIndex{}, f.err
	}
	return f.pixel, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// testGrid is a 2x2 composite with one cell of each kind plus a measured pair.
func testGrid() *domain.GridFile {
	return &domain.GridFile{
		Source:      "Composite.20240620.1200.h5",
		ProjDef:     "+proj=merc +a=6378137 +b=6378137 +units=m +no_defs",
		UpperLeft:   domain.Geo{Lat: 44.0, Lon: 22.0},
		XScale:      500,
		YScale:      500,
		Rows:        2,
		Cols:        2,
		Calibration: domain.Calibration{Gain: 0.5, Offset: -32, NoData: 255, Undetect: 0},
		EndEpoch:    1718884800,
		Cells: [][]float64{
			{255, 0},
			{140, 90},
		},
	}
}

func TestExtractorExtract(t *testing.T) {
	target := domain.Geo{Lat: 43.9, Lon: 22.1}

	tests := []struct {
		name         string
		pixel        domain.PixelIndex
		wantCategory domain.Category
		wantValue    float64
	}{
		{"measured cell", domain.PixelIndex{Row: 1, Col: 0}, domain.CategoryMeasured, 38.0},
		{"second measured cell", domain.PixelIndex{Row: 1, Col: 1}, domain.CategoryMeasured, 13.0},
		{"nodata cell", domain.PixelIndex{Row: 0, Col: 0}, domain.CategoryNoData, 0},
		{"undetect cell", domain.PixelIndex{Row: 0, Col: 1}, domain.CategoryUndetect, 0},
		{"row past the grid", domain.PixelIndex{Row: 2, Col: 0}, domain.CategoryOutOfGrid, 0},
		{"negative indices", domain.PixelIndex{Row: -1, Col: -1}, domain.CategoryOutOfGrid, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := pipeline.NewExtractor(
				&fakeReader{grid: testGrid()},
				&fakeResolver{pixel: tt.pixel},
				quietLogger(),
				newTestMetrics(),
			)

			reading, err := ext.Extract(context.Background(), "/data/Composite.20240620.1200.h5", target)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, reading.Category)
			assert.Equal(t, tt.wantValue, reading.Value)
			assert.Equal(t, "Composite.20240620.1200.h5", reading.Source)
			assert.Equal(t, time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC), reading.At)
		})
	}
}

func TestExtractorExtract_ReaderError(t *testing.T) {
	readErr := &domain.FormatError{Path: "/data/bad.h5", Detail: "missing attribute /where/projdef"}
	ext := pipeline.NewExtractor(
		&fakeReader{err: readErr},
		&fakeResolver{},
		quietLogger(),
		newTestMetrics(),
	)

	_, err := ext.Extract(context.Background(), "/data/bad.h5", domain.Geo{})

	require.Error(t, err)
	var formatErr *domain.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "/data/bad.h5", formatErr.Path)
}

func TestExtractorExtract_ResolverError(t *testing.T) {
	resolveErr := &domain.ProjectionError{Def: "+proj=bogus", Err: errors.New("unsupported")}
	ext := pipeline.NewExtractor(
		&fakeReader{grid: testGrid()},
		&fakeResolver{err: resolveErr},
		quietLogger(),
		newTestMetrics(),
	)

	_, err := ext.Extract(context.Background(), "/data/Composite.20240620.1200.h5", domain.Geo{})

	require.Error(t, err)
	var projErr *domain.ProjectionError
	require.True(t, errors.As(err, &projErr))
}

func TestExtractorExtract_ContextCancelled(t *testing.T) {
	ext := pipeline.NewExtractor(
		&fakeReader{grid: testGrid()},
		&fakeResolver{},
		quietLogger(),
		newTestMetrics(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.Extract(ctx, "/data/Composite.20240620.1200.h5", domain.Geo{})

	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractorExtract_WarnsOnTimestampDrift(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	grid := testGrid()
	grid.EndDate = "20240620"
	grid.EndTime = "115500" // five minutes behind the epoch attribute

	ext := pipeline.NewExtractor(
		&fakeReader{grid: grid},
		&fakeResolver{pixel: domain.PixelIndex{Row: 1, Col: 0}},
		logger,
		newTestMetrics(),
	)

	reading, err := ext.Extract(context.Background(), "/data/Composite.20240620.1200.h5", domain.Geo{})

	require.NoError(t, err)
	// The epoch stays authoritative.
	assert.Equal(t, time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC), reading.At)
	assert.Contains(t, buf.String(), "disagrees")
}

func TestExtractorExtract_ConsistentTimestampTextIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	grid := testGrid()
	grid.EndDate = "20240620"
	grid.EndTime = "120000"

	ext := pipeline.NewExtractor(
		&fakeReader{grid: grid},
		&fakeResolver{pixel: domain.PixelIndex{Row: 1, Col: 0}},
		logger,
		newTestMetrics(),
	)

	_, err := ext.Extract(context.Background(), "/data/Composite.20240620.1200.h5", domain.Geo{})

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "disagrees")
}
