package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGridFileAt(t *testing.T) {
	g := &GridFile{
		Rows: 2,
		Cols: 3,
		Cells: [][]float64{
			{1, 2, 3},
			{4, 5, 6},
		},
	}

	tests := []struct {
		name   string
		pixel  PixelIndex
		want   float64
		inside bool
	}{
		{"upper left corner", PixelIndex{Row: 0, Col: 0}, 1, true},
		{"lower right corner", PixelIndex{Row: 1, Col: 2}, 6, true},
		{"negative row", PixelIndex{Row: -1, Col: 0}, 0, false},
		{"negative col", PixelIndex{Row: 0, Col: -1}, 0, false},
		{"row equals row count", PixelIndex{Row: 2, Col: 0}, 0, false},
		{"col equals col count", PixelIndex{Row: 0, Col: 3}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, inside := g.At(tt.pixel)
			assert.Equal(t, tt.inside, inside)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGridFileTimestamp(t *testing.T) {
	g := &GridFile{EndEpoch: 1718884800}

	ts := g.Timestamp()

	assert.Equal(t, time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())
}
