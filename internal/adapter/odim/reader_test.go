package odim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/radar-point/internal/domain"
)

const testProjDef = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

var testLayout = Config{
	DatasetPath: "/dataset1/data1/data",
	WhereGroup:  "/where",
	WhatGroup:   "/dataset1/what",
	HowGroup:    "/how",
}

// fakeNode is an in-memory container tree standing in for an opened file.
type fakeNode struct {
	attrs    map[string]any
	children map[string]*fakeNode
	vars     map[string]any
}

func (f *fakeNode) child(name string) (node, error) {
	c, ok := f.children[name]
	if !ok {
		return nil, fmt.Errorf("no such group %q", name)
	}
	return c, nil
}

func (f *fakeNode) attr(name string) (any, bool) {
	v, ok := f.attrs[name]
	return v, ok
}

func (f *fakeNode) values(name string) (any, error) {
	v, ok := f.vars[name]
	if !ok {
		return nil, fmt.Errorf("no such variable %q", name)
	}
	return v, nil
}

// validTree builds a minimal well-formed composite.
func validTree() *fakeNode {
	return &fakeNode{
		children: map[string]*fakeNode{
			"where": {attrs: map[string]any{
				"projdef": testProjDef,
				"UL_lon":  22.0,
				"UL_lat":  44.0,
				"xscale":  500.0,
				"yscale":  500.0,
			}},
			"how": {attrs: map[string]any{
				"endepochs": int64(1718884800),
			}},
			"dataset1": {
				children: map[string]*fakeNode{
					"what": {attrs: map[string]any{
						"gain":     0.5,
						"offset":   -32.0,
						"nodata":   255.0,
						"undetect": 0.0,
						"enddate":  "20240620",
						"endtime":  "120000",
					}},
					"data1": {vars: map[string]any{
						"data": [][]uint8{{255, 0}, {140, 90}},
					}},
				},
			},
		},
	}
}

func parseTree(t *testing.T, tree *fakeNode) (*domain.GridFile, error) {
	t.Helper()
	p := parser{path: "/data/Composite.20240620.1200.h5", cfg: testLayout}
	return p.parse(tree)
}

func TestParseValidComposite(t *testing.T) {
	g, err := parseTree(t, validTree())
	require.NoError(t, err)

	assert.Equal(t, "Composite.20240620.1200.h5", g.Source)
	assert.Equal(t, testProjDef, g.ProjDef)
	assert.Equal(t, domain.Geo{Lat: 44.0, Lon: 22.0}, g.UpperLeft)
	assert.Equal(t, 500.0, g.XScale)
	assert.Equal(t, 500.0, g.YScale)
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 2, g.Cols)
	assert.Equal(t, [][]float64{{255, 0}, {140, 90}}, g.Cells)
	assert.Equal(t, domain.Calibration{Gain: 0.5, Offset: -32, NoData: 255, Undetect: 0}, g.Calibration)
	assert.Equal(t, int64(1718884800), g.EndEpoch)
	assert.Equal(t, "20240620", g.EndDate)
	assert.Equal(t, "120000", g.EndTime)
}

func TestParseMissingRequiredAttributes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeNode)
		detail string
	}{
		{
			"projdef",
			func(f *fakeNode) { delete(f.children["where"].attrs, "projdef") },
			"/where/projdef",
		},
		{
			"UL_lon",
			func(f *fakeNode) { delete(f.children["where"].attrs, "UL_lon") },
			"/where/UL_lon",
		},
		{
			"UL_lat",
			func(f *fakeNode) { delete(f.children["where"].attrs, "UL_lat") },
			"/where/UL_lat",
		},
		{
			"xscale",
			func(f *fakeNode) { delete(f.children["where"].attrs, "xscale") },
			"/where/xscale",
		},
		{
			"yscale",
			func(f *fakeNode) { delete(f.children["where"].attrs, "yscale") },
			"/where/yscale",
		},
		{
			"gain",
			func(f *fakeNode) { delete(f.children["dataset1"].children["what"].attrs, "gain") },
			"/dataset1/what/gain",
		},
		{
			"offset",
			func(f *fakeNode) { delete(f.children["dataset1"].children["what"].attrs, "offset") },
			"/dataset1/what/offset",
		},
		{
			"nodata",
			func(f *fakeNode) { delete(f.children["dataset1"].children["what"].attrs, "nodata") },
			"/dataset1/what/nodata",
		},
		{
			"undetect",
			func(f *fakeNode) { delete(f.children["dataset1"].children["what"].attrs, "undetect") },
			"/dataset1/what/undetect",
		},
		{
			"endepochs",
			func(f *fakeNode) { delete(f.children["how"].attrs, "endepochs") },
			"/how/endepochs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := validTree()
			tt.mutate(tree)

			_, err := parseTree(t, tree)

			require.Error(t, err)
			var formatErr *domain.FormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, "/data/Composite.20240620.1200.h5", formatErr.Path)
			assert.Contains(t, formatErr.Detail, tt.detail)
		})
	}
}

func TestParseMissingGroups(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeNode)
	}{
		{"where group", func(f *fakeNode) { delete(f.children, "where") }},
		{"how group", func(f *fakeNode) { delete(f.children, "how") }},
		{"what group", func(f *fakeNode) { delete(f.children["dataset1"].children, "what") }},
		{"dataset group", func(f *fakeNode) { delete(f.children["dataset1"].children, "data1") }},
		{"dataset variable", func(f *fakeNode) {
			delete(f.children["dataset1"].children["data1"].vars, "data")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := validTree()
			tt.mutate(tree)

			_, err := parseTree(t, tree)

			var formatErr *domain.FormatError
			require.True(t, errors.As(err, &formatErr))
		})
	}
}

func TestParseMistypedAttributes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeNode)
	}{
		{"projdef numeric", func(f *fakeNode) { f.children["where"].attrs["projdef"] = 3857.0 }},
		{"projdef non-ascii", func(f *fakeNode) { f.children["where"].attrs["projdef"] = "+proj=мерк" }},
		{"gain textual", func(f *fakeNode) {
			f.children["dataset1"].children["what"].attrs["gain"] = "0.5"
		}},
		{"endepochs fractional", func(f *fakeNode) { f.children["how"].attrs["endepochs"] = 1718884800.25 }},
		{"xscale zero", func(f *fakeNode) { f.children["where"].attrs["xscale"] = 0.0 }},
		{"yscale negative", func(f *fakeNode) { f.children["where"].attrs["yscale"] = -500.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := validTree()
			tt.mutate(tree)

			_, err := parseTree(t, tree)

			var formatErr *domain.FormatError
			require.True(t, errors.As(err, &formatErr))
		})
	}
}

func TestParseAcceptsAlternativeAttributeForms(t *testing.T) {
	// Real producers vary: narrow integers, single-element arrays, NUL-padded
	// text. All of these must parse to the same grid.
	tree := validTree()
	where := tree.children["where"].attrs
	what := tree.children["dataset1"].children["what"].attrs
	where["xscale"] = []float64{500}
	where["UL_lon"] = float32(22.0)
	what["nodata"] = uint8(255)
	what["undetect"] = int32(0)
	what["enddate"] = []byte("20240620\x00")
	tree.children["how"].attrs["endepochs"] = float64(1718884800)

	g, err := parseTree(t, tree)

	require.NoError(t, err)
	assert.Equal(t, 500.0, g.XScale)
	assert.Equal(t, 22.0, g.UpperLeft.Lon)
	assert.Equal(t, 255.0, g.Calibration.NoData)
	assert.Equal(t, 0.0, g.Calibration.Undetect)
	assert.Equal(t, "20240620", g.EndDate)
	assert.Equal(t, int64(1718884800), g.EndEpoch)
}

func TestParseTimestampTextIsOptional(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		tree := validTree()
		what := tree.children["dataset1"].children["what"].attrs
		delete(what, "enddate")
		delete(what, "endtime")

		g, err := parseTree(t, tree)

		require.NoError(t, err)
		assert.Empty(t, g.EndDate)
		assert.Empty(t, g.EndTime)
	})

	t.Run("unreadable is dropped, not fatal", func(t *testing.T) {
		tree := validTree()
		tree.children["dataset1"].children["what"].attrs["enddate"] = 20240620.0

		g, err := parseTree(t, tree)

		require.NoError(t, err)
		assert.Empty(t, g.EndDate)
		assert.Equal(t, "120000", g.EndTime)
	})
}

func TestParseDatasetShape(t *testing.T) {
	setData := func(f *fakeNode, v any) {
		f.children["dataset1"].children["data1"].vars["data"] = v
	}

	t.Run("wider cell types pass through", func(t *testing.T) {
		tree := validTree()
		setData(tree, [][]uint16{{65535, 0, 1}, {140, 90, 7}})

		g, err := parseTree(t, tree)

		require.NoError(t, err)
		assert.Equal(t, 2, g.Rows)
		assert.Equal(t, 3, g.Cols)
		assert.Equal(t, 65535.0, g.Cells[0][0])
	})

	t.Run("one-dimensional data rejected", func(t *testing.T) {
		tree := validTree()
		setData(tree, []uint8{1, 2, 3})

		_, err := parseTree(t, tree)

		var formatErr *domain.FormatError
		require.True(t, errors.As(err, &formatErr))
		assert.Contains(t, formatErr.Detail, "/dataset1/data1/data")
	})

	t.Run("ragged data rejected", func(t *testing.T) {
		tree := validTree()
		setData(tree, [][]uint8{{1, 2}, {3}})

		_, err := parseTree(t, tree)

		var formatErr *domain.FormatError
		require.True(t, errors.As(err, &formatErr))
	})
}

func TestReadUnopenableFile(t *testing.T) {
	reader := NewReader(testLayout)

	_, err := reader.Read("/nonexistent/Composite.20240620.1200.h5")

	require.Error(t, err)
	var formatErr *domain.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "/nonexistent/Composite.20240620.1200.h5", formatErr.Path)
	assert.Equal(t, "open container", formatErr.Detail)
}
