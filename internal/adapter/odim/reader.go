// Package odim reads ODIM-style HDF5 radar composites into domain grid files.
//
// A composite is an HDF5 container with attribute groups for geolocation
// (/where), calibration (/dataset1/what) and acquisition metadata (/how),
// plus a 2-D array of stored cell codes. Group and dataset paths vary
// between producers, so they are configured rather than hardwired. The
// parser validates every required attribute up front and reports anything
// missing or mistyped as a *domain.FormatError; a GridFile it returns is
// fully usable.
package odim

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/radar-point/internal/domain"
)

// Config locates the metadata groups and the data array inside a composite.
// Paths are slash-separated from the container root.
type Config struct {
	DatasetPath string // 2-D cell array, e.g. /dataset1/data1/data
	WhereGroup  string // geolocation attributes
	WhatGroup   string // calibration attributes
	HowGroup    string // acquisition attributes
}

// Reader extracts grid files from composites on local disk.
type Reader struct {
	cfg Config
}

// NewReader creates a reader for the given container layout.
func NewReader(cfg Config) *Reader {
	return &Reader{cfg: cfg}
}

// Read opens the composite at path and returns its fully validated grid.
// All failures, including the file being unopenable, surface as
// *domain.FormatError.
func (r *Reader) Read(path string) (*domain.GridFile, error) {
	root, err := netcdf.Open(path)
	if err != nil {
		return nil, &domain.FormatError{Path: path, Detail: "open container", Err: err}
	}
	defer root.Close()

	p := parser{path: path, cfg: r.cfg}
	return p.parse(ncNode{group: root})
}

// ncNode adapts the container library's group handle to the parser's node
// view. It is the only place the library API is touched after Open.
type ncNode struct {
	group api.Group
}

func (n ncNode) child(name string) (node, error) {
	sub, err := n.group.GetGroup(name)
	if err != nil {
		return nil, err
	}
	return ncNode{group: sub}, nil
}

func (n ncNode) attr(name string) (any, bool) {
	return n.group.Attributes().Get(name)
}

func (n ncNode) values(name string) (any, error) {
	v, err := n.group.GetVariable(name)
	if err != nil {
		return nil, err
	}
	return v.Values, nil
}

// parser carries the source path so every failure names the offending file.
type parser struct {
	path string
	cfg  Config
}

func (p parser) parse(root node) (*domain.GridFile, error) {
	g := &domain.GridFile{Source: filepath.Base(p.path)}

	where, err := p.group(root, p.cfg.WhereGroup)
	if err != nil {
		return nil, err
	}
	if g.ProjDef, err = p.stringAttr(where, p.cfg.WhereGroup, "projdef"); err != nil {
		return nil, err
	}
	if g.UpperLeft.Lon, err = p.floatAttr(where, p.cfg.WhereGroup, "UL_lon"); err != nil {
		return nil, err
	}
	if g.UpperLeft.Lat, err = p.floatAttr(where, p.cfg.WhereGroup, "UL_lat"); err != nil {
		return nil, err
	}
	if g.XScale, err = p.scaleAttr(where, p.cfg.WhereGroup, "xscale"); err != nil {
		return nil, err
	}
	if g.YScale, err = p.scaleAttr(where, p.cfg.WhereGroup, "yscale"); err != nil {
		return nil, err
	}

	what, err := p.group(root, p.cfg.WhatGroup)
	if err != nil {
		return nil, err
	}
	if g.Calibration.Gain, err = p.floatAttr(what, p.cfg.WhatGroup, "gain"); err != nil {
		return nil, err
	}
	if g.Calibration.Offset, err = p.floatAttr(what, p.cfg.WhatGroup, "offset"); err != nil {
		return nil, err
	}
	if g.Calibration.NoData, err = p.floatAttr(what, p.cfg.WhatGroup, "nodata"); err != nil {
		return nil, err
	}
	if g.Calibration.Undetect, err = p.floatAttr(what, p.cfg.WhatGroup, "undetect"); err != nil {
		return nil, err
	}

	// enddate/endtime duplicate the epoch in text form. They are kept for
	// diagnostics when present and readable, never as the timestamp source.
	g.EndDate = p.optionalString(what, "enddate")
	g.EndTime = p.optionalString(what, "endtime")

	how, err := p.group(root, p.cfg.HowGroup)
	if err != nil {
		return nil, err
	}
	if g.EndEpoch, err = p.intAttr(how, p.cfg.HowGroup, "endepochs"); err != nil {
		return nil, err
	}

	cells, err := p.dataset(root)
	if err != nil {
		return nil, err
	}
	g.Cells = cells
	g.Rows = len(cells)
	g.Cols = len(cells[0])

	return g, nil
}

func (p parser) dataset(root node) ([][]float64, error) {
	parts := splitPath(p.cfg.DatasetPath)
	if len(parts) == 0 {
		return nil, p.fail("dataset path is empty", nil)
	}
	varName := parts[len(parts)-1]

	holder, err := walk(root, parts[:len(parts)-1])
	if err != nil {
		return nil, p.fail("locate dataset "+p.cfg.DatasetPath, err)
	}
	raw, err := holder.values(varName)
	if err != nil {
		return nil, p.fail("read dataset "+p.cfg.DatasetPath, err)
	}
	cells, err := cellsFrom(raw)
	if err != nil {
		return nil, p.fail("dataset "+p.cfg.DatasetPath, err)
	}
	return cells, nil
}

func (p parser) group(root node, path string) (node, error) {
	n, err := walk(root, splitPath(path))
	if err != nil {
		return nil, p.fail("locate group "+path, err)
	}
	return n, nil
}

func (p parser) floatAttr(n node, group, name string) (float64, error) {
	v, ok := n.attr(name)
	if !ok {
		return 0, p.fail(fmt.Sprintf("missing attribute %s/%s", group, name), nil)
	}
	f, ok := attrFloat(v)
	if !ok {
		return 0, p.fail(fmt.Sprintf("attribute %s/%s has unusable type %T", group, name, v), nil)
	}
	return f, nil
}

// scaleAttr reads a pixel scale, which must be a positive finite number or
// the pixel arithmetic downstream is meaningless. The comparison also
// rejects NaN.
func (p parser) scaleAttr(n node, group, name string) (float64, error) {
	f, err := p.floatAttr(n, group, name)
	if err != nil {
		return 0, err
	}
	if !(f > 0) || math.IsInf(f, 1) {
		return 0, p.fail(fmt.Sprintf("attribute %s/%s must be a positive finite scale, got %v", group, name, f), nil)
	}
	return f, nil
}

func (p parser) intAttr(n node, group, name string) (int64, error) {
	v, ok := n.attr(name)
	if !ok {
		return 0, p.fail(fmt.Sprintf("missing attribute %s/%s", group, name), nil)
	}
	i, ok := attrInt(v)
	if !ok {
		return 0, p.fail(fmt.Sprintf("attribute %s/%s has unusable type %T", group, name, v), nil)
	}
	return i, nil
}

func (p parser) stringAttr(n node, group, name string) (string, error) {
	v, ok := n.attr(name)
	if !ok {
		return "", p.fail(fmt.Sprintf("missing attribute %s/%s", group, name), nil)
	}
	s, ok := attrString(v)
	if !ok {
		return "", p.fail(fmt.Sprintf("attribute %s/%s has unusable type %T", group, name, v), nil)
	}
	if !asciiOnly(s) {
		return "", p.fail(fmt.Sprintf("attribute %s/%s is not printable ASCII", group, name), nil)
	}
	return s, nil
}

// optionalString reads a diagnostic text attribute, returning "" when it is
// absent or unreadable.
func (p parser) optionalString(n node, name string) string {
	v, ok := n.attr(name)
	if !ok {
		return ""
	}
	s, ok := attrString(v)
	if !ok || !asciiOnly(s) {
		return ""
	}
	return s
}

func (p parser) fail(detail string, err error) error {
	return &domain.FormatError{Path: p.path, Detail: detail, Err: err}
}
