package domain

import "time"

// Geo represents a WGS-84 latitude/longitude coordinate pair in decimal degrees.
type Geo struct {
	Lat float64
	Lon float64
}

// PixelIndex addresses one cell of a grid as (row, column). Row 0 is the
// northernmost (upper-left) row. Indices are signed and may lie outside the
// grid; callers bounds-check with GridFile.At.
type PixelIndex struct {
	Row int
	Col int
}

// Calibration holds the per-file conversion coefficients and reserved codes.
// NoData and Undetect are exact stored codes, never derived quantities.
type Calibration struct {
	Gain     float64
	Offset   float64
	NoData   float64
	Undetect float64
}

// GridFile is one composite snapshot with the metadata needed to geolocate
// and decode it. Instances are built by the container reader, fully
// validated, and treated as read-only for the extraction that consumes them.
type GridFile struct {
	Source  string // base filename the grid was read from
	ProjDef string // PROJ.4 definition of the grid's planar system

	UpperLeft Geo     // grid origin: center of pixel (0,0)
	XScale    float64 // pixel width in projection meters
	YScale    float64 // pixel height in projection meters; positive, rows advance southward

	Rows int
	Cols int

	Calibration Calibration

	EndEpoch int64  // acquisition end, Unix seconds UTC (authoritative)
	EndDate  string // informational ASCII date, e.g. "20240512"; may be empty
	EndTime  string // informational ASCII time, e.g. "221009"; may be empty

	// Cells holds the raw stored codes row-major: Cells[row][col]. Rows run
	// from north to south. Values are container integers widened to float64.
	Cells [][]float64
}

// At returns the raw cell code at p and whether p lies inside the grid.
func (g *GridFile) At(p PixelIndex) (float64, bool) {
	if p.Row < 0 || p.Row >= g.Rows || p.Col < 0 || p.Col >= g.Cols {
		return 0, false
	}
	return g.Cells[p.Row][p.Col], true
}

// Timestamp returns the acquisition end time in UTC, derived from the
// authoritative epoch attribute.
func (g *GridFile) Timestamp() time.Time {
	return time.Unix(g.EndEpoch, 0).UTC()
}
