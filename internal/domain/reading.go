package domain

import (
	"fmt"
	"time"
)

// Category classifies the outcome of extracting one point from one grid file.
type Category int

const (
	// CategoryNoData marks a cell storing the file's nodata code: the pixel
	// lies outside radar coverage.
	CategoryNoData Category = iota
	// CategoryUndetect marks a cell storing the file's undetect code: scanned,
	// but no return signal.
	CategoryUndetect
	// CategoryMeasured marks a cell carrying a calibrated reflectivity value.
	CategoryMeasured
	// CategoryOutOfGrid marks a target point that resolves to pixel indices
	// outside the grid. It is a normal outcome, equivalent to NoData for
	// reporting purposes.
	CategoryOutOfGrid
)

// String returns the category's snake_case name, used in logs and metric labels.
func (c Category) String() string {
	switch c {
	case CategoryNoData:
		return "no_data"
	case CategoryUndetect:
		return "undetect"
	case CategoryMeasured:
		return "measured"
	case CategoryOutOfGrid:
		return "out_of_grid"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Reading is the decoded result of extracting the target point from one grid
// file. Value is meaningful only when Category is CategoryMeasured; it is 0
// otherwise. Readings are immutable once produced.
type Reading struct {
	At       time.Time // acquisition end time, UTC
	Category Category
	Value    float64 // reflectivity in dBZ when measured
	Source   string  // originating filename
}

// Describe renders the reading the way report output and diagnostics show it.
func (r Reading) Describe() string {
	switch r.Category {
	case CategoryMeasured:
		return fmt.Sprintf("%.2f dBZ", r.Value)
	case CategoryNoData:
		return "No Data (pixel is outside the scan area)"
	case CategoryUndetect:
		return "Undetected (clear air, no return signal)"
	case CategoryOutOfGrid:
		return "Not in data"
	default:
		return r.Category.String()
	}
}
