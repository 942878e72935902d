package domain

import (
	"sort"
	"time"
)

// Report is the final product of a scan: the readings that met the threshold,
// ordered chronologically.
type Report struct {
	GeneratedAt time.Time
	Target      Geo
	Threshold   float64
	Readings    []Reading
}

// BuildReport filters readings down to measured values at or above threshold
// and orders them by acquisition time ascending, ties broken by source
// filename so output is deterministic regardless of input order. The input
// slice is not modified.
func BuildReport(target Geo, threshold float64, readings []Reading) Report {
	kept := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.Category == CategoryMeasured && r.Value >= threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].At.Equal(kept[j].At) {
			return kept[i].At.Before(kept[j].At)
		}
		return kept[i].Source < kept[j].Source
	})
	return Report{
		GeneratedAt: clock.Now().UTC(),
		Target:      target,
		Threshold:   threshold,
		Readings:    kept,
	}
}
