// Package geo resolves WGS-84 coordinates to pixel indices on projected grids.
package geo

import (
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/geom/proj"

	"github.com/couchcryptid/radar-point/internal/domain"
)

// wgs84 is the geographic reference both the target point and each grid's
// upper-left corner are expressed in.
const wgs84 = "+proj=longlat +datum=WGS84 +no_defs"

// Resolver maps WGS-84 coordinates onto grid pixels. It is safe for
// concurrent use and caches compiled transforms by projection definition,
// since every composite in a batch normally shares one definition.
type Resolver struct {
	mu         sync.Mutex
	transforms map[string]proj.Transformer
}

// NewResolver creates a resolver with an empty transform cache.
func NewResolver() *Resolver {
	return &Resolver{transforms: make(map[string]proj.Transformer)}
}

// Resolve locates target on g's pixel grid.
//
// The target and the grid's upper-left corner are both projected from WGS-84
// into the grid's planar system; the planar offsets from the corner, divided
// by the pixel scales, give fractional indices. Rows grow southward while
// projected y grows northward, so the row offset is (yCorner - yTarget).
// Fractional indices round to the nearest pixel, halves away from zero.
//
// The returned index may lie outside the grid. That is a property of the
// point, not a failure; callers classify it with GridFile.At. A non-nil error
// is always a *domain.ProjectionError: the definition did not parse or the
// transform could not evaluate.
func (r *Resolver) Resolve(g *domain.GridFile, target domain.Geo) (domain.PixelIndex, error) {
	transform, err := r.transformFor(g.ProjDef)
	if err != nil {
		return domain.PixelIndex{}, err
	}

	targetX, targetY, err := transform(target.Lon, target.Lat)
	if err != nil {
		return domain.PixelIndex{}, &domain.ProjectionError{
			Def: g.ProjDef,
			Err: fmt.Errorf("project target (%.6f, %.6f): %w", target.Lat, target.Lon, err),
		}
	}
	cornerX, cornerY, err := transform(g.UpperLeft.Lon, g.UpperLeft.Lat)
	if err != nil {
		return domain.PixelIndex{}, &domain.ProjectionError{
			Def: g.ProjDef,
			Err: fmt.Errorf("project grid corner (%.6f, %.6f): %w", g.UpperLeft.Lat, g.UpperLeft.Lon, err),
		}
	}

	col := math.Round((targetX - cornerX) / g.XScale)
	row := math.Round((cornerY - targetY) / g.YScale)
	return domain.PixelIndex{Row: int(row), Col: int(col)}, nil
}

// transformFor returns the cached WGS-84 to grid transform for def, compiling
// and caching it on first use. The cache is never evicted: a run sees a
// handful of distinct definitions at most.
func (r *Resolver) transformFor(def string) (proj.Transformer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.transforms[def]; ok {
		return t, nil
	}

	src, err := proj.Parse(wgs84)
	if err != nil {
		return nil, &domain.ProjectionError{Def: wgs84, Err: err}
	}
	dst, err := proj.Parse(def)
	if err != nil {
		return nil, &domain.ProjectionError{Def: def, Err: err}
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, &domain.ProjectionError{Def: def, Err: err}
	}

	r.transforms[def] = t
	return t, nil
}
