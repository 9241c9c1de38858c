package spatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

// Area adds col holding each row's area. Projected frames use planar area
// in CRS units squared; geographic frames use spherical area in square
// metres.
func Area(f *frame.Frame, col string) (*frame.Frame, error) {
	info, err := crs.Lookup(f.SRID())
	if err != nil {
		return nil, fmt.Errorf("area: %w", err)
	}
	measure := func(g orb.Geometry) float64 { return math.Abs(planar.Area(g)) }
	if info.Kind == crs.Geographic {
		measure = geo.Area
	}
	return f.WithColumn(col, func(r frame.Record) interface{} {
		g := r.Geometry()
		if g == nil {
			return nil
		}
		return measure(g)
	}), nil
}

// Centroid replaces every geometry with its planar centroid.
func Centroid(f *frame.Frame) (*frame.Frame, error) {
	return f.WithGeometry(func(r frame.Record) (orb.Geometry, error) {
		g := r.Geometry()
		if g == nil {
			return nil, nil
		}
		c, _ := planar.CentroidArea(g)
		return c, nil
	})
}
