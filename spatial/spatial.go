// Package spatial holds the geometric stages: area, centroid, buffer,
// intersection, spatial join and dissolve. Binary operations require both
// frames to share one known CRS.
package spatial

import (
	"errors"
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/frame"
)

var (
	// ErrGeographic is returned by operations whose distances are only
	// meaningful in a projected CRS.
	ErrGeographic = errors.New("spatial: operation needs a projected crs")
	ErrDistance   = errors.New("spatial: distance must be positive")
	ErrGeometry   = errors.New("spatial: unsupported geometry")
)

// areal reports whether g has an interior.
func areal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return true
	}
	return false
}

func toMulti(g orb.Geometry) (orb.MultiPolygon, error) {
	switch g := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	case orb.Ring:
		return orb.MultiPolygon{{g}}, nil
	case orb.Bound:
		return orb.MultiPolygon{g.ToPolygon()}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrGeometry, g)
}

func toGeom(mp orb.MultiPolygon) polygol.Geom {
	out := make(polygol.Geom, 0, len(mp))
	for _, p := range mp {
		poly := make([][][]float64, 0, len(p))
		for _, r := range p {
			ring := make([][]float64, 0, len(r)+1)
			for _, pt := range r {
				ring = append(ring, []float64{pt[0], pt[1]})
			}
			if len(r) > 0 && r[0] != r[len(r)-1] {
				ring = append(ring, []float64{r[0][0], r[0][1]})
			}
			poly = append(poly, ring)
		}
		out = append(out, poly)
	}
	return out
}

// fromGeom returns nil for an empty result, a Polygon for a single part
// and a MultiPolygon otherwise.
func fromGeom(g polygol.Geom) orb.Geometry {
	mp := make(orb.MultiPolygon, 0, len(g))
	for _, poly := range g {
		p := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, 0, len(ring))
			for _, c := range ring {
				if len(c) < 2 {
					continue
				}
				r = append(r, orb.Point{c[0], c[1]})
			}
			if len(r) >= 4 {
				p = append(p, r)
			}
		}
		if len(p) > 0 {
			mp = append(mp, p)
		}
	}
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}

func union(parts ...orb.MultiPolygon) (orb.Geometry, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	rest := make([]polygol.Geom, 0, len(parts)-1)
	for _, p := range parts[1:] {
		rest = append(rest, toGeom(p))
	}
	g, err := polygol.Union(toGeom(parts[0]), rest...)
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	return fromGeom(g), nil
}

// mergeColumns appends b's columns to a's, suffixing names that clash
// with ".1", ".2" and so on.
func mergeColumns(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, c := range a {
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range b {
		name := c
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", c, n)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func concat(a, b frame.Record) []interface{} {
	return append(a.Values(), b.Values()...)
}

func nils(n int) []interface{} {
	return make([]interface{}, n)
}
