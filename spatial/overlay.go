package spatial

import (
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

// Intersect returns the overlapping portions of every pair of rows from a
// and b with the attributes of both. Columns of b that clash with a get a
// numeric suffix. Pairs that do not overlap produce no row.
func Intersect(a, b *frame.Frame) (*frame.Frame, error) {
	if err := crs.RequireSame(a.SRID(), b.SRID()); err != nil {
		return nil, fmt.Errorf("intersect: %w", err)
	}
	out := frame.NewBuilder(a.SRID(), mergeColumns(a.Columns(), b.Columns())...)
	for i := 0; i < a.Len(); i++ {
		ra := a.Record(i)
		ga := ra.Geometry()
		if ga == nil {
			continue
		}
		for j := 0; j < b.Len(); j++ {
			rb := b.Record(j)
			gb := rb.Geometry()
			if gb == nil || !ga.Bound().Intersects(gb.Bound()) {
				continue
			}
			g, err := overlap(ga, gb)
			if err != nil {
				return nil, fmt.Errorf("intersect rows %d and %d: %w", i, j, err)
			}
			if g == nil {
				continue
			}
			if err := out.Add(g, concat(ra, rb)...); err != nil {
				return nil, err
			}
		}
	}
	return out.Frame()
}

func overlap(a, b orb.Geometry) (orb.Geometry, error) {
	switch {
	case areal(a) && areal(b):
		ma, _ := toMulti(a)
		mb, _ := toMulti(b)
		g, err := polygol.Intersection(toGeom(ma), toGeom(mb))
		if err != nil {
			return nil, err
		}
		return fromGeom(g), nil
	case areal(b):
		return pointsWithin(a, b)
	case areal(a):
		return pointsWithin(b, a)
	}
	pa, err := points(a)
	if err != nil {
		return nil, err
	}
	pb, err := points(b)
	if err != nil {
		return nil, err
	}
	var common orb.MultiPoint
	for _, p := range pa {
		for _, q := range pb {
			if p == q {
				common = append(common, p)
				break
			}
		}
	}
	return collapse(common), nil
}

func points(g orb.Geometry) (orb.MultiPoint, error) {
	switch g := g.(type) {
	case orb.Point:
		return orb.MultiPoint{g}, nil
	case orb.MultiPoint:
		return g, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrGeometry, g)
}

func pointsWithin(g, area orb.Geometry) (orb.Geometry, error) {
	pts, err := points(g)
	if err != nil {
		return nil, err
	}
	mp, err := toMulti(area)
	if err != nil {
		return nil, err
	}
	var in orb.MultiPoint
	for _, p := range pts {
		if planar.MultiPolygonContains(mp, p) {
			in = append(in, p)
		}
	}
	return collapse(in), nil
}

func collapse(mp orb.MultiPoint) orb.Geometry {
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}

// Dissolve unions the geometries of rows sharing a value of col. The
// result has one row per group, in first-seen order, with col and a count
// column n.
func Dissolve(f *frame.Frame, col string) (*frame.Frame, error) {
	if !f.HasColumn(col) {
		return nil, fmt.Errorf("dissolve: %w: %q", frame.ErrUnknownColumn, col)
	}
	var (
		keys   []interface{}
		values = make(map[interface{}]interface{})
		groups = make(map[interface{}][]orb.MultiPolygon)
	)
	for i := 0; i < f.Len(); i++ {
		r := f.Record(i)
		v, _ := r.Get(col)
		k := frame.GroupKey(v)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
			values[k] = v
			groups[k] = nil
		}
		if r.Geometry() == nil {
			continue
		}
		mp, err := toMulti(r.Geometry())
		if err != nil {
			return nil, fmt.Errorf("dissolve row %d: %w", i, err)
		}
		groups[k] = append(groups[k], mp)
	}
	name := "n"
	if name == col {
		name = "n.1"
	}
	out := frame.NewBuilder(f.SRID(), col, name)
	for _, k := range keys {
		g, err := union(groups[k]...)
		if err != nil {
			return nil, fmt.Errorf("dissolve %v: %w", k, err)
		}
		if err := out.Add(g, values[k], len(groups[k])); err != nil {
			return nil, err
		}
	}
	return out.Frame()
}
