package crs

import (
	"fmt"

	"github.com/go-spatial/proj"
	"github.com/paulmach/orb"
)

// Transform reprojects g from one coordinate reference system to another.
// The input is not modified.
func Transform(g orb.Geometry, from, to SRID) (orb.Geometry, error) {
	if from == Unknown {
		return nil, ErrUnknown
	}
	if to == Unknown {
		return nil, fmt.Errorf("transform target: %w", ErrUnknown)
	}
	if _, err := Lookup(from); err != nil {
		return nil, err
	}
	if _, err := Lookup(to); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}
	if from == to {
		return orb.Clone(g), nil
	}

	var pts []float64
	MapPoints(g, func(p orb.Point) orb.Point {
		pts = append(pts, p[0], p[1])
		return p
	})

	var err error
	if from != WGS84 {
		if pts, err = proj.Inverse(proj.EPSGCode(from), pts); err != nil {
			return nil, fmt.Errorf("inverse %v: %w", from, err)
		}
	}
	if to != WGS84 {
		if pts, err = proj.Convert(proj.EPSGCode(to), pts); err != nil {
			return nil, fmt.Errorf("convert %v: %w", to, err)
		}
	}

	i := 0
	return MapPoints(g, func(orb.Point) orb.Point {
		p := orb.Point{pts[i], pts[i+1]}
		i += 2
		return p
	}), nil
}

// MapPoints returns a copy of g with fn applied to every vertex, visiting
// vertices in storage order.
func MapPoints(g orb.Geometry, fn func(orb.Point) orb.Point) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return fn(g)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(g))
		for i, p := range g {
			out[i] = fn(p)
		}
		return out
	case orb.LineString:
		return orb.LineString(mapLine(g, fn))
	case orb.Ring:
		return orb.Ring(mapLine(g, fn))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			out[i] = orb.LineString(mapLine(ls, fn))
		}
		return out
	case orb.Polygon:
		return mapPolygon(g, fn)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			out[i] = mapPolygon(p, fn)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(g))
		for i, c := range g {
			out[i] = MapPoints(c, fn)
		}
		return out
	case orb.Bound:
		return orb.Bound{Min: fn(g.Min), Max: fn(g.Max)}
	}
	return g
}

func mapLine(pts []orb.Point, fn func(orb.Point) orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = fn(p)
	}
	return out
}

func mapPolygon(p orb.Polygon, fn func(orb.Point) orb.Point) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = orb.Ring(mapLine(r, fn))
	}
	return out
}
