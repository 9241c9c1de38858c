package provider

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/paulmach/orb"
)

// GeomTypeOf maps a geometry onto the zero value of the matching
// go-spatial/geom type, as reported by LayerInfo.GeomType.
func GeomTypeOf(g orb.Geometry) geom.Geometry {
	switch g.(type) {
	case orb.Point:
		return geom.Point{}
	case orb.MultiPoint:
		return geom.MultiPoint{}
	case orb.LineString:
		return geom.LineString{}
	case orb.MultiLineString:
		return geom.MultiLineString{}
	case orb.Polygon, orb.Ring, orb.Bound:
		return geom.Polygon{}
	case orb.MultiPolygon:
		return geom.MultiPolygon{}
	case orb.Collection:
		return geom.Collection{}
	}
	return nil
}

// GeomTypeName is the OGC name of a layer geometry type.
func GeomTypeName(g geom.Geometry) string {
	switch g.(type) {
	case geom.Point, *geom.Point:
		return "POINT"
	case geom.MultiPoint, *geom.MultiPoint:
		return "MULTIPOINT"
	case geom.LineString, *geom.LineString:
		return "LINESTRING"
	case geom.MultiLineString, *geom.MultiLineString:
		return "MULTILINESTRING"
	case geom.Polygon, *geom.Polygon:
		return "POLYGON"
	case geom.MultiPolygon, *geom.MultiPolygon:
		return "MULTIPOLYGON"
	case geom.Collection, *geom.Collection:
		return "GEOMETRYCOLLECTION"
	case nil:
		return "NONE"
	}
	return "GEOMETRY"
}

// FromGeom converts a go-spatial/geom value into the orb model.
func FromGeom(g geom.Geometry) (orb.Geometry, error) {
	switch g := g.(type) {
	case nil:
		return nil, nil
	case geom.Point:
		return orb.Point(g), nil
	case *geom.Point:
		return orb.Point(*g), nil
	case geom.MultiPoint:
		return fromMultiPoint(g), nil
	case *geom.MultiPoint:
		return fromMultiPoint(*g), nil
	case geom.LineString:
		return fromLineString(g), nil
	case *geom.LineString:
		return fromLineString(*g), nil
	case geom.MultiLineString:
		return fromMultiLineString(g), nil
	case *geom.MultiLineString:
		return fromMultiLineString(*g), nil
	case geom.Polygon:
		return fromPolygon(g), nil
	case *geom.Polygon:
		return fromPolygon(*g), nil
	case geom.MultiPolygon:
		return fromMultiPolygon(g), nil
	case *geom.MultiPolygon:
		return fromMultiPolygon(*g), nil
	case geom.Collection:
		return fromCollection(g)
	case *geom.Collection:
		return fromCollection(*g)
	}
	return nil, fmt.Errorf("provider: unsupported geometry %T", g)
}

func fromMultiPoint(mp geom.MultiPoint) orb.MultiPoint {
	out := make(orb.MultiPoint, len(mp))
	for i, p := range mp {
		out[i] = orb.Point(p)
	}
	return out
}

func fromLineString(ls geom.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = orb.Point(p)
	}
	return out
}

func fromMultiLineString(mls geom.MultiLineString) orb.MultiLineString {
	out := make(orb.MultiLineString, len(mls))
	for i, ls := range mls {
		out[i] = fromLineString(ls)
	}
	return out
}

func fromPolygon(p geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		ring := make(orb.Ring, 0, len(r)+1)
		for _, pt := range r {
			ring = append(ring, orb.Point(pt))
		}
		// go-spatial rings are implicitly closed
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		out[i] = ring
	}
	return out
}

func fromMultiPolygon(mp geom.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(mp))
	for i, p := range mp {
		out[i] = fromPolygon(p)
	}
	return out
}

func fromCollection(c geom.Collection) (orb.Collection, error) {
	out := make(orb.Collection, 0, len(c))
	for _, g := range c {
		og, err := FromGeom(g)
		if err != nil {
			return nil, err
		}
		out = append(out, og)
	}
	return out, nil
}
