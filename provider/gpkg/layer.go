package gpkg

import (
	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geoframe/crs"
)

// Layer is a feature table listed in gpkg_contents.
type Layer struct {
	id            string
	name          string
	tablename     string
	idFieldname   string
	geomFieldname string
	geomType      geom.Geometry
	srid          crs.SRID
	bbox          geom.Extent
}

func (l Layer) ID() string              { return l.id }
func (l Layer) Name() string            { return l.name }
func (l Layer) GeomType() geom.Geometry { return l.geomType }
func (l Layer) SRID() crs.SRID          { return l.srid }
func (l Layer) Extent() geom.Extent     { return l.bbox }

func geomNameToGeom(name string) (geom.Geometry, error) {
	switch name {
	case "POINT":
		return geom.Point{}, nil
	case "LINESTRING":
		return geom.LineString{}, nil
	case "POLYGON":
		return geom.Polygon{}, nil
	case "MULTIPOINT":
		return geom.MultiPoint{}, nil
	case "MULTILINESTRING":
		return geom.MultiLineString{}, nil
	case "MULTIPOLYGON":
		return geom.MultiPolygon{}, nil
	case "GEOMETRYCOLLECTION":
		return geom.Collection{}, nil
	case "GEOMETRY":
		return nil, nil
	}
	return nil, ErrGeomType(name)
}

type ErrGeomType string

func (e ErrGeomType) Error() string { return "gpkg: unsupported geometry type: " + string(e) }

// sridFromSRS maps the GeoPackage undefined systems (-1 and 0) to Unknown.
func sridFromSRS(id int64) crs.SRID {
	if id <= 0 {
		return crs.Unknown
	}
	return crs.SRID(id)
}

func srsFromSRID(s crs.SRID) int32 {
	if s == crs.Unknown {
		return -1
	}
	return int32(s)
}
