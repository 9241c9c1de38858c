package provider

import (
	"context"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

// Layerer are readers that can describe what they hold without building a
// frame. inspect uses it when available.
type Layerer interface {
	Layers(ctx context.Context) ([]LayerInfo, error)
}

// LayerInfo is the important information about a layer
type LayerInfo interface {
	// ID is the id of the layer
	ID() string
	// Name is the name of the layer
	Name() string
	// GeomType is the geometry type of the layer
	GeomType() geom.Geometry
	// SRID is the srid of all the points in the layer
	SRID() crs.SRID
}

// Layer is a LayerInfo for sources holding a single table.
type Layer struct {
	id       string
	name     string
	geomType geom.Geometry
	srid     crs.SRID
	extent   *geom.Extent
	rows     int
}

// NewLayer describes an in-memory frame.
func NewLayer(id string, f *frame.Frame) Layer {
	l := Layer{
		id:   id,
		name: id,
		srid: f.SRID(),
		rows: f.Len(),
	}
	if f.Len() > 0 {
		l.geomType = GeomTypeOf(f.Geometry(0))
		b := f.Bound()
		l.extent = geom.NewExtent([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]})
	}
	return l
}

func (l Layer) ID() string              { return l.id }
func (l Layer) Name() string            { return l.name }
func (l Layer) GeomType() geom.Geometry { return l.geomType }
func (l Layer) SRID() crs.SRID          { return l.srid }

// Extent is nil for empty layers.
func (l Layer) Extent() *geom.Extent { return l.extent }
func (l Layer) Rows() int            { return l.rows }
