package debug

import (
	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geoframe/crs"
)

// Layer describes what a debug provider would generate without building it.
type Layer struct {
	name     string
	geomType geom.Geometry
	srid     crs.SRID
	extent   geom.Extent
	features int
}

func (l Layer) ID() string              { return l.name }
func (l Layer) Name() string            { return l.name }
func (l Layer) GeomType() geom.Geometry { return l.geomType }
func (l Layer) SRID() crs.SRID          { return l.srid }
func (l Layer) Extent() geom.Extent     { return l.extent }

// Features is the number of rows Read returns.
func (l Layer) Features() int { return l.features }
