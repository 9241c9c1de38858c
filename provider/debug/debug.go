// The debug provider returns synthetic data that is helpful for demos and
// tests: a grid of square ward polygons over an extent, or a deterministic
// scatter of incident points over the same extent.
package debug

import (
	"context"
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

const Name = "debug"

const (
	LayerDebugGrid   = "debug-grid"
	LayerDebugPoints = "debug-points"
)

// config keys
const (
	ConfigKeyMode   = "mode"
	ConfigKeyRows   = "rows"
	ConfigKeyCols   = "cols"
	ConfigKeyCount  = "count"
	ConfigKeyExtent = "extent"
	ConfigKeySRID   = "srid"
)

// DefaultExtent is a patch of Chicago in web mercator metres.
var DefaultExtent = geom.Extent{-9780000, 5130000, -9750000, 5160000}

var incidentTypes = []string{"THEFT", "BATTERY", "CRIMINAL DAMAGE", "ASSAULT", "BURGLARY"}

func init() {
	provider.Register(Name, NewReader, nil)
}

// Provider provides the debug provider
type Provider struct {
	Mode   string
	Rows   int
	Cols   int
	Count  int
	Extent geom.Extent
	SRID   crs.SRID
}

// NewReader sets up a debug provider.
func NewReader(config dict.Dicter) (provider.Reader, error) {
	p := &Provider{Extent: DefaultExtent}
	var err error

	mode := "grid"
	if p.Mode, err = config.String(ConfigKeyMode, &mode); err != nil {
		return nil, err
	}
	if p.Mode != "grid" && p.Mode != "points" {
		return nil, fmt.Errorf("debug: unknown mode %q", p.Mode)
	}
	n := 3
	if p.Rows, err = config.Int(ConfigKeyRows, &n); err != nil {
		return nil, err
	}
	if p.Cols, err = config.Int(ConfigKeyCols, &n); err != nil {
		return nil, err
	}
	count := 100
	if p.Count, err = config.Int(ConfigKeyCount, &count); err != nil {
		return nil, err
	}
	if p.Rows < 1 || p.Cols < 1 || p.Count < 0 {
		return nil, fmt.Errorf("debug: rows and cols must be positive and count non-negative")
	}
	srid := int(crs.WebMercator)
	if srid, err = config.Int(ConfigKeySRID, &srid); err != nil {
		return nil, err
	}
	p.SRID = crs.SRID(srid)

	if v, ok := config.Interface(ConfigKeyExtent); ok {
		ext, err := extent(v)
		if err != nil {
			return nil, err
		}
		p.Extent = ext
	}
	return p, nil
}

func extent(v interface{}) (geom.Extent, error) {
	vals, ok := v.([]interface{})
	if !ok || len(vals) != 4 {
		return geom.Extent{}, fmt.Errorf("debug: extent must be [minx, miny, maxx, maxy], got %v", v)
	}
	var ext geom.Extent
	for i, e := range vals {
		f, ok := frame.ToFloat(frame.Normalize(e))
		if !ok {
			return geom.Extent{}, fmt.Errorf("debug: extent value %v is not a number", e)
		}
		ext[i] = f
	}
	if ext.MinX() >= ext.MaxX() || ext.MinY() >= ext.MaxY() {
		return geom.Extent{}, fmt.Errorf("debug: empty extent %v", ext)
	}
	return ext, nil
}

func (p *Provider) Read(ctx context.Context) (*frame.Frame, error) {
	if p.Mode == "points" {
		return p.points()
	}
	return p.grid()
}

// grid numbers wards row by row from the south west corner.
func (p *Provider) grid() (*frame.Frame, error) {
	b := frame.NewBuilder(p.SRID, "ward", "name", "row", "col")
	w := p.Extent.XSpan() / float64(p.Cols)
	h := p.Extent.YSpan() / float64(p.Rows)
	ward := 1
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			x0 := p.Extent.MinX() + float64(c)*w
			y0 := p.Extent.MinY() + float64(r)*h
			poly := orb.Polygon{{{x0, y0}, {x0 + w, y0}, {x0 + w, y0 + h}, {x0, y0 + h}, {x0, y0}}}
			if err := b.Add(poly, ward, fmt.Sprintf("Ward %d", ward), r, c); err != nil {
				return nil, err
			}
			ward++
		}
	}
	return b.Frame()
}

// points places Count points on a Halton sequence, which fills the extent
// evenly and never repeats.
func (p *Provider) points() (*frame.Frame, error) {
	b := frame.NewBuilder(p.SRID, "id", "type")
	for i := 1; i <= p.Count; i++ {
		pt := orb.Point{
			p.Extent.MinX() + halton(i, 2)*p.Extent.XSpan(),
			p.Extent.MinY() + halton(i, 3)*p.Extent.YSpan(),
		}
		if err := b.Add(pt, i, incidentTypes[i%len(incidentTypes)]); err != nil {
			return nil, err
		}
	}
	return b.Frame()
}

func halton(i, base int) float64 {
	f, r := 1.0, 0.0
	for i > 0 {
		f /= float64(base)
		r += f * float64(i%base)
		i /= base
	}
	return r
}

// Layers returns information about the layer this provider produces
func (p *Provider) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	l := Layer{
		name:     LayerDebugGrid,
		geomType: geom.Polygon{},
		srid:     p.SRID,
		extent:   p.Extent,
		features: p.Rows * p.Cols,
	}
	if p.Mode == "points" {
		l.name, l.geomType, l.features = LayerDebugPoints, geom.Point{}, p.Count
	}
	return []provider.LayerInfo{l}, nil
}
