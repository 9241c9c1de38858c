package render

import (
	"math"

	"github.com/paulmach/orb"
)

// Parts splits a geometry into the polygons, lines and points it draws
// as.
func Parts(g orb.Geometry) (polys []orb.Polygon, lines []orb.LineString, pts []orb.Point) {
	switch g := g.(type) {
	case orb.Point:
		pts = append(pts, g)
	case orb.MultiPoint:
		pts = append(pts, g...)
	case orb.LineString:
		lines = append(lines, g)
	case orb.MultiLineString:
		lines = append(lines, g...)
	case orb.Ring:
		polys = append(polys, orb.Polygon{g})
	case orb.Polygon:
		polys = append(polys, g)
	case orb.MultiPolygon:
		polys = append(polys, g...)
	case orb.Bound:
		polys = append(polys, g.ToPolygon())
	case orb.Collection:
		for _, c := range g {
			p, l, pt := Parts(c)
			polys = append(polys, p...)
			lines = append(lines, l...)
			pts = append(pts, pt...)
		}
	}
	return polys, lines, pts
}

// Bound is the union of the bounds of every layer's frame.
func Bound(layers []*Layer) orb.Bound {
	var (
		b     orb.Bound
		first = true
	)
	for _, l := range layers {
		if l.Frame == nil || l.Frame.Len() == 0 {
			continue
		}
		lb := l.Frame.Bound()
		if first {
			b, first = lb, false
			continue
		}
		b = b.Union(lb)
	}
	return b
}

// Viewport maps data coordinates onto a pixel canvas with y pointing
// down, keeping the aspect ratio and centring the data.
type Viewport struct {
	scale  float64
	minX   float64
	maxY   float64
	offX   float64
	offY   float64
	Width  float64
	Height float64
}

// NewViewport fits b into a width x height canvas with pad pixels of
// margin on every side.
func NewViewport(b orb.Bound, width, height, pad float64) Viewport {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	aw, ah := width-2*pad, height-2*pad
	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = math.Min(aw/dx, ah/dy)
	case dx > 0:
		scale = aw / dx
	case dy > 0:
		scale = ah / dy
	}
	return Viewport{
		scale:  scale,
		minX:   b.Min[0],
		maxY:   b.Max[1],
		offX:   pad + (aw-dx*scale)/2,
		offY:   pad + (ah-dy*scale)/2,
		Width:  width,
		Height: height,
	}
}

// Project returns the pixel position of p.
func (v Viewport) Project(p orb.Point) (x, y float64) {
	return v.offX + (p[0]-v.minX)*v.scale, v.offY + (v.maxY-p[1])*v.scale
}
