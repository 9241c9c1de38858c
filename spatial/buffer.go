package spatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

// DefaultSegments is the number of sides used to approximate a circle.
const DefaultSegments = 32

// Buffer replaces every geometry with the region within dist CRS units of
// it. Points become regular polygons; lines and polygons become the union
// of the input with a disc at every vertex and a rectangle along every
// edge.
func Buffer(f *frame.Frame, dist float64, segments int) (*frame.Frame, error) {
	if dist <= 0 || math.IsNaN(dist) {
		return nil, fmt.Errorf("%w: %v", ErrDistance, dist)
	}
	info, err := crs.Lookup(f.SRID())
	if err != nil {
		return nil, fmt.Errorf("buffer: %w", err)
	}
	if info.Kind != crs.Projected {
		return nil, fmt.Errorf("buffer in %v: %w", f.SRID(), ErrGeographic)
	}
	if segments < 4 {
		segments = DefaultSegments
	}
	return f.WithGeometry(func(r frame.Record) (orb.Geometry, error) {
		if r.Geometry() == nil {
			return nil, nil
		}
		return BufferGeometry(r.Geometry(), dist, segments)
	})
}

// BufferGeometry buffers a single geometry.
func BufferGeometry(g orb.Geometry, dist float64, segments int) (orb.Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return disc(g, dist, segments), nil
	case orb.MultiPoint:
		parts := make([]orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			parts = append(parts, orb.MultiPolygon{disc(p, dist, segments)})
		}
		return union(parts...)
	case orb.LineString:
		return union(strokes(g, false, dist, segments)...)
	case orb.MultiLineString:
		var parts []orb.MultiPolygon
		for _, ls := range g {
			parts = append(parts, strokes(ls, false, dist, segments)...)
		}
		return union(parts...)
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		mp, err := toMulti(g)
		if err != nil {
			return nil, err
		}
		parts := []orb.MultiPolygon{mp}
		for _, p := range mp {
			for _, r := range p {
				parts = append(parts, strokes(orb.LineString(r), true, dist, segments)...)
			}
		}
		return union(parts...)
	}
	return nil, fmt.Errorf("buffer: %w: %T", ErrGeometry, g)
}

// disc is a counter-clockwise regular polygon circumscribing the circle of
// radius dist, so the buffer never falls short of the true distance.
func disc(c orb.Point, dist float64, segments int) orb.Polygon {
	r := dist / math.Cos(math.Pi/float64(segments))
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// strokes returns vertex discs and edge rectangles for a line.
func strokes(ls orb.LineString, closed bool, dist float64, segments int) []orb.MultiPolygon {
	var parts []orb.MultiPolygon
	n := len(ls)
	if closed && n > 1 && ls[0] == ls[n-1] {
		n--
	}
	for i := 0; i < n; i++ {
		parts = append(parts, orb.MultiPolygon{disc(ls[i], dist, segments)})
	}
	for i := 0; i+1 < len(ls); i++ {
		if rect, ok := edge(ls[i], ls[i+1], dist); ok {
			parts = append(parts, orb.MultiPolygon{rect})
		}
	}
	return parts
}

func edge(a, b orb.Point, dist float64) (orb.Polygon, bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil, false
	}
	nx, ny := -dy/l*dist, dx/l*dist
	ring := orb.Ring{
		{a[0] - nx, a[1] - ny},
		{b[0] - nx, b[1] - ny},
		{b[0] + nx, b[1] + ny},
		{a[0] + nx, a[1] + ny},
		{a[0] - nx, a[1] - ny},
	}
	return orb.Polygon{ring}, true
}
