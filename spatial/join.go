package spatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

type JoinKind int

const (
	// Inner drops polygons that contain no point.
	Inner JoinKind = iota
	// Left keeps every polygon; unmatched ones get nil point attributes.
	Left
)

func (k JoinKind) String() string {
	if k == Left {
		return "left"
	}
	return "inner"
}

// ParseJoinKind accepts "inner" and "left". The empty string is Inner.
func ParseJoinKind(s string) (JoinKind, error) {
	switch s {
	case "", "inner":
		return Inner, nil
	case "left":
		return Left, nil
	}
	return Inner, fmt.Errorf("spatial: unknown join kind %q", s)
}

type JoinOptions struct {
	Kind JoinKind
}

// Join attaches the attributes of every point in points to the polygon of
// polys that contains it. The result has one row per (polygon, point) pair
// carrying the polygon geometry, in polygon order then point order.
func Join(polys, pts *frame.Frame, opts JoinOptions) (*frame.Frame, error) {
	if err := crs.RequireSame(polys.SRID(), pts.SRID()); err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	type indexed struct {
		row int
		pt  orb.Point
	}
	candidates := make([]indexed, 0, pts.Len())
	for j := 0; j < pts.Len(); j++ {
		switch g := pts.Geometry(j).(type) {
		case nil:
		case orb.Point:
			candidates = append(candidates, indexed{row: j, pt: g})
		default:
			return nil, fmt.Errorf("join: point row %d: %w: %T", j, ErrGeometry, g)
		}
	}

	width := len(pts.Columns())
	out := frame.NewBuilder(polys.SRID(), mergeColumns(polys.Columns(), pts.Columns())...)
	for i := 0; i < polys.Len(); i++ {
		rp := polys.Record(i)
		g := rp.Geometry()
		if g == nil {
			if opts.Kind == Left {
				if err := out.Add(nil, append(rp.Values(), nils(width)...)...); err != nil {
					return nil, err
				}
			}
			continue
		}
		mp, err := toMulti(g)
		if err != nil {
			return nil, fmt.Errorf("join: polygon row %d: %w", i, err)
		}
		bound := g.Bound()
		matched := false
		for _, c := range candidates {
			if !bound.Contains(c.pt) || !planar.MultiPolygonContains(mp, c.pt) {
				continue
			}
			matched = true
			if err := out.Add(g, concat(rp, pts.Record(c.row))...); err != nil {
				return nil, err
			}
		}
		if !matched && opts.Kind == Left {
			if err := out.Add(g, append(rp.Values(), nils(width)...)...); err != nil {
				return nil, err
			}
		}
	}
	return out.Frame()
}
