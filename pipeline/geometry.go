package pipeline

import (
	"context"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/spatial"
)

const (
	ConfigKeySRID     = "srid"
	ConfigKeyDistance = "distance"
	ConfigKeySegments = "segments"
	ConfigKeyHow      = "how"

	DefaultAreaColumn = "area"
)

func init() {
	RegisterStep("set_crs", newSetCRS)
	RegisterStep("transform", newTransform)
	RegisterStep("area", newArea)
	RegisterStep("centroid", newCentroid)
	RegisterStep("buffer", newBuffer)
	RegisterStep("dissolve", newDissolve)
	RegisterStep("intersect", newIntersect)
	RegisterStep("join", newJoin)
}

func srid(config dict.Dicter) (crs.SRID, error) {
	code, err := config.Int(ConfigKeySRID, nil)
	if err != nil {
		return crs.Unknown, err
	}
	s := crs.SRID(code)
	if _, err := crs.Lookup(s); err != nil {
		return crs.Unknown, err
	}
	return s, nil
}

func newSetCRS(config dict.Dicter) (Step, error) {
	s, err := newUnary("set_crs", config)
	if err != nil {
		return nil, err
	}
	to, err := srid(config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.SetSRID(to)
	}
	return s, nil
}

func newTransform(config dict.Dicter) (Step, error) {
	s, err := newUnary("transform", config)
	if err != nil {
		return nil, err
	}
	to, err := srid(config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Transform(to)
	}
	return s, nil
}

func newArea(config dict.Dicter) (Step, error) {
	s, err := newUnary("area", config)
	if err != nil {
		return nil, err
	}
	col := DefaultAreaColumn
	if col, err = config.String(ConfigKeyAs, &col); err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return spatial.Area(f, col)
	}
	return s, nil
}

func newCentroid(config dict.Dicter) (Step, error) {
	s, err := newUnary("centroid", config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return spatial.Centroid(f)
	}
	return s, nil
}

func newBuffer(config dict.Dicter) (Step, error) {
	s, err := newUnary("buffer", config)
	if err != nil {
		return nil, err
	}
	dist, err := config.Float(ConfigKeyDistance, nil)
	if err != nil {
		return nil, err
	}
	if dist <= 0 {
		return nil, spatial.ErrDistance
	}
	segments := spatial.DefaultSegments
	if segments, err = config.Int(ConfigKeySegments, &segments); err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return spatial.Buffer(f, dist, segments)
	}
	return s, nil
}

func newDissolve(config dict.Dicter) (Step, error) {
	s, err := newUnary("dissolve", config)
	if err != nil {
		return nil, err
	}
	col, err := config.String(ConfigKeyColumn, nil)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return spatial.Dissolve(f, col)
	}
	return s, nil
}

func newIntersect(config dict.Dicter) (Step, error) {
	s, err := newBinary("intersect", config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, a, b *frame.Frame) (*frame.Frame, error) {
		return spatial.Intersect(a, b)
	}
	return s, nil
}

// newJoin joins the polygons of in with the points of with.
func newJoin(config dict.Dicter) (Step, error) {
	s, err := newBinary("join", config)
	if err != nil {
		return nil, err
	}
	how := spatial.Inner.String()
	if how, err = config.String(ConfigKeyHow, &how); err != nil {
		return nil, err
	}
	kind, err := spatial.ParseJoinKind(how)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, polys, pts *frame.Frame) (*frame.Frame, error) {
		return spatial.Join(polys, pts, spatial.JoinOptions{Kind: kind})
	}
	return s, nil
}
