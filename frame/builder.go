package frame

import (
	"fmt"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/paulmach/orb"
)

// Builder accumulates rows for a new frame.
type Builder struct {
	f   *Frame
	err error
}

// NewBuilder starts a frame with the given CRS and attribute columns.
func NewBuilder(srid crs.SRID, columns ...string) *Builder {
	f, err := newFrame(srid, columns)
	return &Builder{f: f, err: err}
}

// Add appends a row. values must match the column count.
func (b *Builder) Add(g orb.Geometry, values ...interface{}) error {
	if b.err != nil {
		return b.err
	}
	if len(values) != len(b.f.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrArity, len(values), len(b.f.columns))
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = Normalize(v)
	}
	b.f.append(g, row)
	return nil
}

// Len is the number of rows added so far.
func (b *Builder) Len() int {
	if b.f == nil {
		return 0
	}
	return b.f.Len()
}

// Frame returns the built frame. The builder must not be used afterwards.
func (b *Builder) Frame() (*Frame, error) {
	if b.err != nil {
		return nil, b.err
	}
	f := b.f
	b.f = nil
	return f, nil
}

// Normalize maps Go values onto the attribute value set: nil, string,
// int64, float64 and bool.
func Normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case nil, string, int64, float64, bool:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
