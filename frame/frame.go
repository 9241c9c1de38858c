// Package frame implements the spatial table: attribute rows that each
// carry one geometry, all in a single coordinate reference system.
//
// Frames are values. Every operation returns a new frame and leaves its
// receiver untouched, so a pipeline is ordinary function composition.
package frame

import (
	"errors"
	"fmt"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/paulmach/orb"
)

var (
	ErrUnknownColumn   = errors.New("frame: unknown column")
	ErrDuplicateColumn = errors.New("frame: duplicate column")
	ErrArity           = errors.New("frame: value count does not match column count")
	ErrOperator        = errors.New("frame: unsupported operator")
)

// Frame is a spatial table.
type Frame struct {
	srid    crs.SRID
	columns []string
	index   map[string]int
	rows    [][]interface{}
	geoms   []orb.Geometry
}

func newFrame(srid crs.SRID, columns []string) (*Frame, error) {
	f := &Frame{
		srid:    srid,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := f.index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		f.index[c] = i
	}
	return f, nil
}

// Empty returns a frame with the given columns and no rows.
func Empty(srid crs.SRID, columns ...string) (*Frame, error) {
	return newFrame(srid, columns)
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// SRID is the coordinate reference system shared by every geometry.
func (f *Frame) SRID() crs.SRID { return f.srid }

// Columns returns the attribute column names in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.columns...) }

// HasColumn reports whether col is an attribute column.
func (f *Frame) HasColumn(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Geometry returns the geometry of row i.
func (f *Frame) Geometry(i int) orb.Geometry { return f.geoms[i] }

// Value returns the value of col in row i.
func (f *Frame) Value(i int, col string) (interface{}, error) {
	ci, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	return f.rows[i][ci], nil
}

// Record returns a view of row i.
func (f *Frame) Record(i int) Record { return Record{f: f, i: i} }

// Each calls fn for every row in order and stops at the first error.
func (f *Frame) Each(fn func(r Record) error) error {
	for i := range f.rows {
		if err := fn(Record{f: f, i: i}); err != nil {
			return err
		}
	}
	return nil
}

// Column returns a copy of all values of col.
func (f *Frame) Column(col string) ([]interface{}, error) {
	ci, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	out := make([]interface{}, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[ci]
	}
	return out, nil
}

// Floats returns col as float64s. Values that are not numeric are
// reported through ok=false at their index.
func (f *Frame) Floats(col string) (vals []float64, ok []bool, err error) {
	ci, found := f.index[col]
	if !found {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	vals = make([]float64, len(f.rows))
	ok = make([]bool, len(f.rows))
	for i, row := range f.rows {
		vals[i], ok[i] = ToFloat(row[ci])
	}
	return vals, ok, nil
}

// Bound is the union of all geometry bounds.
func (f *Frame) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, g := range f.geoms {
		if g == nil {
			continue
		}
		if first {
			b = g.Bound()
			first = false
			continue
		}
		b = b.Union(g.Bound())
	}
	return b
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame(%d rows, %d columns, %v)", len(f.rows), len(f.columns), f.srid)
}

// derive returns an empty frame sharing f's CRS with the given columns.
func (f *Frame) derive(columns []string) *Frame {
	out, err := newFrame(f.srid, columns)
	if err != nil {
		// columns always come from an existing frame
		panic(err)
	}
	return out
}

func (f *Frame) append(g orb.Geometry, row []interface{}) {
	f.rows = append(f.rows, row)
	f.geoms = append(f.geoms, g)
}
