package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/paulmach/orb"
)

// Select keeps the named columns in the given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		ci, ok := f.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		idx[i] = ci
	}
	out, err := newFrame(f.srid, cols)
	if err != nil {
		return nil, err
	}
	for i, row := range f.rows {
		nrow := make([]interface{}, len(idx))
		for j, ci := range idx {
			nrow[j] = row[ci]
		}
		out.append(f.geoms[i], nrow)
	}
	return out, nil
}

// Rename renames columns. Every key of names must exist and the result must
// not contain duplicates.
func (f *Frame) Rename(names map[string]string) (*Frame, error) {
	for old := range names {
		if _, ok := f.index[old]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, old)
		}
	}
	cols := make([]string, len(f.columns))
	for i, c := range f.columns {
		if n, ok := names[c]; ok {
			cols[i] = n
			continue
		}
		cols[i] = c
	}
	out, err := newFrame(f.srid, cols)
	if err != nil {
		return nil, err
	}
	out.rows = f.rows
	out.geoms = f.geoms
	return out, nil
}

// Drop removes the named columns. Unknown names are an error.
func (f *Frame) Drop(cols ...string) (*Frame, error) {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		if _, ok := f.index[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		drop[c] = true
	}
	keep := make([]string, 0, len(f.columns))
	for _, c := range f.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	return f.Select(keep...)
}

// Filter keeps the rows for which pred returns true.
func (f *Frame) Filter(pred func(r Record) bool) *Frame {
	out := f.derive(f.columns)
	for i := range f.rows {
		if pred(Record{f: f, i: i}) {
			out.append(f.geoms[i], f.rows[i])
		}
	}
	return out
}

// Where filters on a single column comparison. Supported operators are
// == != < <= > >= in and contains. For "in" value must be a slice.
func (f *Frame) Where(col, op string, value interface{}) (*Frame, error) {
	if !f.HasColumn(col) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	pred, err := comparison(op, value)
	if err != nil {
		return nil, err
	}
	return f.Filter(func(r Record) bool {
		v, _ := r.Get(col)
		return pred(v)
	}), nil
}

func comparison(op string, value interface{}) (func(v interface{}) bool, error) {
	switch op {
	case "==", "=":
		return func(v interface{}) bool { return Compare(v, value) == 0 && (v == nil) == (value == nil) }, nil
	case "!=":
		return func(v interface{}) bool { return Compare(v, value) != 0 || (v == nil) != (value == nil) }, nil
	case "<":
		return ordered(value, func(c int) bool { return c < 0 }), nil
	case "<=":
		return ordered(value, func(c int) bool { return c <= 0 }), nil
	case ">":
		return ordered(value, func(c int) bool { return c > 0 }), nil
	case ">=":
		return ordered(value, func(c int) bool { return c >= 0 }), nil
	case "in":
		set, ok := value.([]interface{})
		if !ok {
			if ss, isStrings := value.([]string); isStrings {
				for _, s := range ss {
					set = append(set, s)
				}
				ok = true
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: in expects a list, got %T", ErrOperator, value)
		}
		return func(v interface{}) bool {
			for _, s := range set {
				if v != nil && Compare(v, Normalize(s)) == 0 {
					return true
				}
			}
			return false
		}, nil
	case "contains":
		sub := FormatValue(value)
		return func(v interface{}) bool {
			return v != nil && strings.Contains(FormatValue(v), sub)
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrOperator, op)
}

// ordered never matches nil values.
func ordered(value interface{}, ok func(int) bool) func(v interface{}) bool {
	return func(v interface{}) bool {
		if v == nil || value == nil {
			return false
		}
		return ok(Compare(v, value))
	}
}

// Compare orders two attribute values. Numbers compare numerically when
// both sides are numeric, everything else compares as strings. nil sorts
// after every other value.
func Compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	af, aok := ToFloat(a)
	bf, bok := ToFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// SortBy orders rows by col. The sort is stable and nil values always come
// last, in either direction.
func (f *Frame) SortBy(col string, desc bool) (*Frame, error) {
	ci, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	order := make([]int, len(f.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := f.rows[order[i]][ci], f.rows[order[j]][ci]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		c := Compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	out := f.derive(f.columns)
	for _, i := range order {
		out.append(f.geoms[i], f.rows[i])
	}
	return out, nil
}

// Head keeps the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > len(f.rows) {
		n = len(f.rows)
	}
	out := f.derive(f.columns)
	out.rows = append(out.rows, f.rows[:n]...)
	out.geoms = append(out.geoms, f.geoms[:n]...)
	return out
}

// WithColumn adds or replaces column name with the values computed by fn.
func (f *Frame) WithColumn(name string, fn func(r Record) interface{}) *Frame {
	ci, exists := f.index[name]
	cols := f.columns
	if !exists {
		cols = append(append([]string(nil), f.columns...), name)
		ci = len(cols) - 1
	}
	out := f.derive(cols)
	for i, row := range f.rows {
		nrow := make([]interface{}, len(cols))
		copy(nrow, row)
		nrow[ci] = Normalize(fn(Record{f: f, i: i}))
		out.append(f.geoms[i], nrow)
	}
	return out
}

// WithGeometry replaces every geometry with the result of fn. A nil
// geometry drops the row.
func (f *Frame) WithGeometry(fn func(r Record) (orb.Geometry, error)) (*Frame, error) {
	out := f.derive(f.columns)
	for i := range f.rows {
		g, err := fn(Record{f: f, i: i})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if g == nil {
			continue
		}
		out.append(g, f.rows[i])
	}
	return out, nil
}

// GroupCount returns one row per distinct value of col, in first-seen
// order, with that group's first geometry and the member count in
// countCol.
func (f *Frame) GroupCount(col, countCol string) (*Frame, error) {
	ci, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	if col == countCol {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, countCol)
	}
	type group struct {
		first int
		count int64
	}
	var (
		keys   []interface{}
		groups = make(map[interface{}]*group)
	)
	for i, row := range f.rows {
		k := GroupKey(row[ci])
		g, seen := groups[k]
		if !seen {
			g = &group{first: i}
			groups[k] = g
			keys = append(keys, k)
		}
		g.count++
	}
	out, err := newFrame(f.srid, []string{col, countCol})
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		g := groups[k]
		out.append(f.geoms[g.first], []interface{}{f.rows[g.first][ci], g.count})
	}
	return out, nil
}

// SetSRID attaches a CRS to a frame that lacks one.
func (f *Frame) SetSRID(srid crs.SRID) (*Frame, error) {
	if _, err := crs.Lookup(srid); err != nil {
		return nil, err
	}
	if f.srid != crs.Unknown && f.srid != srid {
		return nil, fmt.Errorf("%w: frame is %v, asked for %v", crs.ErrAlreadySet, f.srid, srid)
	}
	out := f.derive(f.columns)
	out.srid = srid
	out.rows = f.rows
	out.geoms = f.geoms
	return out, nil
}

// Transform reprojects every geometry into the target CRS.
func (f *Frame) Transform(to crs.SRID) (*Frame, error) {
	if f.srid == crs.Unknown {
		return nil, fmt.Errorf("transform %v: %w", f, crs.ErrUnknown)
	}
	out := f.derive(f.columns)
	out.srid = to
	for i, g := range f.geoms {
		tg, err := crs.Transform(g, f.srid, to)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out.append(tg, f.rows[i])
	}
	return out, nil
}
