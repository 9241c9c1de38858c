package frame

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Record is a read-only view of one row.
type Record struct {
	f *Frame
	i int
}

// Index is the row number within the frame.
func (r Record) Index() int { return r.i }

func (r Record) Geometry() orb.Geometry { return r.f.geoms[r.i] }

// Get returns the value of col and whether col exists.
func (r Record) Get(col string) (interface{}, bool) {
	ci, ok := r.f.index[col]
	if !ok {
		return nil, false
	}
	return r.f.rows[r.i][ci], true
}

// Float returns col as a float64 when it holds a number.
func (r Record) Float(col string) (float64, bool) {
	v, ok := r.Get(col)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// String formats col for display. Missing and nil values are "".
func (r Record) String(col string) string {
	v, _ := r.Get(col)
	return FormatValue(v)
}

// Values returns a copy of the attribute values in column order.
func (r Record) Values() []interface{} {
	return append([]interface{}(nil), r.f.rows[r.i]...)
}

// Map returns the attributes keyed by column name.
func (r Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.f.columns))
	for ci, c := range r.f.columns {
		m[c] = r.f.rows[r.i][ci]
	}
	return m
}

// ToFloat converts numeric attribute values.
func ToFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float32:
		return float64(v), true
	}
	return 0, false
}

// GroupKey is the map key rows with value v are grouped under. Numbers
// that compare equal share a key.
func GroupKey(v interface{}) interface{} {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return int64(f)
	}
	return v
}

// FormatValue renders an attribute value the way it is shown in tooltips
// and CSV output.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(v)
}
