package frame

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes one attribute column.
type ColumnSummary struct {
	Name    string
	Kind    string // int, float, string, bool, mixed or empty
	Nulls   int
	Numeric bool
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Summary describes a frame for inspection.
type Summary struct {
	Rows      int
	SRID      string
	GeomTypes map[string]int
	Columns   []ColumnSummary
	BoundMin  [2]float64
	BoundMax  [2]float64
}

// Summarize computes per-column statistics and geometry type counts.
func (f *Frame) Summarize() Summary {
	s := Summary{
		Rows:      f.Len(),
		SRID:      f.srid.String(),
		GeomTypes: make(map[string]int),
	}
	for _, g := range f.geoms {
		if g == nil {
			s.GeomTypes["null"]++
			continue
		}
		s.GeomTypes[g.GeoJSONType()]++
	}
	if f.Len() > 0 {
		b := f.Bound()
		s.BoundMin = [2]float64{b.Min[0], b.Min[1]}
		s.BoundMax = [2]float64{b.Max[0], b.Max[1]}
	}
	for ci, c := range f.columns {
		cs := ColumnSummary{Name: c}
		kinds := make(map[string]bool)
		var nums []float64
		for _, row := range f.rows {
			v := row[ci]
			if v == nil {
				cs.Nulls++
				continue
			}
			kinds[kindOf(v)] = true
			if x, ok := ToFloat(v); ok {
				nums = append(nums, x)
			}
		}
		cs.Kind = joinKinds(kinds)
		if len(nums) > 0 && len(nums) == f.Len()-cs.Nulls {
			cs.Numeric = true
			cs.Min, cs.Max = math.Inf(1), math.Inf(-1)
			for _, x := range nums {
				cs.Min = math.Min(cs.Min, x)
				cs.Max = math.Max(cs.Max, x)
			}
			cs.Mean = stat.Mean(nums, nil)
			if len(nums) > 1 {
				cs.StdDev = stat.StdDev(nums, nil)
			}
		}
		s.Columns = append(s.Columns, cs)
	}
	return s
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case int64:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	}
	return "string"
}

func joinKinds(kinds map[string]bool) string {
	switch len(kinds) {
	case 0:
		return "empty"
	case 1:
		for k := range kinds {
			return k
		}
	}
	if len(kinds) == 2 && kinds["int"] && kinds["float"] {
		return "float"
	}
	return "mixed"
}
