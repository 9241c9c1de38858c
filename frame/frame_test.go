package frame_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/go-test/deep"
	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
)

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func wards(t *testing.T) *frame.Frame {
	t.Helper()
	b := frame.NewBuilder(crs.WGS84, "ward", "name", "pop")
	rows := []struct {
		ward int
		name string
		pop  interface{}
	}{
		{1, "North", 120.5},
		{2, "South", 80},
		{3, "East", nil},
		{4, "West", 200},
	}
	for i, r := range rows {
		if err := b.Add(square(float64(i), 0), r.ward, r.name, r.pop); err != nil {
			t.Fatalf("add row %v: %v", i, err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return f
}

func column(t *testing.T, f *frame.Frame, col string) []interface{} {
	t.Helper()
	v, err := f.Column(col)
	if err != nil {
		t.Fatalf("column %q: %v", col, err)
	}
	return v
}

func TestBuilder(t *testing.T) {
	b := frame.NewBuilder(crs.Unknown, "a", "b")
	if err := b.Add(orb.Point{0, 0}, 1); !errors.Is(err, frame.ErrArity) {
		t.Errorf("arity, expected ErrArity got %v", err)
	}
	if err := b.Add(orb.Point{0, 0}, int32(7), float32(1.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := deep.Equal(f.Record(0).Values(), []interface{}{int64(7), float64(1.5)}); diff != nil {
		t.Error(diff)
	}

	if _, err := frame.NewBuilder(crs.Unknown, "a", "a").Frame(); !errors.Is(err, frame.ErrDuplicateColumn) {
		t.Errorf("duplicate, expected ErrDuplicateColumn got %v", err)
	}
}

func TestSelectRenameDrop(t *testing.T) {
	f := wards(t)

	sel, err := f.Select("name", "ward")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if diff := deep.Equal(sel.Columns(), []string{"name", "ward"}); diff != nil {
		t.Error(diff)
	}
	if _, err := f.Select("nope"); !errors.Is(err, frame.ErrUnknownColumn) {
		t.Errorf("select unknown, expected ErrUnknownColumn got %v", err)
	}

	ren, err := f.Rename(map[string]string{"pop": "population"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !ren.HasColumn("population") || ren.HasColumn("pop") {
		t.Errorf("rename columns %v", ren.Columns())
	}
	if _, err := f.Rename(map[string]string{"pop": "name"}); !errors.Is(err, frame.ErrDuplicateColumn) {
		t.Errorf("rename collision, expected ErrDuplicateColumn got %v", err)
	}
	// receiver is untouched
	if !f.HasColumn("pop") {
		t.Error("rename mutated its input")
	}

	dr, err := f.Drop("pop")
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if diff := deep.Equal(dr.Columns(), []string{"ward", "name"}); diff != nil {
		t.Error(diff)
	}
}

func TestWhere(t *testing.T) {
	f := wards(t)
	type tcase struct {
		col   string
		op    string
		value interface{}
		names []interface{}
		err   error
	}
	tests := map[string]tcase{
		"gt":       {col: "pop", op: ">", value: 100, names: []interface{}{"North", "West"}},
		"le float": {col: "pop", op: "<=", value: 120.5, names: []interface{}{"North", "South"}},
		"eq":       {col: "name", op: "==", value: "East", names: []interface{}{"East"}},
		"ne":       {col: "ward", op: "!=", value: 1, names: []interface{}{"South", "East", "West"}},
		"in":       {col: "ward", op: "in", value: []interface{}{1, 4}, names: []interface{}{"North", "West"}},
		"contains": {col: "name", op: "contains", value: "th", names: []interface{}{"North", "South"}},
		"eq nil":   {col: "pop", op: "==", value: nil, names: []interface{}{"East"}},
		"bad op":   {col: "pop", op: "~", value: 1, err: frame.ErrOperator},
		"bad col":  {col: "x", op: "==", value: 1, err: frame.ErrUnknownColumn},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := f.Where(tc.col, tc.op, tc.value)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var names []interface{}
			if got.Len() > 0 {
				names = column(t, got, "name")
			}
			if diff := deep.Equal(names, tc.names); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestFilterSelectIdempotent(t *testing.T) {
	f := wards(t)
	apply := func(in *frame.Frame) *frame.Frame {
		out, err := in.Where("pop", ">=", 80)
		if err != nil {
			t.Fatal(err)
		}
		out, err = out.Select("ward", "pop")
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	once := apply(f)
	twice := apply(once)
	if once.Len() != twice.Len() {
		t.Fatalf("len, expected %v got %v", once.Len(), twice.Len())
	}
	for i := 0; i < once.Len(); i++ {
		if diff := deep.Equal(once.Record(i).Values(), twice.Record(i).Values()); diff != nil {
			t.Errorf("row %v: %v", i, diff)
		}
	}
}

func TestSortHead(t *testing.T) {
	f := wards(t)

	asc, err := f.SortBy("pop", false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(column(t, asc, "name"), []interface{}{"South", "North", "West", "East"}); diff != nil {
		t.Errorf("asc: %v", diff)
	}

	desc, err := f.SortBy("pop", true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(column(t, desc, "name"), []interface{}{"West", "North", "South", "East"}); diff != nil {
		t.Errorf("desc: %v", diff)
	}

	top := desc.Head(2)
	if diff := deep.Equal(column(t, top, "ward"), []interface{}{int64(4), int64(1)}); diff != nil {
		t.Errorf("head: %v", diff)
	}
	if got := f.Head(10).Len(); got != 4 {
		t.Errorf("head past end, expected 4 got %v", got)
	}
	if got := top.Geometry(0).(orb.Polygon)[0][0]; got != (orb.Point{3, 0}) {
		t.Errorf("head geometry, expected ward 4 square got %v", got)
	}
}

func TestGroupCount(t *testing.T) {
	b := frame.NewBuilder(crs.WGS84, "ward", "type")
	for i, r := range [][]interface{}{{1, "theft"}, {2, "theft"}, {1, "arson"}, {3, nil}, {1, "theft"}} {
		if err := b.Add(square(float64(i), 0), r...); err != nil {
			t.Fatal(err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	g, err := f.GroupCount("ward", "n")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(column(t, g, "ward"), []interface{}{int64(1), int64(2), int64(3)}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(column(t, g, "n"), []interface{}{int64(3), int64(1), int64(1)}); diff != nil {
		t.Error(diff)
	}
	// first member's geometry
	if got := g.Geometry(1).(orb.Polygon)[0][0]; got != (orb.Point{1, 0}) {
		t.Errorf("group geometry, expected {1 0} got %v", got)
	}
}

func TestGroupCountNumericKeys(t *testing.T) {
	b := frame.NewBuilder(crs.WGS84, "ward")
	for i, w := range []interface{}{int64(1), float64(1), 2.5, int64(2)} {
		if err := b.Add(square(float64(i), 0), w); err != nil {
			t.Fatal(err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	eq, err := f.Where("ward", "==", 1)
	if err != nil {
		t.Fatal(err)
	}
	g, err := f.GroupCount("ward", "n")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(column(t, g, "ward"), []interface{}{int64(1), 2.5, int64(2)}); diff != nil {
		t.Error(diff)
	}
	if n := g.Record(0).String("n"); n != strconv.Itoa(eq.Len()) {
		t.Errorf("group of 1 has %v rows, where(== 1) has %v", n, eq.Len())
	}
}

func TestWithColumn(t *testing.T) {
	f := wards(t)
	out := f.WithColumn("label", func(r frame.Record) interface{} {
		return r.String("name") + "!"
	})
	if diff := deep.Equal(column(t, out, "label"), []interface{}{"North!", "South!", "East!", "West!"}); diff != nil {
		t.Error(diff)
	}
	if f.HasColumn("label") {
		t.Error("WithColumn mutated its input")
	}
	replaced := out.WithColumn("ward", func(r frame.Record) interface{} { return 0 })
	if len(replaced.Columns()) != len(out.Columns()) {
		t.Errorf("replace added a column: %v", replaced.Columns())
	}
}

func TestSetSRID(t *testing.T) {
	b := frame.NewBuilder(crs.Unknown, "id")
	if err := b.Add(orb.Point{-87.6, 41.8}, 1); err != nil {
		t.Fatal(err)
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Transform(crs.WebMercator); !errors.Is(err, crs.ErrUnknown) {
		t.Errorf("transform without crs, expected ErrUnknown got %v", err)
	}

	g, err := f.SetSRID(crs.WGS84)
	if err != nil {
		t.Fatal(err)
	}
	if g.SRID() != crs.WGS84 || f.SRID() != crs.Unknown {
		t.Errorf("srid, got %v (input %v)", g.SRID(), f.SRID())
	}
	if _, err := g.SetSRID(crs.WGS84); err != nil {
		t.Errorf("same srid again: %v", err)
	}
	if _, err := g.SetSRID(crs.WebMercator); !errors.Is(err, crs.ErrAlreadySet) {
		t.Errorf("expected ErrAlreadySet got %v", err)
	}

	m, err := g.Transform(crs.WebMercator)
	if err != nil {
		t.Fatal(err)
	}
	if m.SRID() != crs.WebMercator {
		t.Errorf("transformed srid %v", m.SRID())
	}
	if p := m.Geometry(0).(orb.Point); p[0] > -9e6 || p[0] < -1e7 {
		t.Errorf("transformed x out of range: %v", p)
	}
}

func TestSummarize(t *testing.T) {
	s := wards(t).Summarize()
	if s.Rows != 4 || s.GeomTypes["Polygon"] != 4 {
		t.Errorf("summary rows/types: %+v", s)
	}
	pop := s.Columns[2]
	if !pop.Numeric || pop.Nulls != 1 || pop.Min != 80 || pop.Max != 200 {
		t.Errorf("pop summary: %+v", pop)
	}
	if s.Columns[1].Kind != "string" {
		t.Errorf("name kind %q", s.Columns[1].Kind)
	}
}
