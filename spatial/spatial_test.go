package spatial_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-test/deep"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/spatial"
)

func rect(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func build(t *testing.T, srid crs.SRID, cols []string, rows ...[]interface{}) *frame.Frame {
	t.Helper()
	b := frame.NewBuilder(srid, cols...)
	for i, r := range rows {
		if err := b.Add(r[0].(orb.Geometry), r[1:]...); err != nil {
			t.Fatalf("row %v: %v", i, err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// grid is a 3x3 grid of 10 unit wards in web mercator.
func grid(t *testing.T) *frame.Frame {
	t.Helper()
	var rows [][]interface{}
	id := 1
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			rows = append(rows, []interface{}{rect(float64(x*10), float64(y*10), float64(x*10+10), float64(y*10+10)), id})
			id++
		}
	}
	return build(t, crs.WebMercator, []string{"ward"}, rows...)
}

func crimes(t *testing.T) *frame.Frame {
	t.Helper()
	pts := []orb.Point{{1, 1}, {2, 3}, {15, 5}, {25, 25}, {26, 27}, {28, 21}, {5, 15}, {-5, -5}, {31, 2}}
	rows := make([][]interface{}, len(pts))
	for i, p := range pts {
		rows[i] = []interface{}{p, i, "theft"}
	}
	return build(t, crs.WebMercator, []string{"id", "type"}, rows...)
}

func TestArea(t *testing.T) {
	f, err := spatial.Area(grid(t), "area")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := f.Record(0).Float("area"); v != 100 {
		t.Errorf("planar area, expected 100 got %v", v)
	}

	geo := build(t, crs.WGS84, []string{"id"}, []interface{}{rect(0, 0, 1, 1), 1})
	g, err := spatial.Area(geo, "area")
	if err != nil {
		t.Fatal(err)
	}
	// one degree square at the equator is roughly 12,300 km²
	if v, _ := g.Record(0).Float("area"); math.Abs(v-1.236e10)/1.236e10 > 0.01 {
		t.Errorf("spherical area, got %v", v)
	}

	none := build(t, crs.Unknown, []string{"id"}, []interface{}{rect(0, 0, 1, 1), 1})
	if _, err := spatial.Area(none, "area"); !errors.Is(err, crs.ErrUnknown) {
		t.Errorf("expected ErrUnknown got %v", err)
	}
}

func TestCentroid(t *testing.T) {
	f, err := spatial.Centroid(grid(t))
	if err != nil {
		t.Fatal(err)
	}
	got := f.Geometry(4).(orb.Point)
	if math.Abs(got[0]-15) > 1e-9 || math.Abs(got[1]-15) > 1e-9 {
		t.Errorf("centre ward centroid, expected {15 15} got %v", got)
	}
}

func TestBuffer(t *testing.T) {
	pts := build(t, crs.WebMercator, []string{"id"}, []interface{}{orb.Point{0, 0}, 1})
	b, err := spatial.Buffer(pts, 10, 64)
	if err != nil {
		t.Fatal(err)
	}
	area := planar.Area(b.Geometry(0))
	if want := math.Pi * 100; math.Abs(area-want)/want > 0.01 {
		t.Errorf("disc area, expected ~%v got %v", want, area)
	}

	sq := build(t, crs.WebMercator, []string{"id"}, []interface{}{rect(0, 0, 10, 10), 1})
	bs, err := spatial.Buffer(sq, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := 100 + 40 + math.Pi; math.Abs(planar.Area(bs.Geometry(0))-want)/want > 0.01 {
		t.Errorf("square buffer area, expected ~%v got %v", want, planar.Area(bs.Geometry(0)))
	}
	if bound := bs.Geometry(0).Bound(); bound.Min[0] > -1 || bound.Max[1] < 11 {
		t.Errorf("square buffer bound %v", bound)
	}

	if _, err := spatial.Buffer(pts, 0, 0); !errors.Is(err, spatial.ErrDistance) {
		t.Errorf("zero distance, expected ErrDistance got %v", err)
	}
	geo := build(t, crs.WGS84, []string{"id"}, []interface{}{orb.Point{0, 0}, 1})
	if _, err := spatial.Buffer(geo, 1, 0); !errors.Is(err, spatial.ErrGeographic) {
		t.Errorf("geographic, expected ErrGeographic got %v", err)
	}
}

func TestIntersect(t *testing.T) {
	a := build(t, crs.WebMercator, []string{"id", "name"},
		[]interface{}{rect(0, 0, 2, 2), 1, "a"},
		[]interface{}{rect(10, 10, 12, 12), 2, "far"},
	)
	b := build(t, crs.WebMercator, []string{"id"},
		[]interface{}{rect(1, 1, 3, 3), 9},
	)
	out, err := spatial.Intersect(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(out.Columns(), []string{"id", "name", "id.1"}); diff != nil {
		t.Error(diff)
	}
	if out.Len() != 1 {
		t.Fatalf("rows, expected 1 got %v", out.Len())
	}
	if got := planar.Area(out.Geometry(0)); math.Abs(got-1) > 1e-9 {
		t.Errorf("overlap area, expected 1 got %v", got)
	}
	if diff := deep.Equal(out.Record(0).Values(), []interface{}{int64(1), "a", int64(9)}); diff != nil {
		t.Error(diff)
	}

	c := build(t, crs.WebMercator, []string{"zone"}, []interface{}{rect(1.5, 1.5, 3.5, 3.5), "z"})
	pts, err := spatial.Intersect(crimes(t), c)
	if err != nil {
		t.Fatal(err)
	}
	if pts.Len() != 1 || pts.Geometry(0) != (orb.Point{2, 3}) {
		t.Errorf("point overlay, got %v rows", pts.Len())
	}

	other := build(t, crs.WGS84, []string{"id"}, []interface{}{rect(0, 0, 1, 1), 1})
	if _, err := spatial.Intersect(a, other); !errors.Is(err, crs.ErrMismatch) {
		t.Errorf("expected ErrMismatch got %v", err)
	}
}

// bruteForce counts points inside each polygon without any prefilter.
func bruteForce(polys, pts *frame.Frame) map[int]int {
	counts := make(map[int]int)
	for i := 0; i < polys.Len(); i++ {
		for j := 0; j < pts.Len(); j++ {
			if planar.PolygonContains(polys.Geometry(i).(orb.Polygon), pts.Geometry(j).(orb.Point)) {
				counts[i]++
			}
		}
	}
	return counts
}

func TestJoin(t *testing.T) {
	wards, pts := grid(t), crimes(t)
	want := bruteForce(wards, pts)
	total := 0
	for _, n := range want {
		total += n
	}

	inner, err := spatial.Join(wards, pts, spatial.JoinOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if inner.Len() != total {
		t.Errorf("inner rows, expected %v got %v", total, inner.Len())
	}
	counted, err := inner.GroupCount("ward", "n")
	if err != nil {
		t.Fatal(err)
	}
	if counted.Len() != len(want) {
		t.Errorf("inner join kept %v wards, expected %v", counted.Len(), len(want))
	}
	for i := 0; i < counted.Len(); i++ {
		r := counted.Record(i)
		ward, _ := r.Float("ward")
		n, _ := r.Float("n")
		if int(n) != want[int(ward)-1] {
			t.Errorf("ward %v, expected %v got %v", ward, want[int(ward)-1], n)
		}
	}

	left, err := spatial.Join(wards, pts, spatial.JoinOptions{Kind: spatial.Left})
	if err != nil {
		t.Fatal(err)
	}
	if exp := total + wards.Len() - len(want); left.Len() != exp {
		t.Errorf("left rows, expected %v got %v", exp, left.Len())
	}
	if diff := deep.Equal(left.Columns(), []string{"ward", "id", "type"}); diff != nil {
		t.Error(diff)
	}

	if _, err := spatial.Join(wards, build(t, crs.WGS84, []string{"id"}, []interface{}{orb.Point{1, 1}, 1}), spatial.JoinOptions{}); !errors.Is(err, crs.ErrMismatch) {
		t.Errorf("expected ErrMismatch got %v", err)
	}
}

func TestDissolve(t *testing.T) {
	f := build(t, crs.WebMercator, []string{"zone"},
		[]interface{}{rect(0, 0, 1, 1), "a"},
		[]interface{}{rect(1, 0, 2, 1), "a"},
		[]interface{}{rect(5, 5, 6, 6), "b"},
	)
	out, err := spatial.Dissolve(f, "zone")
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Fatalf("groups, expected 2 got %v", out.Len())
	}
	if got := planar.Area(out.Geometry(0)); math.Abs(got-2) > 1e-9 {
		t.Errorf("dissolved area, expected 2 got %v", got)
	}
	if n, _ := out.Record(0).Float("n"); n != 2 {
		t.Errorf("member count, expected 2 got %v", n)
	}
}

func TestDissolveNumericKeys(t *testing.T) {
	f := build(t, crs.WebMercator, []string{"ward"},
		[]interface{}{rect(0, 0, 1, 1), int64(1)},
		[]interface{}{rect(1, 0, 2, 1), float64(1)},
	)
	out, err := spatial.Dissolve(f, "ward")
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("groups, expected 1 got %v", out.Len())
	}
	if w, _ := out.Record(0).Get("ward"); w != int64(1) {
		t.Errorf("group value, expected first member's 1 got %#v", w)
	}
}

func TestParseJoinKind(t *testing.T) {
	for s, want := range map[string]spatial.JoinKind{"": spatial.Inner, "inner": spatial.Inner, "left": spatial.Left} {
		got, err := spatial.ParseJoinKind(s)
		if err != nil || got != want {
			t.Errorf("%q, expected %v got %v (%v)", s, want, got, err)
		}
	}
	if _, err := spatial.ParseJoinKind("outer"); err == nil {
		t.Error("expected error for outer")
	}
}

func TestJoinLeftWithoutGeometry(t *testing.T) {
	b := frame.NewBuilder(crs.WebMercator, "ward")
	if err := b.Add(rect(0, 0, 10, 10), 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(nil, 2); err != nil {
		t.Fatal(err)
	}
	wards, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	pts := build(t, crs.WebMercator, []string{"id"}, []interface{}{orb.Point{1, 1}, 7})

	left, err := spatial.Join(wards, pts, spatial.JoinOptions{Kind: spatial.Left})
	if err != nil {
		t.Fatal(err)
	}
	if left.Len() != 2 {
		t.Fatalf("left rows, expected 2 got %v", left.Len())
	}
	r := left.Record(1)
	ward, _ := r.Get("ward")
	id, _ := r.Get("id")
	if r.Geometry() != nil || ward != int64(2) || id != nil {
		t.Errorf("unmatched row, got %v %v %v", r.Geometry(), ward, id)
	}

	inner, err := spatial.Join(wards, pts, spatial.JoinOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if inner.Len() != 1 {
		t.Errorf("inner rows, expected 1 got %v", inner.Len())
	}
}
