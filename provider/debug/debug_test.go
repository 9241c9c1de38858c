package debug_test

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/provider"
	"github.com/atlasdatatech/geoframe/provider/debug"
)

func TestGrid(t *testing.T) {
	r, err := provider.For(debug.Name, dict.Dict{
		"rows":   2,
		"cols":   3,
		"extent": []interface{}{0, 0, 30, 20},
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 6 || f.SRID() != crs.WebMercator {
		t.Fatalf("grid, got %v rows in %v", f.Len(), f.SRID())
	}
	for i := 0; i < f.Len(); i++ {
		if a := planar.Area(f.Geometry(i)); a != 100 {
			t.Errorf("ward %v area, expected 100 got %v", i+1, a)
		}
	}
	if last, _ := f.Record(5).Float("ward"); last != 6 {
		t.Errorf("last ward, expected 6 got %v", last)
	}
}

func TestPoints(t *testing.T) {
	r, err := provider.For(debug.Name, dict.Dict{
		"mode":   "points",
		"count":  50,
		"extent": []interface{}{0.0, 0.0, 1.0, 1.0},
		"srid":   4326,
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 50 {
		t.Fatalf("points, expected 50 got %v", f.Len())
	}
	ext := orb.Bound{Max: orb.Point{1, 1}}
	seen := make(map[orb.Point]bool)
	for i := 0; i < f.Len(); i++ {
		p := f.Geometry(i).(orb.Point)
		if !ext.Contains(p) {
			t.Errorf("point %v outside extent", p)
		}
		if seen[p] {
			t.Errorf("point %v repeated", p)
		}
		seen[p] = true
	}

	again, _ := r.Read(context.Background())
	if again.Geometry(7) != f.Geometry(7) {
		t.Error("points are not deterministic")
	}

	layers, err := r.(provider.Layerer).Layers(context.Background())
	if err != nil || layers[0].ID() != debug.LayerDebugPoints {
		t.Fatalf("layers %v %v", layers, err)
	}
	if n := layers[0].(debug.Layer).Features(); n != f.Len() {
		t.Errorf("layer reports %d features, read %d", n, f.Len())
	}
}

func TestConfigErrors(t *testing.T) {
	for name, cfg := range map[string]dict.Dict{
		"mode":   {"mode": "lines"},
		"rows":   {"rows": 0},
		"extent": {"extent": []interface{}{0, 0, 0, 10}},
	} {
		if _, err := provider.For(debug.Name, cfg); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}
}
