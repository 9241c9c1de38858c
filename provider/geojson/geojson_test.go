package geojson_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
	"github.com/atlasdatatech/geoframe/provider/geojson"
)

const wardsDoc = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1, "properties": {"ward": 1, "alderman": "Ada", "area": 2.5},
     "geometry": {"type": "Polygon", "coordinates": [[[-87.7,41.8],[-87.6,41.8],[-87.6,41.9],[-87.7,41.9],[-87.7,41.8]]]}},
    {"type": "Feature", "id": 2, "properties": {"ward": 2, "alderman": null, "tags": ["a","b"]},
     "geometry": {"type": "Polygon", "coordinates": [[[-87.6,41.8],[-87.5,41.8],[-87.5,41.9],[-87.6,41.9],[-87.6,41.8]]]}}
  ]
}`

func read(t *testing.T, config dict.Dict) *frame.Frame {
	t.Helper()
	r, err := provider.For(geojson.Name, config)
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wards.geojson")
	if err := os.WriteFile(path, []byte(wardsDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	f := read(t, dict.Dict{"path": path})
	if f.SRID() != crs.WGS84 {
		t.Errorf("srid, expected 4326 got %v", f.SRID())
	}
	if diff := deep.Equal(f.Columns(), []string{"id", "alderman", "area", "ward", "tags"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(f.Record(0).Values(), []interface{}{int64(1), "Ada", 2.5, int64(1), nil}); diff != nil {
		t.Error(diff)
	}
	if got := f.Record(1).String("tags"); got != `["a","b"]` {
		t.Errorf("tags, expected json text got %q", got)
	}

	over := read(t, dict.Dict{"path": path, "srid": 3857})
	if over.SRID() != crs.WebMercator {
		t.Errorf("srid override, got %v", over.SRID())
	}
}

func TestReadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wards.geojson" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(wardsDoc))
	}))
	defer srv.Close()

	f := read(t, dict.Dict{"path": srv.URL + "/wards.geojson"})
	if f.Len() != 2 {
		t.Errorf("features, expected 2 got %v", f.Len())
	}

	r, err := provider.For(geojson.Name, dict.Dict{"path": srv.URL + "/missing"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(context.Background()); err == nil {
		t.Error("expected error for 404")
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.geojson")
	os.WriteFile(bad, []byte(`{"type": "Feature"`), 0o644)

	for name, path := range map[string]string{
		"malformed": bad,
		"missing":   filepath.Join(dir, "nope.geojson"),
	} {
		r, err := provider.For(geojson.Name, dict.Dict{"path": path})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.Read(context.Background()); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}

	if _, err := provider.For(geojson.Name, dict.Dict{}); !errors.As(err, new(dict.ErrKeyRequired)) {
		t.Errorf("missing path, expected ErrKeyRequired got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	b := frame.NewBuilder(crs.WebMercator, "ward", "name", "count", "rate")
	rows := []struct {
		g    orb.Geometry
		vals []interface{}
	}{
		{orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}, []interface{}{1, "North", 12, 0.25}},
		{orb.Point{5, 5}, []interface{}{2, "South", nil, 100.0}},
		{orb.MultiPolygon{{{{20, 20}, {30, 20}, {30, 30}, {20, 20}}}}, []interface{}{3, "", 0, -2.75}},
	}
	for _, r := range rows {
		if err := b.Add(r.g, r.vals...); err != nil {
			t.Fatal(err)
		}
	}
	in, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "wards.geojson")
	w, err := provider.WriterFor(geojson.Name, dict.Dict{"path": path})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	out := read(t, dict.Dict{"path": path})
	if out.SRID() != crs.WebMercator {
		t.Errorf("srid from crs member, expected 3857 got %v", out.SRID())
	}
	if out.Len() != in.Len() {
		t.Fatalf("rows, expected %v got %v", in.Len(), out.Len())
	}
	for i := 0; i < in.Len(); i++ {
		if diff := deep.Equal(out.Geometry(i), in.Geometry(i)); diff != nil {
			t.Errorf("geometry %v: %v", i, diff)
		}
		for _, c := range in.Columns() {
			want, _ := in.Value(i, c)
			got, err := out.Value(i, c)
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(got, want); diff != nil {
				t.Errorf("row %v column %v: %v", i, c, diff)
			}
		}
	}
}
