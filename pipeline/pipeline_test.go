package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/pipeline"
	"github.com/atlasdatatech/geoframe/provider"
	_ "github.com/atlasdatatech/geoframe/provider/debug"
	"github.com/atlasdatatech/geoframe/provider/geojson"
	"github.com/atlasdatatech/geoframe/publish"
	"github.com/atlasdatatech/geoframe/render"
	_ "github.com/atlasdatatech/geoframe/render/svgmap"
)

var testWards = dict.Dict{
	"type": "debug",
	"mode": "grid",
	"rows": 2,
	"cols": 3,
}

var testCrimes = dict.Dict{
	"type":  "debug",
	"mode":  "points",
	"count": 60,
}

var testSteps = []dict.Dict{
	{"type": "join", "in": "wards", "with": "crimes", "out": "joined"},
	{"type": "count", "in": "joined", "column": "name", "as": "crimes", "out": "counts"},
	{"type": "sort", "in": "counts", "column": "crimes", "desc": true},
	{"type": "head", "in": "counts", "n": 4, "out": "top"},
	{"type": "classify", "in": "counts", "column": "crimes", "classes": 3},
	{"type": "area", "in": "counts", "as": "area_m2"},
}

func source(t *testing.T, name string, config dict.Dict) pipeline.Source {
	t.Helper()
	r, err := provider.For(config["type"].(string), config)
	if err != nil {
		t.Fatalf("provider %v: %v", name, err)
	}
	return pipeline.Source{Name: name, Reader: r}
}

func buildSteps(t *testing.T, configs []dict.Dict) []pipeline.Step {
	t.Helper()
	var out []pipeline.Step
	for i, c := range configs {
		s, err := pipeline.NewStep(c)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		out = append(out, s)
	}
	return out
}

func testPipeline(t *testing.T) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Sources: []pipeline.Source{source(t, "wards", testWards), source(t, "crimes", testCrimes)},
		Steps:   buildSteps(t, testSteps),
	}
}

// bruteCounts counts, per ward name, the points falling inside it.
func bruteCounts(t *testing.T, env *pipeline.Env) map[string]int64 {
	wards, err := env.Get("wards")
	if err != nil {
		t.Fatal(err)
	}
	crimes, err := env.Get("crimes")
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]int64)
	for i := 0; i < wards.Len(); i++ {
		poly := wards.Geometry(i).(orb.Polygon)
		for j := 0; j < crimes.Len(); j++ {
			if planar.PolygonContains(poly, crimes.Geometry(j).(orb.Point)) {
				out[wards.Record(i).String("name")]++
			}
		}
	}
	return out
}

func TestRun(t *testing.T) {
	env, err := testPipeline(t).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := deep.Equal(env.Names(), []string{"wards", "crimes", "joined", "counts", "top"}); diff != nil {
		t.Errorf("tables: %v", diff)
	}

	counts, _ := env.Get("counts")
	got := make(map[string]int64)
	var total int64
	for i := 0; i < counts.Len(); i++ {
		r := counts.Record(i)
		n, _ := r.Get("crimes")
		got[r.String("name")] = n.(int64)
		total += n.(int64)
	}
	if diff := deep.Equal(got, bruteCounts(t, env)); diff != nil {
		t.Errorf("counts: %v", diff)
	}
	joined, _ := env.Get("joined")
	if int64(joined.Len()) != total {
		t.Errorf("join rows %v, count total %v", joined.Len(), total)
	}

	// sorted descending, classified and measured in place
	if diff := deep.Equal(counts.Columns(), []string{"name", "crimes", "class", "color", "area_m2"}); diff != nil {
		t.Errorf("columns: %v", diff)
	}
	prev := int64(-1)
	for i := counts.Len() - 1; i >= 0; i-- {
		r := counts.Record(i)
		n, _ := r.Get("crimes")
		if n.(int64) < prev {
			t.Errorf("row %d not sorted descending", i)
		}
		prev = n.(int64)
		if r.String("color") == "" || r.String("class") == "" {
			t.Errorf("row %d not classified: %v", i, r.Map())
		}
		if a, ok := r.Float("area_m2"); !ok || a != 10000*15000 {
			t.Errorf("row %d area %v", i, a)
		}
	}

	top, _ := env.Get("top")
	if top.Len() != 4 {
		t.Errorf("top has %d rows", top.Len())
	}
}

func TestRunEmpty(t *testing.T) {
	p := testPipeline(t)
	p.Steps = buildSteps(t, []dict.Dict{
		{"type": "filter", "in": "crimes", "column": "type", "value": "ARSON", "out": "arson"},
	})

	_, err := p.Run(context.Background())
	if !errors.Is(err, pipeline.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if !strings.Contains(err.Error(), "step 1 filter(crimes) -> arson") {
		t.Errorf("error does not name the step: %v", err)
	}

	p.AllowEmpty = true
	env, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("allow_empty run: %v", err)
	}
	arson, _ := env.Get("arson")
	if arson.Len() != 0 {
		t.Errorf("expected no rows, got %d", arson.Len())
	}
}

func TestRunStageErrors(t *testing.T) {
	p := testPipeline(t)
	p.Steps = buildSteps(t, []dict.Dict{{"type": "select", "in": "nope", "columns": []interface{}{"a"}}})
	_, err := p.Run(context.Background())
	if !errors.Is(err, pipeline.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}

	p.Steps = buildSteps(t, []dict.Dict{{"type": "select", "in": "wards", "columns": []interface{}{"missing"}}})
	_, err = p.Run(context.Background())
	if !errors.Is(err, frame.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testPipeline(t).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	p := testPipeline(t)

	w, err := provider.WriterFor(geojson.Name, dict.Dict{"path": filepath.Join(dir, "counts.geojson")})
	if err != nil {
		t.Fatal(err)
	}
	r, err := render.For("svgmap", dict.Dict{})
	if err != nil {
		t.Fatal(err)
	}
	p.Outputs = []pipeline.Output{
		&pipeline.FrameOutput{Table: "counts", Driver: geojson.Name, Writer: w},
		&pipeline.RenderOutput{
			Name:    "maps/counts.svg",
			Backend: "svgmap",
			Layers: []pipeline.LayerSpec{
				{Table: "counts", Layer: render.Layer{Fill: "crimes", Classes: 3}},
				{Table: "crimes"},
			},
			Renderer:  r,
			Publisher: &publish.Dir{Path: dir},
		},
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"counts.geojson", filepath.Join("maps", "counts.svg")} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%v: %v", name, err)
			continue
		}
		if len(b) == 0 {
			t.Errorf("%v is empty", name)
		}
	}

	p.Outputs = []pipeline.Output{&pipeline.FrameOutput{Table: "missing", Driver: geojson.Name, Writer: w}}
	if _, err := p.Run(context.Background()); !errors.Is(err, pipeline.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}
