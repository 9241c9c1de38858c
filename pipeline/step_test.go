package pipeline_test

import (
	"errors"
	"testing"

	"github.com/gdey/tbltest"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/pipeline"
	"github.com/atlasdatatech/geoframe/spatial"
)

func TestNewStep(t *testing.T) {
	type tcase struct {
		config dict.Dict
		str    string
		err    error
	}
	tbltest.Cases(
		tcase{config: dict.Dict{"type": "select", "in": "a", "columns": []interface{}{"x"}, "out": "b"}, str: "select(a) -> b"},
		tcase{config: dict.Dict{"type": "rename", "in": "a", "columns": map[string]interface{}{"x": "y"}}, str: "rename(a) -> a"},
		tcase{config: dict.Dict{"type": "join", "in": "wards", "with": "crimes", "how": "left"}, str: "join(wards, crimes) -> wards"},
		tcase{config: dict.Dict{"type": "set_crs", "in": "a", "srid": int64(4326)}, str: "set_crs(a) -> a"},
		tcase{config: dict.Dict{"type": "buffer", "in": "a", "distance": 100}, str: "buffer(a) -> a"},
		tcase{config: dict.Dict{"type": "filter", "in": "a", "column": "t", "op": "in", "value": []interface{}{"x"}}, str: "filter(a) -> a"},

		tcase{config: dict.Dict{"in": "a"}, err: dict.ErrKeyRequired("type")},
		tcase{config: dict.Dict{"type": "explode", "in": "a"}, err: pipeline.ErrUnknownStep{Kind: "explode"}},
		tcase{config: dict.Dict{"type": "select", "columns": []interface{}{"x"}}, err: dict.ErrKeyRequired("in")},
		tcase{config: dict.Dict{"type": "select", "in": "a"}, err: dict.ErrKeyRequired("columns")},
		tcase{config: dict.Dict{"type": "set_crs", "in": "a", "srid": 2263}, err: crs.ErrUnsupported},
		tcase{config: dict.Dict{"type": "buffer", "in": "a", "distance": -1}, err: spatial.ErrDistance},
		tcase{config: dict.Dict{"type": "filter", "in": "a", "column": "t", "op": "~", "value": 1}, err: frame.ErrOperator},
		tcase{config: dict.Dict{"type": "classify", "in": "a", "column": "n", "classes": 0}, err: classify.ErrClasses},
		tcase{config: dict.Dict{"type": "join", "in": "a", "with": "b", "how": "outer"}},
	).Run(func(idx int, tc tcase) {
		s, err := pipeline.NewStep(tc.config)
		if tc.str != "" {
			if err != nil {
				t.Errorf("[%v] unexpected error: %v", idx, err)
				return
			}
			if s.String() != tc.str {
				t.Errorf("[%v] string: expected %q, got %q", idx, tc.str, s.String())
			}
			return
		}
		if err == nil {
			t.Errorf("[%v] expected error, got nil", idx)
			return
		}
		if tc.err != nil && !errors.Is(err, tc.err) {
			t.Errorf("[%v] expected %v, got %v", idx, tc.err, err)
		}
	})
}

func TestEnv(t *testing.T) {
	env := pipeline.NewEnv()
	f, err := frame.NewBuilder(crs.WGS84, "a").Frame()
	if err != nil {
		t.Fatal(err)
	}
	env.Set("b", f)
	env.Set("a", f)
	env.Set("b", f)
	if got := env.Names(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("names: %v", got)
	}
	if _, err := env.Get("c"); !errors.Is(err, pipeline.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}
