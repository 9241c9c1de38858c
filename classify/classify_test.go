package classify_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdey/tbltest"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geoframe/classify"
)

func TestPrettyBreaks(t *testing.T) {
	type tcase struct {
		lo, hi float64
		n      int
		want   []float64
	}
	// reference values from R's pretty()
	tests := tbltest.Cases(
		tcase{lo: 0, hi: 97, n: 5, want: []float64{0, 20, 40, 60, 80, 100}},
		tcase{lo: 1, hi: 9, n: 5, want: []float64{0, 2, 4, 6, 8, 10}},
		tcase{lo: 0, hi: 1, n: 5, want: []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		tcase{lo: -3.2, hi: 7.9, n: 5, want: []float64{-4, -2, 0, 2, 4, 6, 8}},
		tcase{lo: 12, hi: 287, n: 5, want: []float64{0, 50, 100, 150, 200, 250, 300}},
	)
	tests.Run(func(idx int, tc tcase) {
		got := classify.PrettyBreaks(tc.lo, tc.hi, tc.n)
		if diff := deep.Equal(got, tc.want); diff != nil {
			t.Errorf("[%v] pretty(%v, %v): %v", idx, tc.lo, tc.hi, diff)
		}
	})
}

func TestBreaks(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	q, err := classify.Breaks(vals, 2, classify.Quantile)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(q, []float64{1, 5, 10}); diff != nil {
		t.Errorf("quantile: %v", diff)
	}

	e, err := classify.Breaks([]float64{10, 0, 5}, 5, classify.Equal)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(e, []float64{0, 2, 4, 6, 8, 10}); diff != nil {
		t.Errorf("equal: %v", diff)
	}

	p, err := classify.Breaks([]float64{3, 97, 0, 41}, 5, classify.Pretty)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(p, []float64{0, 20, 40, 60, 80, 100}); diff != nil {
		t.Errorf("pretty: %v", diff)
	}

	same, err := classify.Breaks([]float64{4, 4, 4}, 3, classify.Quantile)
	if err != nil {
		t.Fatal(err)
	}
	if len(same) != 2 {
		t.Errorf("constant input, expected 2 breaks got %v", same)
	}

	if _, err := classify.Breaks(nil, 5, classify.Pretty); !errors.Is(err, classify.ErrNoValues) {
		t.Errorf("expected ErrNoValues got %v", err)
	}
	if _, err := classify.Breaks(vals, 0, classify.Pretty); !errors.Is(err, classify.ErrClasses) {
		t.Errorf("expected ErrClasses got %v", err)
	}
}

func TestClass(t *testing.T) {
	breaks := []float64{0, 20, 40, 60, 80, 100}
	type tcase struct {
		v    float64
		want int
	}
	tbltest.Cases(
		tcase{v: 0, want: 0},
		tcase{v: 19.99, want: 0},
		tcase{v: 20, want: 1},
		tcase{v: 79, want: 3},
		tcase{v: 100, want: 4},
		tcase{v: 101, want: -1},
		tcase{v: -1, want: -1},
	).Run(func(idx int, tc tcase) {
		if got := classify.Class(tc.v, breaks); got != tc.want {
			t.Errorf("[%v] class(%v), expected %v got %v", idx, tc.v, tc.want, got)
		}
	})

	if got := classify.Class(1, []float64{1}); got != -1 {
		t.Errorf("single break, expected -1 got %v", got)
	}
}

func TestLabels(t *testing.T) {
	got := classify.Labels([]float64{0, 2.5, 10})
	if diff := deep.Equal(got, []string{"0 – 2.5", "2.5 – 10"}); diff != nil {
		t.Error(diff)
	}
}

func TestPalette(t *testing.T) {
	p, err := classify.Palette("YlOrRd", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 5 {
		t.Fatalf("expected 5 colours got %v", len(p))
	}
	if got := strings.ToLower(classify.Hex(p[0])); got != "#ffffb2" {
		t.Errorf("first colour, expected #ffffb2 got %v", got)
	}

	two, err := classify.Palette("Blues", 2)
	if err != nil || len(two) != 2 {
		t.Errorf("two colours: %v %v", two, err)
	}
	if _, err := classify.Palette("NotAPalette", 5); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestPaletteBeyondScheme(t *testing.T) {
	breaks, err := classify.Breaks([]float64{0, 12.5, 37, 64, 100}, 9, classify.Pretty)
	if err != nil {
		t.Fatal(err)
	}
	bins := len(breaks) - 1
	if bins <= 9 {
		t.Fatalf("expected more bins than YlOrRd has colours, got %v", breaks)
	}
	p, err := classify.Palette("YlOrRd", bins)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != bins {
		t.Fatalf("expected %v colours got %v", bins, len(p))
	}
	nine, err := classify.Palette("YlOrRd", 9)
	if err != nil {
		t.Fatal(err)
	}
	if classify.Hex(p[0]) != classify.Hex(nine[0]) || classify.Hex(p[bins-1]) != classify.Hex(nine[8]) {
		t.Errorf("ends of the ramp moved: %v .. %v", classify.Hex(p[0]), classify.Hex(p[bins-1]))
	}
	seen := make(map[string]bool)
	for _, c := range p {
		seen[classify.Hex(c)] = true
	}
	if len(seen) != bins {
		t.Errorf("expected %v distinct colours got %v", bins, len(seen))
	}
}

func TestParseColor(t *testing.T) {
	c, err := classify.ParseColor("#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 255 || c.G != 0 || c.A != 255 {
		t.Errorf("parsed %v", c)
	}
	if _, err := classify.ParseColor("not a colour"); err == nil {
		t.Error("expected error")
	}
}
