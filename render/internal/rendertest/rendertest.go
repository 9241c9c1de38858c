// Package rendertest builds small layers for renderer tests.
package rendertest

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/render"
)

// Wards is a 3x2 grid of wards in web mercator with theft and battery
// counts.
func Wards(t testing.TB) *frame.Frame {
	t.Helper()
	b := frame.NewBuilder(crs.WebMercator, "ward", "name", "theft", "battery")
	counts := [][2]interface{}{{12, 3}, {40, 7}, {5, nil}, {77, 21}, {0, 1}, {33, 9}}
	for i, c := range counts {
		x := -9760000 + float64(i%3)*1000
		y := 5140000 + float64(i/3)*1000
		poly := orb.Polygon{{{x, y}, {x + 1000, y}, {x + 1000, y + 1000}, {x, y + 1000}, {x, y}}}
		if err := b.Add(poly, i+1, "Ward <"+string(rune('A'+i))+">", c[0], c[1]); err != nil {
			t.Fatal(err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// Crimes scatters a handful of points over Wards.
func Crimes(t testing.TB) *frame.Frame {
	t.Helper()
	b := frame.NewBuilder(crs.WebMercator, "id", "type")
	for i := 0; i < 8; i++ {
		p := orb.Point{-9760000 + float64(i)*350 + 50, 5140000 + float64(i%2)*1200 + 300}
		if err := b.Add(p, i, "THEFT"); err != nil {
			t.Fatal(err)
		}
	}
	f, err := b.Frame()
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// Layers is a choropleth of theft counts with crimes on top.
func Layers(t testing.TB) []*render.Layer {
	return []*render.Layer{
		{Name: "wards", Frame: Wards(t), Fill: "theft", Classes: 4, Palette: "YlOrRd", Tooltip: []string{"name", "theft"}},
		{Name: "crimes", Frame: Crimes(t)},
	}
}
