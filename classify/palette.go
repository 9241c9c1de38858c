package classify

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	colors "gopkg.in/go-playground/colors.v1"
)

// DefaultPalette is the ColorBrewer scheme used when none is configured.
const DefaultPalette = "YlOrRd"

// Palette returns n colours from the named ColorBrewer scheme. Schemes
// start at three colours; smaller requests take the first n of three.
// Requests past the largest size of a scheme are interpolated across it.
func Palette(name string, n int) ([]color.Color, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrClasses, n)
	}
	if name == "" {
		name = DefaultPalette
	}
	want := n
	if want < 3 {
		want = 3
	}
	var (
		p   palette.Palette
		err error
	)
	for size := want; size >= 3; size-- {
		if p, err = brewer.GetPalette(brewer.TypeAny, name, size); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("palette %q with %d colours: %w", name, n, err)
	}
	c := p.Colors()
	if len(c) >= n {
		return c[:n], nil
	}
	return stretch(c, n), nil
}

// stretch spreads n colours evenly over the ramp c, keeping both ends.
func stretch(c []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	last := float64(len(c) - 1)
	for i := range out {
		t := float64(i) * last / float64(n-1)
		lo := int(math.Floor(t))
		if lo >= len(c)-1 {
			out[i] = c[len(c)-1]
			continue
		}
		out[i] = lerp(c[lo], c[lo+1], t-float64(lo))
	}
	return out
}

func lerp(a, b color.Color, t float64) color.Color {
	ca := color.NRGBAModel.Convert(a).(color.NRGBA)
	cb := color.NRGBAModel.Convert(b).(color.NRGBA)
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return color.NRGBA{R: mix(ca.R, cb.R), G: mix(ca.G, cb.G), B: mix(ca.B, cb.B), A: mix(ca.A, cb.A)}
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	rgb, err := colors.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	if err != nil {
		return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
	return rgb.ToHEX().String()
}

// ParseColor accepts hex (#rgb, #rrggbb), rgb() and rgba() notation.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := colors.Parse(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	rgba := c.ToRGBA()
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: uint8(rgba.A*255 + 0.5)}, nil
}

// MustColor is ParseColor for literals.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
