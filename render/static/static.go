// Package static draws maps as images with gonum/plot: PNG, JPEG, TIFF,
// SVG, PDF and WebP. Several fill columns of one layer can be drawn as
// side by side panels.
package static

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
)

const Name = "static"

// config keys
const (
	ConfigKeyFormat  = "format"
	ConfigKeyQuality = "quality"
	DefaultFormat    = "png"
	DefaultQuality   = 85
)

func init() {
	render.Register(Name, New)
}

// Renderer draws with gonum/plot.
type Renderer struct {
	Format  string
	Quality int
}

func New(config dict.Dicter) (render.Renderer, error) {
	var err error
	r := &Renderer{}
	format := DefaultFormat
	if r.Format, err = config.String(ConfigKeyFormat, &format); err != nil {
		return nil, err
	}
	r.Format = strings.TrimPrefix(strings.ToLower(r.Format), ".")
	if !supported(r.Format) {
		return nil, fmt.Errorf("static: unsupported format %q", r.Format)
	}
	quality := DefaultQuality
	if r.Quality, err = config.Int(ConfigKeyQuality, &quality); err != nil {
		return nil, err
	}
	return r, nil
}

func supported(format string) bool {
	if format == "webp" {
		return true
	}
	for _, f := range draw.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

func (r *Renderer) ContentType() string {
	switch r.Format {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	}
	return "image/png"
}

// pixels converts a pixel count at the vgimg default of 96 dpi.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

func (r *Renderer) Render(ctx context.Context, w io.Writer, layers []*render.Layer, opts render.Options) error {
	styled, err := render.ClassifyAll(layers)
	if err != nil {
		return err
	}

	plots, err := panels(layers, styled, opts)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	width, height := opts.Size()
	tiles := draw.Tiles{Rows: 1, Cols: len(plots), PadX: vg.Millimeter * 2}
	tileW := float64(width) / float64(len(plots))
	for _, p := range plots {
		fitAspect(p, tileW/float64(height))
	}

	pw, ph := pixels(width), pixels(height)
	if r.Format == "webp" {
		c := vgimg.New(pw, ph)
		drawAll(plots, tiles, draw.New(c))
		return webp.Encode(w, c.Image(), &webp.Options{Quality: float32(r.Quality)})
	}

	c, err := draw.NewFormattedCanvas(pw, ph, r.Format)
	if err != nil {
		return err
	}
	drawAll(plots, tiles, draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

func drawAll(plots []*plot.Plot, tiles draw.Tiles, dc draw.Canvas) {
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}
}

// panels builds one plot per panel column, or a single plot.
func panels(layers []*render.Layer, styled []*render.Styled, opts render.Options) ([]*plot.Plot, error) {
	if len(opts.Panels) == 0 {
		p, err := mapPlot(opts.Title, styled)
		if err != nil {
			return nil, err
		}
		return []*plot.Plot{p}, nil
	}

	var plots []*plot.Plot
	for _, col := range opts.Panels {
		first, err := layers[0].WithFill(col).Classify()
		if err != nil {
			return nil, err
		}
		ls := append([]*render.Styled{first}, styled[1:]...)
		p, err := mapPlot(col, ls)
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, nil
}

func mapPlot(title string, styled []*render.Styled) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Legend.Top = true

	for _, s := range styled {
		if err := addLayer(p, s); err != nil {
			return nil, err
		}
		for _, e := range s.Legend() {
			sw, err := swatch(e.Color)
			if err != nil {
				return nil, err
			}
			p.Legend.Add(e.Label, sw)
		}
	}
	return p, nil
}

func addLayer(p *plot.Plot, s *render.Styled) error {
	f := s.Frame
	var pts plotter.XYs
	for i := 0; i < f.Len(); i++ {
		g := f.Geometry(i)
		if g == nil {
			continue
		}
		polys, lines, points := render.Parts(g)
		for _, poly := range polys {
			pp, err := plotter.NewPolygon(rings(poly)...)
			if err != nil {
				return err
			}
			pp.Color = s.RowFill[i]
			pp.LineStyle.Color = s.Stroke()
			pp.LineStyle.Width = vg.Points(0.5)
			p.Add(pp)
		}
		for _, ls := range lines {
			l, err := plotter.NewLine(xys(ls))
			if err != nil {
				return err
			}
			l.LineStyle.Color = s.Stroke()
			p.Add(l)
		}
		for _, pt := range points {
			pts = append(pts, plotter.XY{X: pt[0], Y: pt[1]})
		}
	}
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = s.Point()
	sc.GlyphStyle.Radius = vg.Points(s.PointRadius() / 2)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)
	return nil
}

func rings(p orb.Polygon) []plotter.XYer {
	out := make([]plotter.XYer, len(p))
	for i, r := range p {
		out[i] = xys(orb.LineString(r))
	}
	return out
}

func xys(ls orb.LineString) plotter.XYs {
	out := make(plotter.XYs, len(ls))
	for i, pt := range ls {
		out[i] = plotter.XY{X: pt[0], Y: pt[1]}
	}
	return out
}

func swatch(c color.Color) (*plotter.Polygon, error) {
	sw, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, err
	}
	sw.Color = c
	sw.LineStyle.Width = 0
	return sw, nil
}

// fitAspect widens the shorter axis range so one data unit has the same
// length on both axes for a canvas of the given width/height ratio.
func fitAspect(p *plot.Plot, ratio float64) {
	dx, dy := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	if dx <= 0 || dy <= 0 || ratio <= 0 {
		return
	}
	if dx/dy < ratio {
		grow := (dy*ratio - dx) / 2
		p.X.Min -= grow
		p.X.Max += grow
		return
	}
	grow := (dx/ratio - dy) / 2
	p.Y.Min -= grow
	p.Y.Max += grow
}
