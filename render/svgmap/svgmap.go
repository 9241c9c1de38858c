// Package svgmap lays a map out directly as SVG: one path per area with
// a <title> hover text, circles for points and a class legend.
package svgmap

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
)

const Name = "svgmap"

const (
	ConfigKeyBackground = "background"
	DefaultBackground   = "#ffffff"

	margin      = 20
	legendWidth = 160
	swatchSize  = 14
)

func init() {
	render.Register(Name, New)
}

type Renderer struct {
	Background string
}

func New(config dict.Dicter) (render.Renderer, error) {
	bg := DefaultBackground
	bg, err := config.String(ConfigKeyBackground, &bg)
	if err != nil {
		return nil, err
	}
	if _, err := classify.ParseColor(bg); err != nil {
		return nil, err
	}
	return &Renderer{Background: bg}, nil
}

func (r *Renderer) ContentType() string { return "image/svg+xml" }

func (r *Renderer) Render(ctx context.Context, w io.Writer, layers []*render.Layer, opts render.Options) error {
	styled, err := render.ClassifyAll(layers)
	if err != nil {
		return err
	}
	width, height := opts.Size()

	top := float64(margin)
	if opts.Title != "" {
		top += 24
	}
	vp := render.NewViewport(render.Bound(layers), float64(width-legendWidth), float64(height)-top+margin, margin)

	canvas := svg.New(w)
	canvas.Start(width, height, `font-family="Helvetica,Arial,sans-serif" font-size="12px"`)
	canvas.Rect(0, 0, width, height, "fill:"+r.Background)
	if opts.Title != "" {
		canvas.Text(margin, margin+8, opts.Title, "font-size:18px;font-weight:bold")
	}

	canvas.Group(fmt.Sprintf(`transform="translate(0,%d)"`, int(top)-margin))
	for _, s := range styled {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		drawLayer(canvas, vp, s)
	}
	canvas.Gend()

	drawLegend(canvas, styled, width-legendWidth+margin, int(top)+margin)
	canvas.End()
	return nil
}

func drawLayer(canvas *svg.SVG, vp render.Viewport, s *render.Styled) {
	canvas.Group(`class="layer"`)
	defer canvas.Gend()

	stroke := classify.Hex(s.Stroke())
	point := classify.Hex(s.Point())
	for i := 0; i < s.Frame.Len(); i++ {
		g := s.Frame.Geometry(i)
		if g == nil {
			continue
		}
		polys, lines, pts := render.Parts(g)
		canvas.Group(`class="feature"`)
		canvas.Title(s.TooltipText(i, "\n"))
		if len(polys) > 0 {
			style := fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:0.5;fill-rule:evenodd",
				classify.Hex(s.RowFill[i]), s.FillOpacity(), stroke)
			canvas.Path(polygonPath(vp, polys), style)
		}
		for _, ls := range lines {
			canvas.Path(linePath(vp, ls, false), "fill:none;stroke:"+stroke)
		}
		for _, p := range pts {
			x, y := vp.Project(p)
			canvas.Circle(round(x), round(y), int(math.Max(1, s.PointRadius())), "fill:"+point+";stroke:#ffffff;stroke-width:0.5")
		}
		canvas.Gend()
	}
}

func drawLegend(canvas *svg.SVG, styled []*render.Styled, x, y int) {
	for _, s := range styled {
		entries := s.Legend()
		if len(entries) == 0 {
			continue
		}
		canvas.Text(x, y, s.Fill, "font-weight:bold")
		y += 8
		for _, e := range entries {
			canvas.Rect(x, y, swatchSize, swatchSize, "fill:"+classify.Hex(e.Color)+";stroke:#555555;stroke-width:0.5")
			canvas.Text(x+swatchSize+6, y+swatchSize-3, e.Label)
			y += swatchSize + 4
		}
		y += 16
	}
}

func polygonPath(vp render.Viewport, polys []orb.Polygon) string {
	var b strings.Builder
	for _, p := range polys {
		for _, r := range p {
			b.WriteString(linePath(vp, orb.LineString(r), true))
		}
	}
	return b.String()
}

func linePath(vp render.Viewport, ls orb.LineString, closed bool) string {
	var b strings.Builder
	for i, p := range ls {
		x, y := vp.Project(p)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%.2f %.2f", cmd, x, y)
	}
	if closed && len(ls) > 0 {
		b.WriteString("Z")
	}
	return b.String()
}

func round(v float64) int { return int(math.Round(v)) }
