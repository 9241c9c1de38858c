// Package gg draws maps with the go-gg grammar of graphics. Each ring
// becomes a filled path, points become a point layer, and every panel
// becomes a facet of the same plot.
package gg

import (
	"context"
	"fmt"
	"image/color"
	"io"
	stdlog "log"
	"math"
	"strings"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
)

const Name = "gg"

const (
	ConfigKeyCols = "cols"

	colX     = "x"
	colY     = "y"
	colPX    = "px"
	colPY    = "py"
	colRing  = "ring"
	colFill  = "fill"
	colPoint = "point"
	colPanel = "panel"
)

func init() {
	gg.Warning = stdlog.New(warnWriter{}, "", 0)
	render.Register(Name, New)
}

type Renderer struct {
	// Cols is the number of facet columns. Zero lets go-gg choose.
	Cols int
}

func New(config dict.Dicter) (render.Renderer, error) {
	cols := 0
	cols, err := config.Int(ConfigKeyCols, &cols)
	if err != nil {
		return nil, err
	}
	if cols < 0 {
		return nil, fmt.Errorf("gg: %v must not be negative", ConfigKeyCols)
	}
	return &Renderer{Cols: cols}, nil
}

func (r *Renderer) ContentType() string { return "image/svg+xml" }

func (r *Renderer) Render(ctx context.Context, w io.Writer, layers []*render.Layer, opts render.Options) error {
	if len(layers) == 0 {
		return render.ErrNoLayers
	}
	panels := []*render.Layer{layers[0]}
	if len(opts.Panels) > 0 {
		panels = panels[:0]
		for _, col := range opts.Panels {
			panels = append(panels, layers[0].WithFill(col))
		}
	}

	var t frameTable
	for _, panel := range panels {
		set := append([]*render.Layer{panel}, layers[1:]...)
		styled, err := render.ClassifyAll(set)
		if err != nil {
			return err
		}
		name := panel.Fill
		if name == "" {
			name = panel.Name
		}
		for li, s := range styled {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.addLayer(fmt.Sprintf("%s/%d", name, li), name, s)
		}
	}
	if len(t.x) == 0 {
		return fmt.Errorf("gg: %w", render.ErrNoLayers)
	}

	p := gg.NewPlot(t.table())
	if opts.Title != "" {
		p.Add(gg.Title(opts.Title))
	}
	if len(panels) > 1 {
		p.Add(gg.FacetWrap{Col: colPanel, Cols: r.Cols})
	}

	p.Save()
	p.GroupBy(colRing)
	p.Add(gg.LayerPaths{X: colX, Y: colY, Fill: colFill})
	p.Restore()
	if t.points > 0 {
		p.Add(gg.LayerPoints{X: colPX, Y: colPY, Color: colPoint})
	}

	width, height := opts.Size()
	return p.WriteSVG(w, width, height)
}

// frameTable collects the long-format columns handed to go-gg. Area
// rows leave px and py NaN and point rows leave x and y NaN so each
// layer only sees its own rows.
type frameTable struct {
	x, y, px, py []float64
	ring, panel  []string
	fill, point  []color.Color
	points       int
}

func (t *frameTable) addLayer(prefix, panel string, s *render.Styled) {
	stroke, pointColor := s.Stroke(), s.Point()
	for i := 0; i < s.Frame.Len(); i++ {
		g := s.Frame.Geometry(i)
		if g == nil {
			continue
		}
		polys, lines, pts := render.Parts(g)
		n := 0
		for _, poly := range polys {
			for ri, r := range poly {
				fill := s.RowFill[i]
				if ri > 0 {
					fill = color.White
				}
				t.addPath(fmt.Sprintf("%s/%d/%d", prefix, i, n), panel, orb.LineString(r), fill)
				n++
			}
		}
		for _, ls := range lines {
			t.addPath(fmt.Sprintf("%s/%d/%d", prefix, i, n), panel, ls, color.Transparent)
			n++
		}
		for _, pt := range pts {
			t.add(math.NaN(), math.NaN(), pt[0], pt[1], "", panel, stroke, pointColor)
			t.points++
		}
	}
}

func (t *frameTable) addPath(ring, panel string, ls orb.LineString, fill color.Color) {
	for _, pt := range ls {
		t.add(pt[0], pt[1], math.NaN(), math.NaN(), ring, panel, fill, color.Transparent)
	}
}

func (t *frameTable) add(x, y, px, py float64, ring, panel string, fill, point color.Color) {
	t.x = append(t.x, x)
	t.y = append(t.y, y)
	t.px = append(t.px, px)
	t.py = append(t.py, py)
	t.ring = append(t.ring, ring)
	t.panel = append(t.panel, panel)
	t.fill = append(t.fill, fill)
	t.point = append(t.point, point)
}

func (t *frameTable) table() *table.Table {
	return new(table.Builder).
		Add(colX, t.x).
		Add(colY, t.y).
		Add(colPX, t.px).
		Add(colPY, t.py).
		Add(colRing, t.ring).
		Add(colPanel, t.panel).
		Add(colFill, t.fill).
		Add(colPoint, t.point).
		Done()
}

// warnWriter forwards go-gg warnings to the global logger.
type warnWriter struct{}

func (warnWriter) Write(p []byte) (int, error) {
	log.Warn().Str("renderer", Name).Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}
