// Package webmap writes a self-contained Leaflet page. Layers are
// reprojected to WGS 84 and embedded as GeoJSON with a fill colour and
// a tooltip per feature.
package webmap

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/paulmach/orb/geojson"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
)

const Name = "webmap"

const (
	ConfigKeyTiles       = "tiles"
	ConfigKeyAttribution = "attribution"
	ConfigKeyAssets      = "assets"
	ConfigKeyMinify      = "minify"

	DefaultTiles       = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
	DefaultAssets      = "https://unpkg.com/leaflet@1.9.4/dist"

	propFill = "_fill"
	propTip  = "_tip"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("webmap").Parse(pageTemplate))

func init() {
	render.Register(Name, New)
}

type Renderer struct {
	Tiles       string
	Attribution string
	Assets      string
	Minify      bool
}

func New(config dict.Dicter) (render.Renderer, error) {
	var (
		r = &Renderer{
			Tiles:       DefaultTiles,
			Attribution: DefaultAttribution,
			Assets:      DefaultAssets,
			Minify:      true,
		}
		err error
	)
	if r.Tiles, err = config.String(ConfigKeyTiles, &r.Tiles); err != nil {
		return nil, err
	}
	if r.Attribution, err = config.String(ConfigKeyAttribution, &r.Attribution); err != nil {
		return nil, err
	}
	if r.Assets, err = config.String(ConfigKeyAssets, &r.Assets); err != nil {
		return nil, err
	}
	if r.Minify, err = config.Bool(ConfigKeyMinify, &r.Minify); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// mapLayer is the JSON handed to the page script.
type mapLayer struct {
	Title   string                     `json:"title"`
	Stroke  string                     `json:"stroke"`
	Opacity float64                    `json:"opacity"`
	Radius  float64                    `json:"radius"`
	Legend  []legendEntry              `json:"legend,omitempty"`
	Data    *geojson.FeatureCollection `json:"data"`
}

type legendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type pageData struct {
	Title, Subtitle string
	Width, Height   int
	Tiles           string
	Attribution     string
	Assets          string
	Layers          []mapLayer
}

func (r *Renderer) Render(ctx context.Context, w io.Writer, layers []*render.Layer, opts render.Options) error {
	styled, err := render.ClassifyAll(layers)
	if err != nil {
		return err
	}
	width, height := opts.Size()
	data := pageData{
		Title:       opts.Title,
		Subtitle:    opts.Subtitle,
		Width:       width,
		Height:      height,
		Tiles:       r.Tiles,
		Attribution: r.Attribution,
		Assets:      r.Assets,
	}
	for _, s := range styled {
		if err := ctx.Err(); err != nil {
			return err
		}
		ml, err := toMapLayer(s)
		if err != nil {
			return err
		}
		data.Layers = append(data.Layers, ml)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("webmap: %w", err)
	}
	if !r.Minify {
		_, err := buf.WriteTo(w)
		return err
	}
	return minifier().Minify("text/html", w, &buf)
}

func minifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	return m
}

func toMapLayer(s *render.Styled) (mapLayer, error) {
	f, err := s.Frame.Transform(crs.WGS84)
	if err != nil {
		return mapLayer{}, fmt.Errorf("webmap: layer %q: %w", s.Name, err)
	}
	ml := mapLayer{
		Title:   s.Name,
		Stroke:  classify.Hex(s.Stroke()),
		Opacity: s.FillOpacity(),
		Radius:  s.PointRadius(),
		Data:    geojson.NewFeatureCollection(),
	}
	if s.Fill != "" {
		ml.Title = s.Fill
	}
	for _, e := range s.Legend() {
		ml.Legend = append(ml.Legend, legendEntry{Label: e.Label, Color: classify.Hex(e.Color)})
	}

	point := classify.Hex(s.Point())
	for i := 0; i < f.Len(); i++ {
		g := f.Geometry(i)
		if g == nil {
			continue
		}
		feat := geojson.NewFeature(g)
		feat.Properties[propTip] = s.TooltipHTML(i)
		switch g.Dimensions() {
		case 0:
			feat.Properties[propFill] = point
			if s.Fill != "" {
				feat.Properties[propFill] = classify.Hex(s.RowFill[i])
			}
		default:
			feat.Properties[propFill] = classify.Hex(s.RowFill[i])
		}
		ml.Data.Append(feat)
	}
	return ml, nil
}
