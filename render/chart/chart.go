// Package chart renders an ECharts page: a scatter of feature centroids
// coloured by class and a bar chart of the largest fill values.
package chart

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/paulmach/orb/planar"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
)

const Name = "chart"

const (
	ConfigKeyAssetsHost = "assets_host"
	ConfigKeyTop        = "top"
	ConfigKeyLabel      = "label"

	DefaultTop = 10
)

func init() {
	render.Register(Name, New)
}

type Renderer struct {
	AssetsHost string
	// Top is the number of bars.
	Top int
	// Label names the column used for bar categories.
	Label string
}

func New(config dict.Dicter) (render.Renderer, error) {
	var (
		r   = &Renderer{Top: DefaultTop}
		err error
	)
	if r.AssetsHost, err = config.String(ConfigKeyAssetsHost, &r.AssetsHost); err != nil {
		return nil, err
	}
	if r.Top, err = config.Int(ConfigKeyTop, &r.Top); err != nil {
		return nil, err
	}
	if r.Top <= 0 {
		return nil, fmt.Errorf("chart: %v must be positive, got %d", ConfigKeyTop, r.Top)
	}
	if r.Label, err = config.String(ConfigKeyLabel, &r.Label); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *Renderer) Render(ctx context.Context, w io.Writer, layers []*render.Layer, opts render.Options) error {
	styled, err := render.ClassifyAll(layers)
	if err != nil {
		return err
	}
	width, height := opts.Size()

	page := components.NewPage()
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	if opts.Title != "" {
		page.PageTitle = opts.Title
	}
	page.AddCharts(r.scatter(styled, opts, width, height))

	main := styled[0]
	if main.Fill != "" {
		bar, err := r.bar(main, width, height)
		if err != nil {
			return err
		}
		page.AddCharts(bar)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return page.Render(w)
}

func (r *Renderer) initOpts(title string, width, height int) charts.GlobalOpts {
	init := opts.Initialization{
		PageTitle: title,
		Width:     fmt.Sprintf("%dpx", width),
		Height:    fmt.Sprintf("%dpx", height),
	}
	if r.AssetsHost != "" {
		init.AssetsHost = r.AssetsHost
	}
	return charts.WithInitializationOpts(init)
}

// scatter places one symbol per feature at its centroid. Each class of
// a choropleth is its own series so the legend toggles classes.
func (r *Renderer) scatter(styled []*render.Styled, o render.Options, width, height int) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		r.initOpts(o.Title, width, height),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y"}),
	)

	for _, s := range styled {
		series := make([][]opts.ScatterData, len(s.Labels)+1)
		for i := 0; i < s.Frame.Len(); i++ {
			g := s.Frame.Geometry(i)
			if g == nil {
				continue
			}
			c, _ := planar.CentroidArea(g)
			d := opts.ScatterData{
				Name:       s.TooltipText(i, ", "),
				Value:      []interface{}{c[0], c[1]},
				SymbolSize: int(2 * s.PointRadius()),
			}
			k := s.RowClass[i] + 1
			series[k] = append(series[k], d)
		}

		for k, data := range series {
			if len(data) == 0 {
				continue
			}
			name, col := s.Name, classify.Hex(s.Point())
			if k > 0 {
				name, col = s.Labels[k-1], classify.Hex(s.Colors[k-1])
			} else if s.Fill != "" {
				name, col = s.Name+" (no data)", classify.Hex(render.NoDataColor)
			}
			sc.AddSeries(name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: col}))
		}
	}
	return sc
}

type barItem struct {
	label string
	value float64
}

// bar charts the Top largest fill values of s.
func (r *Renderer) bar(s *render.Styled, width, height int) (*charts.Bar, error) {
	vals, ok, err := s.Frame.Floats(s.Fill)
	if err != nil {
		return nil, err
	}
	label := r.Label
	if label == "" {
		for _, c := range s.TooltipColumns() {
			if c != s.Fill {
				label = c
				break
			}
		}
	}
	if label != "" && !s.Frame.HasColumn(label) {
		return nil, fmt.Errorf("chart: unknown label column %q", label)
	}

	var bars []barItem
	for i, v := range vals {
		if !ok[i] {
			continue
		}
		b := barItem{label: fmt.Sprint(i), value: v}
		if label != "" {
			b.label = s.Frame.Record(i).String(label)
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].value > bars[j].value })
	if len(bars) > r.Top {
		bars = bars[:r.Top]
	}

	x := make([]string, len(bars))
	y := make([]opts.BarData, len(bars))
	for i, b := range bars {
		x[i] = b.label
		y[i] = opts.BarData{Value: b.value}
	}

	title := fmt.Sprintf("Top %d by %s", len(bars), s.Fill)
	chart := charts.NewBar()
	chart.SetGlobalOptions(
		r.initOpts(title, width, height),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	chart.SetXAxis(x).
		AddSeries(s.Fill, y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return chart, nil
}
