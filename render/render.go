// Package render holds the layer and legend model shared by the map and
// chart backends, and the registry those backends add themselves to.
// Backends never modify the frames they draw.
package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"image/color"
	"io"
	"sort"
	"strings"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
)

var ErrNoLayers = errors.New("render: nothing to draw")

// Options are the settings every backend understands.
type Options struct {
	Title    string
	Subtitle string
	// Width and Height are in pixels.
	Width  int
	Height int
	// Panels lists fill columns to draw side by side, one panel each, for
	// the first layer. Backends without panels ignore it.
	Panels []string
}

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

func (o Options) Size() (w, h int) {
	w, h = o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Renderer draws layers into w.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, layers []*Layer, opts Options) error
	// ContentType is the MIME type of the output.
	ContentType() string
}

// InitFunc builds a renderer from an output's options.
type InitFunc func(config dict.Dicter) (Renderer, error)

var renderers map[string]InitFunc

// Register adds a backend. It is meant to be called from init functions.
func Register(name string, init InitFunc) error {
	if renderers == nil {
		renderers = make(map[string]InitFunc)
	}
	if _, ok := renderers[name]; ok {
		return fmt.Errorf("render: %q already registered", name)
	}
	renderers[name] = init
	return nil
}

// For builds the named renderer.
func For(name string, config dict.Dicter) (Renderer, error) {
	init, ok := renderers[name]
	if !ok {
		return nil, ErrUnknownRenderer{Name: name}
	}
	return init(config)
}

// Has reports whether name is a registered renderer.
func Has(name string) bool {
	_, ok := renderers[name]
	return ok
}

// Backends lists the registered renderer names.
func Backends() (l []string) {
	for k := range renderers {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

type ErrUnknownRenderer struct {
	Name string
}

func (e ErrUnknownRenderer) Error() string {
	return fmt.Sprintf("render: unknown renderer %q", e.Name)
}

// Layer is one frame and how to draw it.
type Layer struct {
	Name  string
	Frame *frame.Frame

	// Fill is the numeric column driving a choropleth. Without it areas
	// are drawn with FillColor.
	Fill    string
	Style   classify.Style
	Classes int
	Palette string
	// Breaks, when set, are used instead of computing them.
	Breaks []float64

	FillColor   color.Color
	StrokeColor color.Color
	PointColor  color.Color
	PointSize   float64
	Opacity     float64

	// Tooltip columns shown on hover by interactive backends. Empty means
	// every column.
	Tooltip []string
}

var (
	DefaultFillColor   = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	DefaultStrokeColor = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	DefaultPointColor  = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
	NoDataColor        = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

const (
	DefaultClasses   = 5
	DefaultPointSize = 3
	DefaultOpacity   = 0.8
)

// WithFill returns a copy of l coloured by col.
func (l *Layer) WithFill(col string) *Layer {
	c := *l
	c.Fill = col
	c.Breaks = nil
	return &c
}

func (l *Layer) title() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Fill
}

// Styled is a layer with colours resolved for every row.
type Styled struct {
	*Layer
	Breaks []float64
	Labels []string
	// Colors holds one colour per class.
	Colors []color.Color
	// RowClass and RowFill are per row. RowClass is -1 for rows without a
	// numeric fill value.
	RowClass []int
	RowFill  []color.Color
}

// LegendEntry is one swatch of a legend.
type LegendEntry struct {
	Label string
	Color color.Color
}

// Legend lists the classes of a choropleth. Layers without a fill column
// have no legend.
func (s *Styled) Legend() []LegendEntry {
	out := make([]LegendEntry, len(s.Labels))
	for i, l := range s.Labels {
		out[i] = LegendEntry{Label: l, Color: s.Colors[i]}
	}
	return out
}

// Stroke, Point and PointRadius return the configured colours or defaults.
func (l *Layer) Stroke() color.Color {
	if l.StrokeColor != nil {
		return l.StrokeColor
	}
	return DefaultStrokeColor
}

func (l *Layer) Point() color.Color {
	if l.PointColor != nil {
		return l.PointColor
	}
	return DefaultPointColor
}

func (l *Layer) PointRadius() float64 {
	if l.PointSize > 0 {
		return l.PointSize
	}
	return DefaultPointSize
}

func (l *Layer) FillOpacity() float64 {
	if l.Opacity > 0 && l.Opacity <= 1 {
		return l.Opacity
	}
	return DefaultOpacity
}

// Classify resolves breaks and colours for l.
func (l *Layer) Classify() (*Styled, error) {
	if l.Frame == nil {
		return nil, fmt.Errorf("render: layer %q has no frame", l.Name)
	}
	for _, c := range l.Tooltip {
		if !l.Frame.HasColumn(c) {
			return nil, fmt.Errorf("render: layer %q tooltip: %w: %q", l.title(), frame.ErrUnknownColumn, c)
		}
	}
	s := &Styled{
		Layer:    l,
		RowClass: make([]int, l.Frame.Len()),
		RowFill:  make([]color.Color, l.Frame.Len()),
	}
	base := l.FillColor
	if base == nil {
		base = DefaultFillColor
	}
	if l.Fill == "" {
		for i := range s.RowFill {
			s.RowClass[i] = -1
			s.RowFill[i] = base
		}
		return s, nil
	}

	vals, ok, err := l.Frame.Floats(l.Fill)
	if err != nil {
		return nil, fmt.Errorf("render: layer %q: %w", l.title(), err)
	}
	breaks := l.Breaks
	if len(breaks) == 0 {
		var present []float64
		for i, v := range vals {
			if ok[i] {
				present = append(present, v)
			}
		}
		n := l.Classes
		if n <= 0 {
			n = DefaultClasses
		}
		if breaks, err = classify.Breaks(present, n, l.Style); err != nil {
			return nil, fmt.Errorf("render: layer %q: %w", l.title(), err)
		}
	}
	s.Breaks = breaks
	s.Labels = classify.Labels(breaks)
	if s.Colors, err = classify.Palette(l.Palette, len(s.Labels)); err != nil {
		return nil, fmt.Errorf("render: layer %q: %w", l.title(), err)
	}
	for i, v := range vals {
		s.RowClass[i] = -1
		s.RowFill[i] = NoDataColor
		if !ok[i] {
			continue
		}
		if c := classify.Class(v, breaks); c >= 0 {
			s.RowClass[i] = c
			s.RowFill[i] = s.Colors[c]
		}
	}
	return s, nil
}

// ClassifyAll styles every layer, failing on the first error.
func ClassifyAll(layers []*Layer) ([]*Styled, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if err := SameCRS(layers); err != nil {
		return nil, err
	}
	out := make([]*Styled, len(layers))
	for i, l := range layers {
		s, err := l.Classify()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// SameCRS fails with crs.ErrMismatch unless every layer's frame has the
// CRS of the first one. Layers are drawn in one coordinate space.
func SameCRS(layers []*Layer) error {
	var (
		srid  crs.SRID
		first = -1
	)
	for i, l := range layers {
		if l.Frame == nil {
			continue
		}
		if first < 0 {
			srid, first = l.Frame.SRID(), i
			continue
		}
		if l.Frame.SRID() != srid {
			return fmt.Errorf("render: layers %q and %q: %w: %v and %v",
				layers[first].title(), l.title(), crs.ErrMismatch, srid, l.Frame.SRID())
		}
	}
	return nil
}

// TooltipColumns are the columns shown on hover.
func (l *Layer) TooltipColumns() []string {
	if len(l.Tooltip) > 0 {
		return l.Tooltip
	}
	return l.Frame.Columns()
}

// TooltipText is the "column: value" text of row i, one pair per line.
func (l *Layer) TooltipText(i int, sep string) string {
	r := l.Frame.Record(i)
	out := ""
	for n, c := range l.TooltipColumns() {
		if n > 0 {
			out += sep
		}
		out += c + ": " + r.String(c)
	}
	return out
}

// TooltipHTML is the tooltip of row i as HTML: names and values escaped,
// one pair per line.
func (l *Layer) TooltipHTML(i int) string {
	r := l.Frame.Record(i)
	cols := l.TooltipColumns()
	lines := make([]string, len(cols))
	for n, c := range cols {
		lines[n] = html.EscapeString(c) + ": " + html.EscapeString(r.String(c))
	}
	return strings.Join(lines, "<br>")
}
