package register

import (
	"fmt"
	"image/color"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/config"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/pipeline"
	"github.com/atlasdatatech/geoframe/provider"
	"github.com/atlasdatatech/geoframe/publish"
	"github.com/atlasdatatech/geoframe/render"
)

// output and layer keys
const (
	KeyTitle    = "title"
	KeySubtitle = "subtitle"
	KeyWidth    = "width"
	KeyHeight   = "height"
	KeyPanels   = "panels"

	KeyFill        = "fill"
	KeyStyle       = "style"
	KeyClasses     = "classes"
	KeyPalette     = "palette"
	KeyBreaks      = "breaks"
	KeyFillColor   = "fill_color"
	KeyStrokeColor = "stroke_color"
	KeyPointColor  = "point_color"
	KeyPointSize   = "point_size"
	KeyOpacity     = "opacity"
	KeyTooltip     = "tooltip"
)

// Outputs builds one output per block. Blocks with layers are drawn by
// the renderer named by their type; blocks with a table are written by
// the provider of that name.
func Outputs(outputs []dict.Dict, base string, pub publish.Publisher) ([]pipeline.Output, error) {
	out := make([]pipeline.Output, 0, len(outputs))
	for _, o := range outputs {
		typ, err := o.String(config.KeyType, nil)
		if err != nil {
			return nil, err
		}
		if _, ok := o[config.KeyLayers]; ok {
			ro, err := renderOutput(typ, o, pub)
			if err != nil {
				return nil, err
			}
			out = append(out, ro)
			continue
		}

		table, err := o.String(config.KeyTable, nil)
		if err != nil {
			return nil, err
		}
		w, err := provider.WriterFor(typ, resolvePaths(o, base))
		if err != nil {
			return nil, err
		}
		out = append(out, &pipeline.FrameOutput{Table: table, Driver: typ, Writer: w})
	}
	return out, nil
}

func renderOutput(typ string, o dict.Dict, pub publish.Publisher) (*pipeline.RenderOutput, error) {
	if !render.Has(typ) {
		return nil, ErrProviderNotFound{Provider: typ}
	}
	name, err := o.String(config.KeyName, nil)
	if err != nil {
		return nil, err
	}
	r, err := render.For(typ, o)
	if err != nil {
		return nil, fmt.Errorf("output %q: %w", name, err)
	}

	var (
		opts  render.Options
		empty string
		zero  int
	)
	if opts.Title, err = o.String(KeyTitle, &empty); err != nil {
		return nil, err
	}
	if opts.Subtitle, err = o.String(KeySubtitle, &empty); err != nil {
		return nil, err
	}
	if opts.Width, err = o.Int(KeyWidth, &zero); err != nil {
		return nil, err
	}
	if opts.Height, err = o.Int(KeyHeight, &zero); err != nil {
		return nil, err
	}
	if opts.Panels, err = o.StringSlice(KeyPanels); err != nil {
		return nil, err
	}

	blocks, err := layerBlocks(o[config.KeyLayers])
	if err != nil {
		return nil, ErrLayerInvalid{Output: name, Index: -1, Err: err}
	}
	if len(blocks) == 0 {
		return nil, ErrNoLayers{Output: name}
	}
	ro := &pipeline.RenderOutput{
		Name:      name,
		Backend:   typ,
		Renderer:  r,
		Options:   opts,
		Publisher: pub,
	}
	for i, b := range blocks {
		ls, err := layerFromConfig(b)
		if err != nil {
			return nil, ErrLayerInvalid{Output: name, Index: i, Err: err}
		}
		ro.Layers = append(ro.Layers, ls)
	}
	return ro, nil
}

// layerBlocks accepts the list shapes the TOML and YAML decoders
// produce.
func layerBlocks(v interface{}) ([]dict.Dict, error) {
	switch val := v.(type) {
	case []map[string]interface{}:
		out := make([]dict.Dict, len(val))
		for i, m := range val {
			out[i] = dict.Dict(m)
		}
		return out, nil
	case []interface{}:
		out := make([]dict.Dict, len(val))
		for i, e := range val {
			switch m := e.(type) {
			case map[string]interface{}:
				out[i] = dict.Dict(m)
			case dict.Dict:
				out[i] = m
			default:
				return nil, dict.ErrKeyType{Key: config.KeyLayers, Value: e, T: "table"}
			}
		}
		return out, nil
	case []dict.Dict:
		return val, nil
	}
	return nil, dict.ErrKeyType{Key: config.KeyLayers, Value: v, T: "list of tables"}
}

func layerFromConfig(cfg dict.Dict) (ls pipeline.LayerSpec, err error) {
	var (
		empty string
		zero  int
		fzero float64
		l     = &ls.Layer
	)
	if ls.Table, err = cfg.String(config.KeyTable, nil); err != nil {
		return ls, err
	}
	if l.Name, err = cfg.String(config.KeyName, &empty); err != nil {
		return ls, err
	}
	if l.Fill, err = cfg.String(KeyFill, &empty); err != nil {
		return ls, err
	}
	style, err := cfg.String(KeyStyle, &empty)
	if err != nil {
		return ls, err
	}
	if l.Style, err = classify.ParseStyle(style); err != nil {
		return ls, err
	}
	if l.Classes, err = cfg.Int(KeyClasses, &zero); err != nil {
		return ls, err
	}
	if l.Palette, err = cfg.String(KeyPalette, &empty); err != nil {
		return ls, err
	}
	if l.Breaks, err = floats(cfg, KeyBreaks); err != nil {
		return ls, err
	}
	if l.FillColor, err = colorOption(cfg, KeyFillColor); err != nil {
		return ls, err
	}
	if l.StrokeColor, err = colorOption(cfg, KeyStrokeColor); err != nil {
		return ls, err
	}
	if l.PointColor, err = colorOption(cfg, KeyPointColor); err != nil {
		return ls, err
	}
	if l.PointSize, err = cfg.Float(KeyPointSize, &fzero); err != nil {
		return ls, err
	}
	if l.Opacity, err = cfg.Float(KeyOpacity, &fzero); err != nil {
		return ls, err
	}
	if l.Tooltip, err = cfg.StringSlice(KeyTooltip); err != nil {
		return ls, err
	}
	return ls, nil
}

// colorOption returns nil when key is not set so the renderer default
// applies.
func colorOption(cfg dict.Dict, key string) (color.Color, error) {
	var empty string
	s, err := cfg.String(key, &empty)
	if err != nil || s == "" {
		return nil, err
	}
	c, err := classify.ParseColor(s)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", key, err)
	}
	return c, nil
}

func floats(cfg dict.Dict, key string) ([]float64, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		if fs, isFloats := v.([]float64); isFloats {
			return fs, nil
		}
		return nil, dict.ErrKeyType{Key: key, Value: v, T: "[]float"}
	}
	out := make([]float64, len(list))
	for i, e := range list {
		d := dict.Dict{key: e}
		f, err := d.Float(key, nil)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
