package pipeline

import (
	"context"
	"fmt"

	"github.com/atlasdatatech/geoframe/classify"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
)

const (
	ConfigKeyStyle       = "style"
	ConfigKeyClasses     = "classes"
	ConfigKeyPalette     = "palette"
	ConfigKeyClassColumn = "class_column"
	ConfigKeyColorColumn = "color_column"

	DefaultClasses     = 5
	DefaultClassColumn = "class"
	DefaultColorColumn = "color"
)

func init() {
	RegisterStep("classify", newClassify)
}

// newClassify bins a numeric column and adds the class index and its
// palette colour. Rows without a number, or outside the breaks, get nil
// in both columns.
func newClassify(config dict.Dicter) (Step, error) {
	s, err := newUnary("classify", config)
	if err != nil {
		return nil, err
	}
	col, err := config.String(ConfigKeyColumn, nil)
	if err != nil {
		return nil, err
	}
	var (
		styleName = string(classify.Pretty)
		n         = DefaultClasses
		palette   = classify.DefaultPalette
		classCol  = DefaultClassColumn
		colorCol  = DefaultColorColumn
	)
	if styleName, err = config.String(ConfigKeyStyle, &styleName); err != nil {
		return nil, err
	}
	style, err := classify.ParseStyle(styleName)
	if err != nil {
		return nil, err
	}
	if n, err = config.Int(ConfigKeyClasses, &n); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", classify.ErrClasses, n)
	}
	if palette, err = config.String(ConfigKeyPalette, &palette); err != nil {
		return nil, err
	}
	if classCol, err = config.String(ConfigKeyClassColumn, &classCol); err != nil {
		return nil, err
	}
	if colorCol, err = config.String(ConfigKeyColorColumn, &colorCol); err != nil {
		return nil, err
	}

	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		vals, ok, err := f.Floats(col)
		if err != nil {
			return nil, err
		}
		var present []float64
		for i, v := range vals {
			if ok[i] {
				present = append(present, v)
			}
		}
		breaks, err := classify.Breaks(present, n, style)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", col, err)
		}
		if len(breaks) < 2 {
			return nil, fmt.Errorf("%v: %w: got breaks %v", col, classify.ErrClasses, breaks)
		}
		colors, err := classify.Palette(palette, len(breaks)-1)
		if err != nil {
			return nil, err
		}
		class := func(r frame.Record) int {
			i := r.Index()
			if !ok[i] {
				return -1
			}
			return classify.Class(vals[i], breaks)
		}
		out := f.WithColumn(classCol, func(r frame.Record) interface{} {
			if c := class(r); c >= 0 {
				return int64(c)
			}
			return nil
		})
		return out.WithColumn(colorCol, func(r frame.Record) interface{} {
			if c := class(r); c >= 0 {
				return classify.Hex(colors[c])
			}
			return nil
		}), nil
	}
	return s, nil
}
