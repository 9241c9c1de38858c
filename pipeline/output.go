package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/provider"
	"github.com/atlasdatatech/geoframe/publish"
	"github.com/atlasdatatech/geoframe/render"
)

// FrameOutput writes one table with a provider writer.
type FrameOutput struct {
	Table  string
	Driver string
	Writer provider.Writer
}

func (o *FrameOutput) String() string { return fmt.Sprintf("%v(%v)", o.Driver, o.Table) }

func (o *FrameOutput) Write(ctx context.Context, env *Env) error {
	f, err := env.Get(o.Table)
	if err != nil {
		return err
	}
	if err := o.Writer.Write(ctx, f); err != nil {
		return err
	}
	log.Info().Str("table", o.Table).Str("driver", o.Driver).Int("rows", f.Len()).Msg("wrote")
	return nil
}

// LayerSpec is a render layer whose frame is looked up by table name at
// write time.
type LayerSpec struct {
	Table string
	Layer render.Layer
}

// RenderOutput draws layers with a renderer and publishes the result as
// Name.
type RenderOutput struct {
	Name      string
	Backend   string
	Layers    []LayerSpec
	Renderer  render.Renderer
	Options   render.Options
	Publisher publish.Publisher
}

func (o *RenderOutput) String() string { return fmt.Sprintf("%v(%v)", o.Backend, o.Name) }

func (o *RenderOutput) Write(ctx context.Context, env *Env) error {
	layers := make([]*render.Layer, len(o.Layers))
	for i, ls := range o.Layers {
		f, err := env.Get(ls.Table)
		if err != nil {
			return err
		}
		l := ls.Layer
		l.Frame = f
		if l.Name == "" {
			l.Name = ls.Table
		}
		layers[i] = &l
	}

	var buf bytes.Buffer
	if err := o.Renderer.Render(ctx, &buf, layers, o.Options); err != nil {
		return err
	}
	size := buf.Len()
	loc, err := o.Publisher.Publish(ctx, o.Name, &buf, o.Renderer.ContentType())
	if err != nil {
		return err
	}
	log.Info().Str("backend", o.Backend).Str("location", loc).Int("bytes", size).Msg("rendered")
	return nil
}
