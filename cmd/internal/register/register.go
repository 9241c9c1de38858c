// Package register turns a parsed pipeline file into a runnable
// pipeline: sources become provider readers, steps are built from the
// step registry and outputs become provider writers or renderers.
package register

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/config"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/pipeline"
	"github.com/atlasdatatech/geoframe/provider"
	"github.com/atlasdatatech/geoframe/publish"
)

// pathKeys are the option keys naming local files. Relative values are
// resolved against the pipeline file's directory.
var pathKeys = []string{"path", "filepath"}

func resolvePaths(d dict.Dict, base string) dict.Dict {
	out := make(dict.Dict, len(d))
	for k, v := range d {
		out[k] = v
	}
	if base == "" {
		return out
	}
	for _, k := range pathKeys {
		p, ok := out[k].(string)
		if !ok || p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
			continue
		}
		out[k] = filepath.Join(base, p)
	}
	return out
}

// Sources builds one reader per source block. Readers that report
// layers are asked for them up front so a bad source fails before the
// run starts.
func Sources(ctx context.Context, sources []dict.Dict, base string) ([]pipeline.Source, error) {
	out := make([]pipeline.Source, 0, len(sources))
	for _, src := range sources {
		name, err := src.String(config.KeyName, nil)
		if err != nil {
			return nil, err
		}
		typ, err := src.String(config.KeyType, nil)
		if err != nil {
			return nil, err
		}
		r, err := provider.For(typ, resolvePaths(src, base))
		if err != nil {
			return nil, err
		}
		if l, ok := r.(provider.Layerer); ok {
			infos, err := l.Layers(ctx)
			if err != nil {
				return nil, ErrFetchingLayerInfo{Source: name, Err: err}
			}
			for _, info := range infos {
				log.Debug().Str("source", name).Str("layer", info.Name()).
					Str("geom_type", provider.GeomTypeName(info.GeomType())).
					Stringer("srid", info.SRID()).Msg("layer")
			}
		}
		out = append(out, pipeline.Source{Name: name, Reader: r})
	}
	return out, nil
}

// Steps builds the steps in file order.
func Steps(steps []dict.Dict) ([]pipeline.Step, error) {
	out := make([]pipeline.Step, 0, len(steps))
	for _, s := range steps {
		step, err := pipeline.NewStep(s)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

// Publisher is the publisher named in settings, or a directory
// publisher over the output directory.
func Publisher(settings config.Settings) (publish.Publisher, error) {
	if len(settings.Publish) > 0 {
		return publish.For(settings.Publish)
	}
	return &publish.Dir{Path: settings.OutputDir}, nil
}

// Pipeline wires a whole pipeline file.
func Pipeline(ctx context.Context, conf *config.Config) (*pipeline.Pipeline, error) {
	base := ""
	if conf.LocationName != "" {
		base = filepath.Dir(conf.LocationName)
	}
	sources, err := Sources(ctx, conf.Sources, base)
	if err != nil {
		return nil, err
	}
	steps, err := Steps(conf.Steps)
	if err != nil {
		return nil, err
	}
	pub, err := Publisher(conf.Settings)
	if err != nil {
		return nil, err
	}
	outputs, err := Outputs(conf.Outputs, base, pub)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Sources:    sources,
		Steps:      steps,
		Outputs:    outputs,
		AllowEmpty: conf.Settings.AllowEmpty,
	}, nil
}
