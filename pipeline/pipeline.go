// Package pipeline runs a declarative workflow over named tables: read
// every source, apply every step in order, then write every output.
// Each step produces a new table; no step changes a table in place.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/provider"
)

// ErrEmptyResult is returned when a step yields no rows and empty
// results are not allowed.
var ErrEmptyResult = errors.New("pipeline: step produced an empty table")

// Source reads one named table.
type Source struct {
	Name   string
	Reader provider.Reader
}

// Output consumes tables once every step has run.
type Output interface {
	Write(ctx context.Context, env *Env) error
	String() string
}

type Pipeline struct {
	Sources []Source
	Steps   []Step
	Outputs []Output
	// AllowEmpty lets steps produce empty tables.
	AllowEmpty bool
}

// Run executes the pipeline and returns the final tables. The first
// failure stops the run; its error names the stage.
func (p *Pipeline) Run(ctx context.Context) (*Env, error) {
	env := NewEnv()
	start := time.Now()

	for _, src := range p.Sources {
		if err := ctx.Err(); err != nil {
			return env, err
		}
		f, err := src.Reader.Read(ctx)
		if err != nil {
			return env, fmt.Errorf("source %q: %w", src.Name, err)
		}
		env.Set(src.Name, f)
		log.Info().Str("source", src.Name).Int("rows", f.Len()).Stringer("srid", f.SRID()).Msg("read")
	}

	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			return env, err
		}
		if err := s.Apply(ctx, env); err != nil {
			return env, fmt.Errorf("step %d %v: %w", i+1, s, err)
		}
		f, err := env.Get(s.Output())
		if err != nil {
			return env, fmt.Errorf("step %d %v: %w", i+1, s, err)
		}
		log.Info().Str("step", s.String()).Int("rows", f.Len()).Msg("applied")
		if f.Len() == 0 && !p.AllowEmpty {
			return env, fmt.Errorf("step %d %v: %w", i+1, s, ErrEmptyResult)
		}
	}

	for _, o := range p.Outputs {
		if err := ctx.Err(); err != nil {
			return env, err
		}
		if err := o.Write(ctx, env); err != nil {
			return env, fmt.Errorf("output %v: %w", o, err)
		}
	}
	log.Info().Int("sources", len(p.Sources)).Int("steps", len(p.Steps)).Int("outputs", len(p.Outputs)).
		Dur("took", time.Since(start)).Msg("pipeline done")
	return env, nil
}
