package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
)

const (
	ConfigKeyType   = "type"
	ConfigKeyInput  = "in"
	ConfigKeyOutput = "out"
	ConfigKeyWith   = "with"
)

// Step reads tables from an Env and stores its result back into it.
type Step interface {
	Apply(ctx context.Context, env *Env) error
	// Output is the name of the table the step writes.
	Output() string
	String() string
}

// StepInit builds a step from its configuration block.
type StepInit func(config dict.Dicter) (Step, error)

var steps = map[string]StepInit{}

// RegisterStep adds a step type.
func RegisterStep(kind string, init StepInit) error {
	if _, ok := steps[kind]; ok {
		return fmt.Errorf("pipeline: step %q already registered", kind)
	}
	steps[kind] = init
	return nil
}

// StepKinds lists the registered step types.
func StepKinds() (l []string) {
	for k := range steps {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

type ErrUnknownStep struct {
	Kind string
}

func (e ErrUnknownStep) Error() string {
	return fmt.Sprintf("pipeline: unknown step type %q, known types %v", e.Kind, StepKinds())
}

// NewStep builds the step named by the type key of config.
func NewStep(config dict.Dicter) (Step, error) {
	kind, err := config.String(ConfigKeyType, nil)
	if err != nil {
		return nil, err
	}
	init, ok := steps[kind]
	if !ok {
		return nil, ErrUnknownStep{Kind: kind}
	}
	s, err := init(config)
	if err != nil {
		return nil, fmt.Errorf("step %v: %w", kind, err)
	}
	return s, nil
}

// unary is the shape shared by steps that map one table to another.
type unary struct {
	kind string
	in   string
	out  string
	fn   func(ctx context.Context, f *frame.Frame) (*frame.Frame, error)
}

func newUnary(kind string, config dict.Dicter) (*unary, error) {
	in, err := config.String(ConfigKeyInput, nil)
	if err != nil {
		return nil, err
	}
	out, err := config.String(ConfigKeyOutput, &in)
	if err != nil {
		return nil, err
	}
	return &unary{kind: kind, in: in, out: out}, nil
}

func (s *unary) Output() string { return s.out }

func (s *unary) String() string { return fmt.Sprintf("%v(%v) -> %v", s.kind, s.in, s.out) }

func (s *unary) Apply(ctx context.Context, env *Env) error {
	f, err := env.Get(s.in)
	if err != nil {
		return err
	}
	res, err := s.fn(ctx, f)
	if err != nil {
		return err
	}
	env.Set(s.out, res)
	return nil
}

// binary steps combine the in table with the with table.
type binary struct {
	kind string
	in   string
	with string
	out  string
	fn   func(ctx context.Context, a, b *frame.Frame) (*frame.Frame, error)
}

func newBinary(kind string, config dict.Dicter) (*binary, error) {
	in, err := config.String(ConfigKeyInput, nil)
	if err != nil {
		return nil, err
	}
	with, err := config.String(ConfigKeyWith, nil)
	if err != nil {
		return nil, err
	}
	out, err := config.String(ConfigKeyOutput, &in)
	if err != nil {
		return nil, err
	}
	return &binary{kind: kind, in: in, with: with, out: out}, nil
}

func (s *binary) Output() string { return s.out }

func (s *binary) String() string {
	return fmt.Sprintf("%v(%v, %v) -> %v", s.kind, s.in, s.with, s.out)
}

func (s *binary) Apply(ctx context.Context, env *Env) error {
	a, err := env.Get(s.in)
	if err != nil {
		return err
	}
	b, err := env.Get(s.with)
	if err != nil {
		return err
	}
	res, err := s.fn(ctx, a, b)
	if err != nil {
		return err
	}
	env.Set(s.out, res)
	return nil
}
