package pipeline

import (
	"errors"
	"fmt"

	"github.com/atlasdatatech/geoframe/frame"
)

var ErrUnknownTable = errors.New("pipeline: unknown table")

// Env holds the named tables of a run.
type Env struct {
	tables map[string]*frame.Frame
	order  []string
}

func NewEnv() *Env {
	return &Env{tables: make(map[string]*frame.Frame)}
}

// Get returns the table called name.
func (e *Env) Get(name string) (*frame.Frame, error) {
	f, ok := e.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return f, nil
}

// Set stores f as name, replacing any table of that name.
func (e *Env) Set(name string, f *frame.Frame) {
	if _, ok := e.tables[name]; !ok {
		e.order = append(e.order, name)
	}
	e.tables[name] = f
}

// Names lists tables in the order they were first set.
func (e *Env) Names() []string {
	return append([]string(nil), e.order...)
}
