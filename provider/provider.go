// Package provider is the registry of data sources and sinks. A provider
// reads a spatial table from some storage and, optionally, writes one back.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
)

// Reader produces a frame.
type Reader interface {
	Read(ctx context.Context) (*frame.Frame, error)
}

// Writer persists a frame.
type Writer interface {
	Write(ctx context.Context, f *frame.Frame) error
}

// ReaderInit builds a reader from a source's options.
type ReaderInit func(config dict.Dicter) (Reader, error)

// WriterInit builds a writer from an output's options.
type WriterInit func(config dict.Dicter) (Writer, error)

type pfns struct {
	reader ReaderInit
	writer WriterInit
}

var providers map[string]pfns

// Register makes a provider available by name. Either init may be nil.
// Register is meant to be called from init functions.
func Register(name string, r ReaderInit, w WriterInit) error {
	if providers == nil {
		providers = make(map[string]pfns)
	}
	if _, ok := providers[name]; ok {
		return ErrProviderAlreadyRegistered{Name: name}
	}
	providers[name] = pfns{reader: r, writer: w}
	return nil
}

// Drivers lists the registered provider names.
func Drivers() (l []string) {
	for k := range providers {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

// For builds a reader of the named provider.
func For(name string, config dict.Dicter) (Reader, error) {
	p, ok := providers[name]
	if !ok {
		return nil, ErrUnknownProvider{Name: name, Known: Drivers()}
	}
	if p.reader == nil {
		return nil, ErrUnsupported{Name: name, Op: "read"}
	}
	return p.reader(config)
}

// WriterFor builds a writer of the named provider.
func WriterFor(name string, config dict.Dicter) (Writer, error) {
	p, ok := providers[name]
	if !ok {
		return nil, ErrUnknownProvider{Name: name, Known: Drivers()}
	}
	if p.writer == nil {
		return nil, ErrUnsupported{Name: name, Op: "write"}
	}
	return p.writer(config)
}

type ErrUnknownProvider struct {
	Name  string
	Known []string
}

func (e ErrUnknownProvider) Error() string {
	return fmt.Sprintf("provider: unknown provider %q (known: %v)", e.Name, e.Known)
}

type ErrProviderAlreadyRegistered struct {
	Name string
}

func (e ErrProviderAlreadyRegistered) Error() string {
	return fmt.Sprintf("provider: %q already registered", e.Name)
}

type ErrUnsupported struct {
	Name string
	Op   string
}

func (e ErrUnsupported) Error() string {
	return fmt.Sprintf("provider: %q does not support %v", e.Name, e.Op)
}
