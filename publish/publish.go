// Package publish stores rendered artifacts. A run hands every artifact
// to one Publisher, which writes it to a directory or uploads it.
package publish

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/atlasdatatech/geoframe/dict"
)

const ConfigKeyType = "type"

// Publisher stores the content read from r under name and returns where
// it ended up.
type Publisher interface {
	Publish(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

// InitFunc builds a publisher from its settings block.
type InitFunc func(config dict.Dicter) (Publisher, error)

var publishers = map[string]InitFunc{}

// Register adds a publisher type. It is meant to be called from init
// functions.
func Register(name string, init InitFunc) error {
	if _, ok := publishers[name]; ok {
		return ErrAlreadyRegistered{Name: name}
	}
	publishers[name] = init
	return nil
}

// Types lists the registered publisher types.
func Types() (l []string) {
	for k := range publishers {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

// For builds the publisher named by the type key of config.
func For(config dict.Dicter) (Publisher, error) {
	typ, err := config.String(ConfigKeyType, nil)
	if err != nil {
		return nil, err
	}
	init, ok := publishers[typ]
	if !ok {
		return nil, ErrUnknownType{Name: typ, Known: Types()}
	}
	return init(config)
}

type ErrUnknownType struct {
	Name  string
	Known []string
}

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("publish: unknown type %q, known types %v", e.Name, e.Known)
}

type ErrAlreadyRegistered struct {
	Name string
}

func (e ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("publish: type %q already registered", e.Name)
}
