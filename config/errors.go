package config

import (
	"fmt"
	"strings"
)

type ErrUnknownFormat struct {
	Path string
}

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("config: can't tell the format of %q, use .toml, .yaml or .yml", e.Path)
}

type ErrMissingField struct {
	Section string
	Index   int
	Field   string
}

func (e ErrMissingField) Error() string {
	return fmt.Sprintf("config: %v[%d] is missing %q", e.Section, e.Index, e.Field)
}

type ErrDuplicateName struct {
	Section string
	Name    string
}

func (e ErrDuplicateName) Error() string {
	return fmt.Sprintf("config: %v name %q used more than once", e.Section, e.Name)
}

type ErrNoSources struct{}

func (ErrNoSources) Error() string { return "config: no sources defined" }

// ErrOutputKind is returned when an output has both or neither of a
// table (write a file) and layers (render).
type ErrOutputKind struct {
	Index int
}

func (e ErrOutputKind) Error() string {
	return fmt.Sprintf("config: outputs[%d] needs exactly one of \"table\" or \"layers\"", e.Index)
}

type ErrEnvVar struct {
	Names []string
}

func (e ErrEnvVar) Error() string {
	return fmt.Sprintf("config: environment variables not set: %v", strings.Join(e.Names, ", "))
}
