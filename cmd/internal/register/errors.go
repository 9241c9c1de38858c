package register

import "fmt"

type ErrProviderNotFound struct {
	Provider string
}

func (e ErrProviderNotFound) Error() string {
	return fmt.Sprintf("no provider or renderer named %q is registered", e.Provider)
}

type ErrFetchingLayerInfo struct {
	Source string
	Err    error
}

func (e ErrFetchingLayerInfo) Error() string {
	return fmt.Sprintf("error fetching layer info from source (%v): %v", e.Source, e.Err)
}

func (e ErrFetchingLayerInfo) Unwrap() error { return e.Err }

// ErrLayerInvalid is returned for a render layer that is not a table
// or carries options of the wrong type.
type ErrLayerInvalid struct {
	Output string
	Index  int
	Err    error
}

func (e ErrLayerInvalid) Error() string {
	return fmt.Sprintf("layers[%d] of output %q is invalid: %v", e.Index, e.Output, e.Err)
}

func (e ErrLayerInvalid) Unwrap() error { return e.Err }

type ErrNoLayers struct {
	Output string
}

func (e ErrNoLayers) Error() string {
	return fmt.Sprintf("output %q has no layers", e.Output)
}
