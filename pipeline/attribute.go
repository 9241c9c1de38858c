package pipeline

import (
	"context"
	"fmt"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
)

const (
	ConfigKeyColumns = "columns"
	ConfigKeyColumn  = "column"
	ConfigKeyOp      = "op"
	ConfigKeyValue   = "value"
	ConfigKeyDesc    = "desc"
	ConfigKeyN       = "n"
	ConfigKeyAs      = "as"

	DefaultCountColumn = "n"
)

func init() {
	RegisterStep("select", newSelect)
	RegisterStep("drop", newDrop)
	RegisterStep("rename", newRename)
	RegisterStep("filter", newFilter)
	RegisterStep("sort", newSort)
	RegisterStep("head", newHead)
	RegisterStep("count", newCount)
}

func requiredColumns(config dict.Dicter) ([]string, error) {
	cols, err := config.StringSlice(ConfigKeyColumns)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, dict.ErrKeyRequired(ConfigKeyColumns)
	}
	return cols, nil
}

func newSelect(config dict.Dicter) (Step, error) {
	s, err := newUnary("select", config)
	if err != nil {
		return nil, err
	}
	cols, err := requiredColumns(config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Select(cols...)
	}
	return s, nil
}

func newDrop(config dict.Dicter) (Step, error) {
	s, err := newUnary("drop", config)
	if err != nil {
		return nil, err
	}
	cols, err := requiredColumns(config)
	if err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Drop(cols...)
	}
	return s, nil
}

// newRename takes a columns table mapping old names to new ones.
func newRename(config dict.Dicter) (Step, error) {
	s, err := newUnary("rename", config)
	if err != nil {
		return nil, err
	}
	cols, err := config.Dict(ConfigKeyColumns)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, k := range cols.Keys() {
		if names[k], err = cols.String(k, nil); err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		return nil, dict.ErrKeyRequired(ConfigKeyColumns)
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Rename(names)
	}
	return s, nil
}

func newFilter(config dict.Dicter) (Step, error) {
	s, err := newUnary("filter", config)
	if err != nil {
		return nil, err
	}
	col, err := config.String(ConfigKeyColumn, nil)
	if err != nil {
		return nil, err
	}
	op := "=="
	if op, err = config.String(ConfigKeyOp, &op); err != nil {
		return nil, err
	}
	value, ok := config.Interface(ConfigKeyValue)
	if !ok {
		return nil, dict.ErrKeyRequired(ConfigKeyValue)
	}
	if _, isList := value.([]interface{}); !isList {
		value = frame.Normalize(value)
	}
	// check the operator up front
	probe, err := frame.NewBuilder(crs.Unknown, col).Frame()
	if err != nil {
		return nil, err
	}
	if _, err := probe.Where(col, op, value); err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Where(col, op, value)
	}
	return s, nil
}

func newSort(config dict.Dicter) (Step, error) {
	s, err := newUnary("sort", config)
	if err != nil {
		return nil, err
	}
	col, err := config.String(ConfigKeyColumn, nil)
	if err != nil {
		return nil, err
	}
	desc := false
	if desc, err = config.Bool(ConfigKeyDesc, &desc); err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.SortBy(col, desc)
	}
	return s, nil
}

func newHead(config dict.Dicter) (Step, error) {
	s, err := newUnary("head", config)
	if err != nil {
		return nil, err
	}
	n, err := config.Int(ConfigKeyN, nil)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%v must not be negative, got %d", ConfigKeyN, n)
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Head(n), nil
	}
	return s, nil
}

// newCount groups by column and counts members into as.
func newCount(config dict.Dicter) (Step, error) {
	s, err := newUnary("count", config)
	if err != nil {
		return nil, err
	}
	col, err := config.String(ConfigKeyColumn, nil)
	if err != nil {
		return nil, err
	}
	as := DefaultCountColumn
	if as, err = config.String(ConfigKeyAs, &as); err != nil {
		return nil, err
	}
	s.fn = func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.GroupCount(col, as)
	}
	return s, nil
}
