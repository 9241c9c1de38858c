// Package dict gives typed access to the free-form option tables that
// sources, steps and outputs carry in a pipeline file.
package dict

import (
	"fmt"
	"math"
)

// Dicter is a read-only view over a set of options.
type Dicter interface {
	Dict(key string) (Dicter, error)
	String(key string, def *string) (string, error)
	StringSlice(key string) ([]string, error)
	Bool(key string, def *bool) (bool, error)
	Int(key string, def *int) (int, error)
	Float(key string, def *float64) (float64, error)
	Interface(key string) (v interface{}, ok bool)
	Keys() []string
}

// ErrKeyRequired is returned when a key without a default is missing.
type ErrKeyRequired string

func (err ErrKeyRequired) Error() string {
	return fmt.Sprintf("required key (%v) not found", string(err))
}

// ErrKeyType is returned when the stored value can not be coerced to the
// requested type.
type ErrKeyType struct {
	Key   string
	Value interface{}
	T     string
}

func (err ErrKeyType) Error() string {
	return fmt.Sprintf("value (%v) of key (%v) is of type %T, expected %v", err.Value, err.Key, err.Value, err.T)
}

// Dict is the map form produced by the TOML and YAML decoders.
type Dict map[string]interface{}

var _ Dicter = Dict{}

func (d Dict) Keys() []string {
	ks := make([]string, 0, len(d))
	for k := range d {
		ks = append(ks, k)
	}
	return ks
}

func (d Dict) Interface(key string) (v interface{}, ok bool) {
	v, ok = d[key]
	return v, ok
}

func (d Dict) Dict(key string) (Dicter, error) {
	v, ok := d[key]
	if !ok {
		return nil, ErrKeyRequired(key)
	}
	switch val := v.(type) {
	case Dict:
		return val, nil
	case map[string]interface{}:
		return Dict(val), nil
	case map[interface{}]interface{}:
		out := make(Dict, len(val))
		for k, v := range val {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	default:
		return nil, ErrKeyType{Key: key, Value: v, T: "map"}
	}
}

func (d Dict) String(key string, def *string) (string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return "", ErrKeyRequired(key)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case *string:
		return *val, nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", ErrKeyType{Key: key, Value: v, T: "string"}
	}
}

func (d Dict) StringSlice(key string) ([]string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		// empty slices are okay
		return nil, nil
	}
	switch val := v.(type) {
	case []string:
		return val, nil
	case string:
		return []string{val}, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, ErrKeyType{Key: key, Value: e, T: "string"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrKeyType{Key: key, Value: v, T: "[]string"}
	}
}

func (d Dict) Bool(key string, def *bool) (bool, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return false, ErrKeyRequired(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, ErrKeyType{Key: key, Value: v, T: "bool"}
	}
	return b, nil
}

func (d Dict) Int(key string, def *int) (int, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return 0, ErrKeyRequired(key)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case int32:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, ErrKeyType{Key: key, Value: v, T: "int"}
		}
		return int(val), nil
	default:
		return 0, ErrKeyType{Key: key, Value: v, T: "int"}
	}
}

func (d Dict) Float(key string, def *float64) (float64, error) {
	v, ok := d[key]
	if !ok || v == nil {
		if def != nil {
			return *def, nil
		}
		return 0, ErrKeyRequired(key)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, ErrKeyType{Key: key, Value: v, T: "float"}
	}
}
