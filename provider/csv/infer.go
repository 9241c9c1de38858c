package csv

import (
	"strconv"
	"strings"
)

type kind int

const (
	kindEmpty kind = iota
	kindInt
	kindFloat
	kindBool
	kindString
)

// inferKind picks the narrowest type every non-empty value of column ci
// parses as.
func inferKind(rows [][]string, ci int) kind {
	k := kindEmpty
	for _, rec := range rows {
		s := field(rec, ci)
		if s == "" {
			continue
		}
		k = widen(k, kindOf(s))
		if k == kindString {
			return k
		}
	}
	return k
}

func kindOf(s string) kind {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return kindFloat
	}
	if _, err := parseBool(s); err == nil {
		return kindBool
	}
	return kindString
}

func widen(a, b kind) kind {
	switch {
	case a == kindEmpty:
		return b
	case a == b:
		return a
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	}
	return kindString
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func (k kind) parse(s string) interface{} {
	if s == "" {
		return nil
	}
	switch k {
	case kindInt:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case kindFloat:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case kindBool:
		v, _ := parseBool(s)
		return v
	}
	return s
}
