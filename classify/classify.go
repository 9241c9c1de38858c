// Package classify bins numeric values into a small number of classes for
// choropleth colouring.
package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoValues = errors.New("classify: no values to classify")
	ErrClasses  = errors.New("classify: number of classes must be positive")
)

type Style string

const (
	Pretty   Style = "pretty"
	Equal    Style = "equal"
	Quantile Style = "quantile"
)

// ParseStyle maps a style name to a Style. The empty string is Pretty.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", Pretty:
		return Pretty, nil
	case Equal, Quantile:
		return Style(s), nil
	}
	return "", fmt.Errorf("classify: unknown style %q", s)
}

// Breaks computes ascending, de-duplicated class boundaries for values.
// n is the desired number of classes; Pretty may return a few more or
// fewer so that boundaries land on round numbers. NaNs are ignored.
func Breaks(values []float64, n int, style Style) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrClasses, n)
	}
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, ErrNoValues
	}
	sort.Float64s(vals)
	lo, hi := vals[0], vals[len(vals)-1]

	var breaks []float64
	switch style {
	case "", Pretty:
		breaks = PrettyBreaks(lo, hi, n)
	case Equal:
		if lo == hi {
			return []float64{lo, hi}, nil
		}
		step := (hi - lo) / float64(n)
		for i := 0; i < n; i++ {
			breaks = append(breaks, lo+float64(i)*step)
		}
		breaks = append(breaks, hi)
	case Quantile:
		for i := 0; i <= n; i++ {
			breaks = append(breaks, stat.Quantile(float64(i)/float64(n), stat.Empirical, vals, nil))
		}
		breaks[0], breaks[n] = lo, hi
	default:
		return nil, fmt.Errorf("classify: unknown style %q", style)
	}
	return dedupe(breaks), nil
}

func dedupe(b []float64) []float64 {
	out := b[:0:0]
	for i, v := range b {
		if i > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

// Class returns the index of the bin [b[i], b[i+1]) holding v. The last
// bin is closed on both ends. Values outside the breaks give -1.
func Class(v float64, breaks []float64) int {
	n := len(breaks)
	if n < 2 || math.IsNaN(v) || v < breaks[0] || v > breaks[n-1] {
		return -1
	}
	// first break strictly greater than v
	i := sort.Search(n, func(i int) bool { return breaks[i] > v })
	if i == n {
		return n - 2
	}
	return i - 1
}

// Labels returns a display label per bin.
func Labels(breaks []float64) []string {
	if len(breaks) < 2 {
		return nil
	}
	out := make([]string, len(breaks)-1)
	for i := range out {
		out[i] = format(breaks[i]) + " – " + format(breaks[i+1])
	}
	return out
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
