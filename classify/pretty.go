package classify

import "math"

const (
	prettyBias       = 1.5
	prettyBias5      = .5 + 1.5*prettyBias
	prettyShrink     = 0.75
	prettyRoundEps   = 1e-10
	prettyFloatDelta = 2.220446049250313e-16
)

// PrettyBreaks returns about n+1 equally spaced round values covering
// [lo, hi], where the spacing is 1, 2 or 5 times a power of ten. It
// follows the classic S/R "pretty" heuristic.
func PrettyBreaks(lo, hi float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	minN := n / 3

	dx := hi - lo
	var cell float64
	small := false
	if dx == 0 && hi == 0 {
		cell = 1
		small = true
	} else {
		cell = math.Max(math.Abs(lo), math.Abs(hi))
		u := 1 + 1/(1+prettyBias)
		if prettyBias5 < 1.5*prettyBias+.5 {
			u = 1 + 1.5/(1+prettyBias5)
		}
		u *= float64(n) * prettyFloatDelta
		small = dx < cell*u*3
	}

	if small {
		if cell > 10 {
			cell = 9 + cell/10
		}
		cell *= prettyShrink
		if minN > 1 {
			cell /= float64(minN)
		}
	} else {
		cell = dx
		if n > 1 {
			cell /= float64(n)
		}
	}

	base := math.Pow(10, math.Floor(math.Log10(cell)))
	unit := base
	if 2*base-cell < prettyBias*(cell-unit) {
		unit = 2 * base
		if 5*base-cell < prettyBias5*(cell-unit) {
			unit = 5 * base
			if 10*base-cell < prettyBias*(cell-unit) {
				unit = 10 * base
			}
		}
	}

	ns := math.Floor(lo/unit + prettyRoundEps)
	nu := math.Ceil(hi/unit - prettyRoundEps)
	for ns*unit > lo+prettyRoundEps*unit {
		ns--
	}
	for nu*unit < hi-prettyRoundEps*unit {
		nu++
	}

	k := int(0.5 + nu - ns)
	if k < minN {
		k = minN - k
		if ns >= 0 {
			nu += float64(k / 2)
			ns -= float64(k/2 + k%2)
		} else {
			ns -= float64(k / 2)
			nu += float64(k/2 + k%2)
		}
	}

	var out []float64
	for i := ns; i <= nu; i++ {
		v := i * unit
		if unit < 1 {
			v = i / math.Round(1/unit)
		}
		if v == 0 {
			v = 0 // drop negative zero
		}
		out = append(out, v)
	}
	if len(out) == 1 {
		out = append(out, out[0]+unit)
	}
	return out
}
