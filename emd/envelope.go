package emd

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// nbsym is the number of extrema mirrored beyond each boundary.
const nbsym = 2

// envelopeMean returns (upper+lower)/2, where upper and lower are spline
// envelopes through the maxima and minima of x.
func envelopeMean(x []float64, maxIdx, minIdx []int) ([]float64, error) {
	if len(maxIdx) == 0 || len(minIdx) == 0 {
		return nil, fmt.Errorf("emd: envelope needs extrema of both kinds: %w",
			ErrNoConvergence)
	}

	maxT, maxV, minT, minV := mirrorSupport(x, maxIdx, minIdx)

	upper, err := evalEnvelope(maxT, maxV, len(x))
	if err != nil {
		return nil, err
	}

	lower, err := evalEnvelope(minT, minV, len(x))
	if err != nil {
		return nil, err
	}

	mean := make([]float64, len(x))
	for i := range mean {
		mean[i] = 0.5 * (upper[i] + lower[i])
	}

	return mean, nil
}

// mirrorSupport builds the envelope support points. Up to nbsym extrema are
// reflected beyond each boundary, anchored on the outermost extremum or on
// the boundary sample itself, following Rilling's symmetric extension. The
// reflected points guarantee the splines cover the whole sample range.
func mirrorSupport(x []float64, maxIdx, minIdx []int) (maxT, maxV, minT, minV []float64) {
	last := len(x) - 1

	// Left boundary.
	var lmax, lmin []int

	var lsym int

	if maxIdx[0] < minIdx[0] {
		if x[0] > x[minIdx[0]] {
			// Starts above the first minimum: reflect about the first
			// maximum, which then anchors the upper envelope.
			lmax = reversed(headSkipFirst(maxIdx))
			lmin = reversed(head(minIdx, nbsym))
			lsym = maxIdx[0]
		} else {
			// Starts low: the first sample itself supports the lower
			// envelope, reflection anchors on it.
			lmax = reversed(head(maxIdx, nbsym))
			lmin = append(reversed(head(minIdx, nbsym-1)), 0)
			lsym = 0
		}
	} else {
		if x[0] < x[maxIdx[0]] {
			lmax = reversed(head(maxIdx, nbsym))
			lmin = reversed(headSkipFirst(minIdx))
			lsym = minIdx[0]
		} else {
			lmax = append(reversed(head(maxIdx, nbsym-1)), 0)
			lmin = reversed(head(minIdx, nbsym))
			lsym = 0
		}
	}

	// Re-anchor on the first sample when the reflection falls short of it.
	if len(lmax) == 0 || len(lmin) == 0 ||
		2*lsym-lmax[0] > 0 || 2*lsym-lmin[0] > 0 {
		lmax = reversed(head(maxIdx, nbsym))
		lmin = reversed(head(minIdx, nbsym))
		lsym = 0
	}

	// Right boundary, mirror image of the left logic.
	var rmax, rmin []int

	var rsym int

	if maxIdx[len(maxIdx)-1] < minIdx[len(minIdx)-1] {
		if x[last] < x[maxIdx[len(maxIdx)-1]] {
			rmax = reversed(tail(maxIdx, nbsym))
			rmin = reversed(tailSkipLast(minIdx))
			rsym = minIdx[len(minIdx)-1]
		} else {
			rmax = append([]int{last}, reversed(tail(maxIdx, nbsym-1))...)
			rmin = reversed(tail(minIdx, nbsym))
			rsym = last
		}
	} else {
		if x[last] > x[minIdx[len(minIdx)-1]] {
			rmax = reversed(tailSkipLast(maxIdx))
			rmin = reversed(tail(minIdx, nbsym))
			rsym = maxIdx[len(maxIdx)-1]
		} else {
			rmax = reversed(tail(maxIdx, nbsym))
			rmin = append([]int{last}, reversed(tail(minIdx, nbsym-1))...)
			rsym = last
		}
	}

	if len(rmax) == 0 || len(rmin) == 0 ||
		2*rsym-rmax[len(rmax)-1] < last || 2*rsym-rmin[len(rmin)-1] < last {
		rmax = reversed(tail(maxIdx, nbsym))
		rmin = reversed(tail(minIdx, nbsym))
		rsym = last
	}

	maxT, maxV = appendMirror(maxT, maxV, x, lmax, lsym)
	for _, idx := range maxIdx {
		maxT = append(maxT, float64(idx))
		maxV = append(maxV, x[idx])
	}
	maxT, maxV = appendMirror(maxT, maxV, x, rmax, rsym)

	minT, minV = appendMirror(minT, minV, x, lmin, lsym)
	for _, idx := range minIdx {
		minT = append(minT, float64(idx))
		minV = append(minV, x[idx])
	}
	minT, minV = appendMirror(minT, minV, x, rmin, rsym)

	return maxT, maxV, minT, minV
}

// appendMirror reflects the source extrema about the anchor sample: a point
// at index idx lands at time 2*sym-idx keeping its value.
func appendMirror(ts, vs, x []float64, src []int, sym int) ([]float64, []float64) {
	for _, idx := range src {
		ts = append(ts, float64(2*sym-idx))
		vs = append(vs, x[idx])
	}

	return ts, vs
}

// evalEnvelope fits a spline through the support points and samples it at
// every integer position. Three or more points get a natural cubic spline,
// two a straight line, one a constant.
func evalEnvelope(ts, vs []float64, n int) ([]float64, error) {
	sortSupport(ts, vs)
	ts, vs = dedupeSupport(ts, vs)

	out := make([]float64, n)

	switch {
	case len(ts) >= 3:
		var nc interp.NaturalCubic
		if err := nc.Fit(ts, vs); err != nil {
			return nil, fmt.Errorf("emd: envelope spline: %v: %w", err, ErrNoConvergence)
		}

		for i := range out {
			out[i] = nc.Predict(float64(i))
		}
	case len(ts) == 2:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(ts, vs); err != nil {
			return nil, fmt.Errorf("emd: envelope line: %v: %w", err, ErrNoConvergence)
		}

		for i := range out {
			out[i] = pl.Predict(float64(i))
		}
	case len(ts) == 1:
		for i := range out {
			out[i] = vs[0]
		}
	default:
		return nil, fmt.Errorf("emd: empty envelope support: %w", ErrNoConvergence)
	}

	return out, nil
}

// sortSupport insertion-sorts the support points by time; the point sets are
// tiny and already nearly ordered.
func sortSupport(ts, vs []float64) {
	for i := 1; i < len(ts); i++ {
		t, v := ts[i], vs[i]

		j := i - 1
		for j >= 0 && ts[j] > t {
			ts[j+1], vs[j+1] = ts[j], vs[j]
			j--
		}

		ts[j+1], vs[j+1] = t, v
	}
}

// dedupeSupport drops points sharing a time with their predecessor; splines
// need strictly increasing abscissae.
func dedupeSupport(ts, vs []float64) ([]float64, []float64) {
	if len(ts) == 0 {
		return ts, vs
	}

	out := 1

	for i := 1; i < len(ts); i++ {
		if ts[i] == ts[out-1] {
			continue
		}

		ts[out], vs[out] = ts[i], vs[i]
		out++
	}

	return ts[:out], vs[:out]
}

func head(s []int, k int) []int {
	if k > len(s) {
		k = len(s)
	}

	return s[:k]
}

func tail(s []int, k int) []int {
	if k > len(s) {
		k = len(s)
	}

	return s[len(s)-k:]
}

// headSkipFirst returns up to nbsym elements after the first.
func headSkipFirst(s []int) []int {
	end := nbsym + 1
	if end > len(s) {
		end = len(s)
	}

	return s[1:end]
}

// tailSkipLast returns up to nbsym elements before the last.
func tailSkipLast(s []int) []int {
	start := len(s) - 1 - nbsym
	if start < 0 {
		start = 0
	}

	return s[start : len(s)-1]
}

func reversed(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}
