package emd

// findExtrema returns the indices of interior local maxima and minima, each
// list ascending. A flat plateau counts as one extremum at its midpoint.
// Boundary samples are never extrema; the envelopes anchor them through
// mirror extension instead.
func findExtrema(x []float64) (maxIdx, minIdx []int) {
	n := len(x)
	if n < 3 {
		return nil, nil
	}

	prevSign := 0    // direction entering the current position
	plateauStart := 0

	for i := 1; i < n; i++ {
		switch {
		case x[i] > x[i-1]:
			if prevSign < 0 {
				minIdx = append(minIdx, (plateauStart+i-1)/2)
			}

			prevSign = 1
			plateauStart = i
		case x[i] < x[i-1]:
			if prevSign > 0 {
				maxIdx = append(maxIdx, (plateauStart+i-1)/2)
			}

			prevSign = -1
			plateauStart = i
		default:
			// Inside a plateau; resolved once the direction changes.
		}
	}

	return maxIdx, minIdx
}

// ZeroCrossings returns the number of sign changes between consecutive
// samples. Exact zeros bridge to the next nonzero sample, so a touch-and-go
// zero counts once.
func ZeroCrossings(signal []float64) int {
	var count int

	prevSign := 0

	for _, v := range signal {
		s := 0

		switch {
		case v > 0:
			s = 1
		case v < 0:
			s = -1
		}

		if s == 0 {
			continue
		}

		if prevSign != 0 && s != prevSign {
			count++
		}

		prevSign = s
	}

	return count
}
