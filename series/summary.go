package series

import (
	"math"
	"time"
)

// Summary holds descriptive statistics for a TimeSeries.
type Summary struct {
	Length   int
	Start    time.Time
	End      time.Time
	Total    float64
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
	Min      float64
	MinDate  time.Time
	Max      float64
	MaxDate  time.Time
}

// Summary computes descriptive statistics in a single pass using Welford's
// online algorithm for the second moment.
func (ts *TimeSeries) Summary() Summary {
	var (
		mean   float64
		m2     float64
		total  float64
		minVal = ts.values[0]
		minPos int
		maxVal = ts.values[0]
		maxPos int
	)

	for i, x := range ts.values {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		total += x

		if x < minVal {
			minVal = x
			minPos = i
		}

		if x > maxVal {
			maxVal = x
			maxPos = i
		}
	}

	variance := m2 / float64(len(ts.values))

	return Summary{
		Length:   len(ts.values),
		Start:    ts.dates[0],
		End:      ts.dates[len(ts.dates)-1],
		Total:    total,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      minVal,
		MinDate:  ts.dates[minPos],
		Max:      maxVal,
		MaxDate:  ts.dates[maxPos],
	}
}
