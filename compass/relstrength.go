package compass

import (
	"math"

	"github.com/evdnx/gocompass/rank"
)

// RelativeStrength divides an asset series by the benchmark, row by row.
func RelativeStrength(asset, benchmark []float64) []float64 {
	out := make([]float64, len(asset))
	for i := range asset {
		out[i] = asset[i] / benchmark[i]
	}
	return out
}

// MovingAverage is the trailing simple mean over window points. The first
// window-1 entries, and any window touching an undefined value, are NaN.
func MovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		out[i] = math.NaN()
		if window <= 0 || i < window-1 {
			continue
		}
		sum := 0.0
		ok := true
		for _, v := range series[i-window+1 : i+1] {
			if !rank.Defined(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RateOfChange is the percent change over periods rows:
// (s[i] / s[i-periods] - 1) * 100. Undefined while either end is undefined.
func RateOfChange(series []float64, periods int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		out[i] = math.NaN()
		if periods <= 0 || i < periods {
			continue
		}
		prev, cur := series[i-periods], series[i]
		if !rank.Defined(prev) || !rank.Defined(cur) || prev == 0 {
			continue
		}
		out[i] = (cur/prev - 1) * 100
	}
	return out
}
