package regime

import "math"

const (
	minHurstLag = 10
	maxHurstLag = 100
)

// HurstExponent estimates the Hurst exponent of a return series using
// rescaled range (R/S) analysis. For each lag L in [10, min(N/2, 100)) the
// most recent L points are demeaned, cumulatively summed, and the range of
// the cumulative sum is divided by the standard deviation of the chunk. The
// slope of the least-squares fit through the (log L, log R/S) pairs is the
// estimate.
//
// H < 0.5 mean reverting, H ~ 0.5 random walk, H > 0.5 trending.
// Fewer than 3 valid rescaled-range points yield 0.5, never an error.
func HurstExponent(returns []float64) float64 {
	maxLag := len(returns) / 2
	if maxLag > maxHurstLag {
		maxLag = maxHurstLag
	}
	if maxLag <= minHurstLag {
		return 0.5
	}

	var logLags, logRS []float64
	for lag := minHurstLag; lag < maxLag; lag++ {
		chunk := returns[len(returns)-lag:]

		mean := 0.0
		for _, v := range chunk {
			mean += v
		}
		mean /= float64(lag)

		// Range of cumulative deviations from the mean.
		cum, minZ, maxZ := 0.0, math.Inf(1), math.Inf(-1)
		for _, v := range chunk {
			cum += v - mean
			if cum < minZ {
				minZ = cum
			}
			if cum > maxZ {
				maxZ = cum
			}
		}
		r := maxZ - minZ

		variance := 0.0
		for _, v := range chunk {
			d := v - mean
			variance += d * d
		}
		s := math.Sqrt(variance / float64(lag))

		if s == 0 {
			continue
		}
		rs := r / s
		if rs <= 0 || math.IsNaN(rs) || math.IsInf(rs, 0) {
			continue
		}
		logLags = append(logLags, math.Log(float64(lag)))
		logRS = append(logRS, math.Log(rs))
	}

	if len(logRS) < 3 {
		return 0.5
	}

	slope, ok := leastSquaresSlope(logLags, logRS)
	if !ok || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0.5
	}
	return slope
}

// leastSquaresSlope fits y = a + b*x and returns b.
func leastSquaresSlope(x, y []float64) (float64, bool) {
	n := float64(len(x))
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}
