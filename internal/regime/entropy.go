package regime

import "math"

// ShannonEntropy computes the normalized Shannon entropy of the return
// distribution bucketed into the given number of bins. The result lies in
// [0, 1]: low values mean ordered movement, high values mean noise.
//
// Any numerical failure (empty series, degenerate range, non-finite values)
// returns 1.0 - maximal disorder is the conservative fallback.
func ShannonEntropy(returns []float64, bins int) float64 {
	if bins < 2 || len(returns) == 0 {
		return 1.0
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, v := range returns {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 1.0
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= minV {
		return 1.0
	}

	counts := make([]int, bins)
	width := (maxV - minV) / float64(bins)
	for _, v := range returns {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	total := float64(len(returns))
	ent := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		ent -= p * math.Log(p)
	}

	normalized := ent / math.Log(float64(bins))
	if math.IsNaN(normalized) {
		return 1.0
	}
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}
