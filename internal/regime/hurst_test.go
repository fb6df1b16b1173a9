package regime

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHurstExponent_InsufficientData tests that short series fall back to the random-walk value
func TestHurstExponent_InsufficientData(t *testing.T) {
	assert.Equal(t, 0.5, HurstExponent(nil))
	assert.Equal(t, 0.5, HurstExponent([]float64{0.01}))
	assert.Equal(t, 0.5, HurstExponent([]float64{0.01, -0.02, 0.01, 0.0, 0.01}))
}

// TestHurstExponent_ConstantSeries tests that a zero-variance series degrades safely
func TestHurstExponent_ConstantSeries(t *testing.T) {
	series := make([]float64, 300)
	assert.Equal(t, 0.5, HurstExponent(series))
}

// TestHurstExponent_PersistentSeries tests that a strongly trending series reads as persistent
func TestHurstExponent_PersistentSeries(t *testing.T) {
	// Smooth drift with a small wobble: strongly persistent increments.
	series := make([]float64, 400)
	for i := range series {
		series[i] = 0.001 + 0.0001*math.Sin(float64(i)/40.0)
	}

	h := HurstExponent(series)
	assert.Greater(t, h, 0.7, "trending series should read well above 0.5")
}

// TestHurstExponent_AlternatingSeries tests that a perfectly mean-reverting series reads as anti-persistent
func TestHurstExponent_AlternatingSeries(t *testing.T) {
	series := make([]float64, 400)
	for i := range series {
		if i%2 == 0 {
			series[i] = 0.01
		} else {
			series[i] = -0.01
		}
	}

	h := HurstExponent(series)
	assert.Less(t, h, 0.3, "alternating series should read well below 0.5")
}

// TestHurstExponent_RandomWalk tests that white noise stays near the neutral band
func TestHurstExponent_RandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	series := make([]float64, 1000)
	for i := range series {
		series[i] = rng.NormFloat64() * 0.01
	}

	h := HurstExponent(series)
	assert.InDelta(t, 0.5, h, 0.15, "white noise should sit near 0.5")
}

// TestShannonEntropy_Bounds tests that entropy stays within [0, 1]
func TestShannonEntropy_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	series := make([]float64, 500)
	for i := range series {
		series[i] = rng.NormFloat64()
	}

	e := ShannonEntropy(series, 20)
	assert.GreaterOrEqual(t, e, 0.0)
	assert.LessOrEqual(t, e, 1.0)
}

// TestShannonEntropy_UniformNoise tests that spread-out noise carries high entropy
func TestShannonEntropy_UniformNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	series := make([]float64, 2000)
	for i := range series {
		series[i] = rng.Float64()
	}

	e := ShannonEntropy(series, 20)
	assert.Greater(t, e, 0.9, "uniform noise should be near maximal entropy")
}

// TestShannonEntropy_Concentrated tests that a tightly clustered series carries low entropy
func TestShannonEntropy_Concentrated(t *testing.T) {
	series := make([]float64, 500)
	for i := range series {
		series[i] = 0.001
	}
	series[0] = 1.0 // one outlier keeps max > min

	e := ShannonEntropy(series, 20)
	assert.Less(t, e, 0.2, "concentrated series should be near zero entropy")
}

// TestShannonEntropy_DegenerateInputs tests that failure modes return the conservative maximum
func TestShannonEntropy_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 1.0, ShannonEntropy(nil, 20))
	assert.Equal(t, 1.0, ShannonEntropy([]float64{0.01, 0.01, 0.01}, 20), "zero range")
	assert.Equal(t, 1.0, ShannonEntropy([]float64{0.01, 0.02}, 1), "too few bins")
	assert.Equal(t, 1.0, ShannonEntropy([]float64{0.01, math.NaN()}, 20), "non-finite input")
}
