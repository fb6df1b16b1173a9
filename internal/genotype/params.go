package genotype

import (
	"math/rand"
)

// Params is the numeric parameter set of one genotype.
type Params map[string]float64

// Get returns the named parameter or the fallback when absent.
func (p Params) Get(name string, fallback float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// mutationKind controls how a parameter is perturbed during cloning.
type mutationKind int

const (
	kindLookback  mutationKind = iota // relative +/-20%, integral periods
	kindWidth                         // absolute +/-0.2 multipliers
	kindThreshold                     // absolute +/-5 oscillator levels
	kindFraction                      // relative +/-20%, small fractional pads
)

type paramSpec struct {
	kind     mutationKind
	min, max float64
}

// paramSpecs bounds every mutable parameter. Unknown keys carry over
// unmutated so older snapshots stay loadable.
var paramSpecs = map[string]paramSpec{
	"lookback":     {kindLookback, 5, 200},
	"ma_period":    {kindLookback, 10, 200},
	"risk_reward":  {kindWidth, 0.5, 5.0},
	"band_width":   {kindWidth, 0.5, 3.0},
	"rsi_low":      {kindThreshold, 5, 50},
	"rsi_high":     {kindThreshold, 50, 95},
	"rsi_mid":      {kindThreshold, 30, 70},
	"stop_pad":     {kindFraction, 0.0005, 0.01},
	"pullback_tol": {kindFraction, 0.0005, 0.01},
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Mutated returns a copy of the parameter set with every known parameter
// perturbed within its bounds.
func (p Params) Mutated(rng *rand.Rand) Params {
	out := p.clone()
	for key, v := range out {
		spec, ok := paramSpecs[key]
		if !ok {
			continue
		}
		jitter := rng.Float64()*2 - 1 // [-1, 1)
		switch spec.kind {
		case kindLookback:
			v = float64(int(v*(1+0.2*jitter) + 0.5))
		case kindWidth:
			v += 0.2 * jitter
		case kindThreshold:
			v += 5 * jitter
		case kindFraction:
			v *= 1 + 0.2*jitter
		}
		out[key] = clamp(v, spec.min, spec.max)
	}
	return out
}

// CloneWithMutatedParams produces an offspring under a new name with
// perturbed parameters and fresh phantom accounting. Performance history
// never carries over to children.
func (g *Genotype) CloneWithMutatedParams(name string, rng *rand.Rand, baselineEquity float64) *Genotype {
	return New(name, g.Family, g.Direction, g.Params.Mutated(rng), baselineEquity, g.NotionalScale)
}
