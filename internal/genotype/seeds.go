package genotype

import (
	"github.com/evoquant/darwin-bot/pkg/types"
)

// SeedSpec describes one canonical genotype. The full set doubles as the
// protected (family, direction) combinations that extinction protection
// guarantees after every evolution cycle.
type SeedSpec struct {
	Name      string
	Family    types.Family
	Direction types.Direction
	Params    Params
}

// SeedSpecs is the canonical population. Every (family, direction) pair in
// this list must survive evolution.
var SeedSpecs = []SeedSpec{
	{
		Name: "TrendHawk_LONG", Family: types.FamilyTrendFollow, Direction: types.DirectionLong,
		Params: Params{"lookback": 20, "risk_reward": 2.0},
	},
	{
		Name: "TrendHawk_SHORT", Family: types.FamilyTrendFollow, Direction: types.DirectionShort,
		Params: Params{"lookback": 20, "risk_reward": 2.0},
	},
	{
		Name: "MeanReverter_Std", Family: types.FamilyMeanRevert, Direction: types.DirectionBoth,
		Params: Params{"band_width": 1.0, "rsi_low": 30, "rsi_high": 70, "stop_pad": 0.002},
	},
	{
		Name: "MomentumRider_LONG", Family: types.FamilyMomentum, Direction: types.DirectionLong,
		Params: Params{"lookback": 14, "rsi_mid": 50, "risk_reward": 1.5},
	},
	{
		Name: "MomentumRider_SHORT", Family: types.FamilyMomentum, Direction: types.DirectionShort,
		Params: Params{"lookback": 14, "rsi_mid": 50, "risk_reward": 1.5},
	},
	{
		Name: "Sniper_Confluence", Family: types.FamilyConfluence, Direction: types.DirectionBoth,
		Params: Params{"lookback": 20, "ma_period": 50, "risk_reward": 2.0},
	},
	{
		Name: "PullbackHunter_LONG", Family: types.FamilyPullback, Direction: types.DirectionLong,
		Params: Params{"lookback": 10, "pullback_tol": 0.002, "rsi_low": 40, "rsi_high": 60, "risk_reward": 2.0},
	},
	{
		Name: "PullbackHunter_SHORT", Family: types.FamilyPullback, Direction: types.DirectionShort,
		Params: Params{"lookback": 10, "pullback_tol": 0.002, "rsi_low": 40, "rsi_high": 60, "risk_reward": 2.0},
	},
}

// NewSeed instantiates the canonical genotype for a seed spec.
func NewSeed(spec SeedSpec, baselineEquity, notionalScale float64) *Genotype {
	return New(spec.Name, spec.Family, spec.Direction, spec.Params, baselineEquity, notionalScale)
}

// SeedPopulation instantiates every canonical genotype.
func SeedPopulation(baselineEquity, notionalScale float64) []*Genotype {
	out := make([]*Genotype, 0, len(SeedSpecs))
	for _, spec := range SeedSpecs {
		out = append(out, NewSeed(spec, baselineEquity, notionalScale))
	}
	return out
}

// SeedFor returns the canonical seed spec for a (family, direction)
// combination, used by extinction protection.
func SeedFor(family types.Family, dir types.Direction) (SeedSpec, bool) {
	for _, spec := range SeedSpecs {
		if spec.Family == family && spec.Direction == dir {
			return spec, true
		}
	}
	return SeedSpec{}, false
}
