package regime

import (
	"github.com/evoquant/darwin-bot/pkg/types"
)

// TrendLabel classifies the prevailing market character of the base timeframe.
type TrendLabel string

const (
	TrendBullish      TrendLabel = "BULLISH"
	TrendBearish      TrendLabel = "BEARISH"
	TrendRanging      TrendLabel = "RANGING"
	TrendRangingRebel TrendLabel = "RANGING_REBEL"
	TrendUnknown      TrendLabel = "UNKNOWN"
)

// TFStats holds the fractal metrics for one timeframe.
type TFStats struct {
	Hurst   float64 `json:"hurst"`
	Entropy float64 `json:"entropy"`
}

// FamilyFilter restricts which genotypes the jury may seat. The zero value
// is NOT permissive; use AllowAll for the unrestricted default.
type FamilyFilter struct {
	All       bool
	Families  map[types.Family]bool // nil = all families
	Direction types.Direction       // DirectionBoth = unrestricted
}

// AllowAll permits every family and direction.
func AllowAll() FamilyFilter {
	return FamilyFilter{All: true}
}

// Permits reports whether a genotype with the given identity may be seated.
func (f FamilyFilter) Permits(family types.Family, dir types.Direction) bool {
	if f.All {
		return true
	}
	if f.Families != nil && !f.Families[family] {
		return false
	}
	if f.Direction != types.DirectionBoth && dir != types.DirectionBoth && dir != f.Direction {
		return false
	}
	return true
}

// Report is the per-cycle read of the market regime. Produced fresh every
// cycle and never mutated after creation.
type Report struct {
	Hurst          float64
	Entropy        float64
	PerTimeframe   map[string]TFStats
	AlignmentScore float64
	Trend          TrendLabel
	Allowed        FamilyFilter
}

// Neutral returns the safe default report used when no analysis is possible.
func Neutral() *Report {
	return &Report{
		Hurst:        0.5,
		Entropy:      1.0,
		PerTimeframe: map[string]TFStats{},
		Trend:        TrendUnknown,
		Allowed:      AllowAll(),
	}
}

// Analyzer turns multi-timeframe return series into a regime Report.
type Analyzer struct {
	trendingHurst  float64
	revertingHurst float64
	entropyBins    int
	minObs         int
}

// NewAnalyzer creates a regime analyzer with the given classification
// thresholds (hurst above/below which a series counts as trending or
// mean-reverting) and entropy bin count.
func NewAnalyzer(trendingHurst, revertingHurst float64, entropyBins int) *Analyzer {
	return &Analyzer{
		trendingHurst:  trendingHurst,
		revertingHurst: revertingHurst,
		entropyBins:    entropyBins,
		minObs:         100,
	}
}

// Analyze computes per-timeframe fractal metrics, the cross-timeframe
// alignment score, the trend label, and the family restrictions for this
// cycle. Missing or short timeframes degrade to the neutral random-walk
// read; the analyzer never blocks everything by default.
func (a *Analyzer) Analyze(windows map[string][]types.OHLCV) *Report {
	report := Neutral()

	drift := map[string]float64{}
	for tf, window := range windows {
		returns := types.LogReturns(window)
		if len(returns) < a.minObs {
			report.PerTimeframe[tf] = TFStats{Hurst: 0.5, Entropy: 1.0}
			continue
		}
		report.PerTimeframe[tf] = TFStats{
			Hurst:   HurstExponent(returns),
			Entropy: ShannonEntropy(returns, a.entropyBins),
		}
		sum := 0.0
		for _, r := range returns {
			sum += r
		}
		drift[tf] = sum / float64(len(returns))
	}

	base := a.stats(report, types.TimeframeBase)
	h1 := a.stats(report, types.TimeframeHigher)
	h4 := a.stats(report, types.TimeframeMacro)

	report.Hurst = base.Hurst
	report.Entropy = base.Entropy
	report.AlignmentScore = a.alignment(base.Hurst, h1.Hurst, h4.Hurst)
	report.Trend = a.classify(base.Hurst, h1.Hurst, drift[types.TimeframeBase])
	report.Allowed = a.restrictions(report.Trend, base.Hurst, h1.Hurst,
		drift[types.TimeframeBase], drift[types.TimeframeHigher])

	return report
}

func (a *Analyzer) stats(r *Report, tf string) TFStats {
	if s, ok := r.PerTimeframe[tf]; ok {
		return s
	}
	return TFStats{Hurst: 0.5, Entropy: 1.0}
}

// alignment combines the base timeframe signal with higher timeframe
// permission. The higher timeframe contradicting the base trend is a hard
// veto weight, not a soft one.
func (a *Analyzer) alignment(baseH, h1H, h4H float64) float64 {
	score := 0.0
	switch {
	case baseH > a.trendingHurst:
		if h1H > 0.5 {
			score += 0.5
			if h4H > 0.5 {
				score += 0.5
			} else if h4H < a.revertingHurst {
				score -= 0.2
			}
		} else {
			score -= 1.0
		}
	case baseH < a.revertingHurst:
		if h1H < 0.5 {
			score += 0.5
		} else {
			score -= 0.5
		}
	}
	return score
}

func (a *Analyzer) classify(baseH, h1H, baseDrift float64) TrendLabel {
	switch {
	case baseH > a.trendingHurst:
		if baseDrift > 0 {
			return TrendBullish
		}
		if baseDrift < 0 {
			return TrendBearish
		}
		return TrendUnknown
	case baseH < a.revertingHurst:
		if h1H > a.trendingHurst {
			return TrendRangingRebel
		}
		return TrendRanging
	default:
		return TrendUnknown
	}
}

// restrictions derives the allowed family tag set. The default permits ALL;
// restrictions apply only when the timeframes actively disagree.
func (a *Analyzer) restrictions(label TrendLabel, baseH, h1H, baseDrift, h1Drift float64) FamilyFilter {
	// Base trending but the higher timeframe refuses permission: only the
	// surviving, uncontradicted bias may trade. The base trend direction is
	// the contradicted one.
	if baseH > a.trendingHurst && h1H <= 0.5 {
		dir := types.DirectionBoth
		if baseDrift > 0 {
			dir = types.DirectionShort
		} else if baseDrift < 0 {
			dir = types.DirectionLong
		}
		return FamilyFilter{Direction: dir}
	}

	// Ranging base under a trending higher timeframe: only mean reversion
	// fading against the higher timeframe trend is permitted.
	if label == TrendRangingRebel {
		dir := types.DirectionBoth
		if h1Drift > 0 {
			dir = types.DirectionShort
		} else if h1Drift < 0 {
			dir = types.DirectionLong
		}
		return FamilyFilter{
			Families:  map[types.Family]bool{types.FamilyMeanRevert: true},
			Direction: dir,
		}
	}

	return AllowAll()
}
