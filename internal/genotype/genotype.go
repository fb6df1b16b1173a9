package genotype

import (
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// Signal is the output of one genotype for one cycle.
type Signal struct {
	Action     types.Action
	Confidence float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

func hold(reason string) Signal {
	return Signal{Action: types.ActionHold, Reason: reason}
}

// VirtualTrade is a paper position opened in shadow mode.
type VirtualTrade struct {
	Entry      float64 `json:"entry"`
	Action     types.Action
	StopLoss   float64 `json:"sl"`
	TakeProfit float64 `json:"tp"`
}

// ClosedTrade is one realized paper trade.
type ClosedTrade struct {
	PnL    float64
	Action types.Action
}

// Context carries the cross-timeframe candle windows a rule may consult.
type Context struct {
	Windows map[string][]types.OHLCV
}

// Window returns the candles for a timeframe, or nil when absent.
func (c *Context) Window(tf string) []types.OHLCV {
	if c == nil {
		return nil
	}
	return c.Windows[tf]
}

// Tuning holds the regime-conditional scoring factors. Historical revisions
// of these thresholds disagree, so they are injected rather than hard-coded.
type Tuning struct {
	TrendBoost      float64
	RangeBoost      float64
	MismatchPenalty float64
	StreakBonus2    float64
	StreakBonus3    float64
	StreakBonus5    float64
}

// DefaultTuning matches the production configuration defaults.
func DefaultTuning() Tuning {
	return Tuning{
		TrendBoost:      1.2,
		RangeBoost:      1.2,
		MismatchPenalty: 0.85,
		StreakBonus2:    1.05,
		StreakBonus3:    1.10,
		StreakBonus5:    1.20,
	}
}

// Genotype is one parameterized trading heuristic running in shadow mode.
// Identity is (Family, Direction, Params); everything else is phantom
// accounting state mutated only by UpdatePerformance.
type Genotype struct {
	Name      string
	Family    types.Family
	Direction types.Direction
	Params    Params

	PhantomEquity float64
	PeakEquity    float64
	MaxDrawdown   float64
	WinStreak     int
	LossStreak    int
	OpenTrade     *VirtualTrade
	TradeLog      []ClosedTrade

	// NotionalScale converts per-unit price moves into equity deltas.
	NotionalScale float64
}

// New creates a genotype with fresh phantom accounting.
func New(name string, family types.Family, dir types.Direction, params Params, baselineEquity, notionalScale float64) *Genotype {
	return &Genotype{
		Name:          name,
		Family:        family,
		Direction:     dir,
		Params:        params.clone(),
		PhantomEquity: baselineEquity,
		PeakEquity:    baselineEquity,
		NotionalScale: notionalScale,
	}
}

// Untested reports whether this genotype has no realized trade history yet.
func (g *Genotype) Untested() bool {
	return len(g.TradeLog) == 0
}

// RawSignal evaluates the family rule without the directional mandate.
// Insufficient lookback resolves to HOLD with a reason, never an error.
func (g *Genotype) RawSignal(window []types.OHLCV, ind types.IndicatorMap, ctx *Context) Signal {
	r, ok := ruleFor(g.Family)
	if !ok {
		return hold("no rule registered for family")
	}
	return r.raw(window, ind, ctx, g.Params)
}

// GenerateSignal wraps the raw signal with the directional filter: a
// LONG-only genotype silently converts SELL to HOLD and vice versa.
func (g *Genotype) GenerateSignal(window []types.OHLCV, ind types.IndicatorMap, ctx *Context) Signal {
	sig := g.RawSignal(window, ind, ctx)
	switch {
	case g.Direction == types.DirectionLong && sig.Action == types.ActionSell:
		return hold("sell blocked by LONG-only mandate")
	case g.Direction == types.DirectionShort && sig.Action == types.ActionBuy:
		return hold("buy blocked by SHORT-only mandate")
	}
	return sig
}

// OpenVirtual opens a paper position at the given entry for a directional
// signal. A no-op when a position is already open or the signal holds.
func (g *Genotype) OpenVirtual(entry float64, sig Signal) {
	if g.OpenTrade != nil || sig.Action == types.ActionHold {
		return
	}
	g.OpenTrade = &VirtualTrade{
		Entry:      entry,
		Action:     sig.Action,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
	}
}

// UpdatePerformance marks the open paper position to market, realizes P&L
// when price has crossed the virtual stop or target, and unconditionally
// refreshes peak equity and max drawdown from the floating-inclusive equity.
func (g *Genotype) UpdatePerformance(currentPrice float64) {
	if g.OpenTrade != nil {
		entry := g.OpenTrade.Entry
		sl := g.OpenTrade.StopLoss
		tp := g.OpenTrade.TakeProfit

		pnl := 0.0
		closed := false
		switch g.OpenTrade.Action {
		case types.ActionBuy:
			if currentPrice <= sl {
				pnl = sl - entry
				closed = true
			} else if currentPrice >= tp {
				pnl = tp - entry
				closed = true
			}
		case types.ActionSell:
			if currentPrice >= sl {
				pnl = entry - sl
				closed = true
			} else if currentPrice <= tp {
				pnl = entry - tp
				closed = true
			}
		}

		if closed {
			g.PhantomEquity += pnl * g.NotionalScale
			g.TradeLog = append(g.TradeLog, ClosedTrade{PnL: pnl, Action: g.OpenTrade.Action})
			if pnl > 0 {
				g.WinStreak++
				g.LossStreak = 0
			} else {
				g.LossStreak++
				g.WinStreak = 0
			}
			g.OpenTrade = nil
		}
	}

	g.refreshDrawdown(currentPrice)
}

// FloatingEquity is phantom equity including unrealized P&L on the open
// paper position.
func (g *Genotype) FloatingEquity(currentPrice float64) float64 {
	eq := g.PhantomEquity
	if g.OpenTrade != nil {
		switch g.OpenTrade.Action {
		case types.ActionBuy:
			eq += (currentPrice - g.OpenTrade.Entry) * g.NotionalScale
		case types.ActionSell:
			eq += (g.OpenTrade.Entry - currentPrice) * g.NotionalScale
		}
	}
	return eq
}

func (g *Genotype) refreshDrawdown(currentPrice float64) {
	eq := g.FloatingEquity(currentPrice)
	if eq > g.PeakEquity {
		g.PeakEquity = eq
	}
	if g.PeakEquity <= 0 {
		return
	}
	dd := (g.PeakEquity - eq) / g.PeakEquity
	if dd > g.MaxDrawdown {
		g.MaxDrawdown = dd
	}
}

// QualityScore is the regime-conditioned fitness used for ranking:
// phantom equity scaled by the regime boost and streak bonus, divided by
// the drawdown penalty 1 + 2*maxDD.
func (g *Genotype) QualityScore(report *regime.Report, t Tuning) float64 {
	base := g.PhantomEquity

	boost := t.MismatchPenalty
	if report != nil {
		switch g.Family {
		case types.FamilyMeanRevert:
			if report.Trend == regime.TrendRanging || report.Trend == regime.TrendRangingRebel {
				boost = t.RangeBoost
			}
		default:
			// Trend-seeking families: boosted only when the regime is
			// trending and the fixed direction agrees with the label.
			if report.Trend == regime.TrendBullish && g.Direction != types.DirectionShort {
				boost = t.TrendBoost
			} else if report.Trend == regime.TrendBearish && g.Direction != types.DirectionLong {
				boost = t.TrendBoost
			}
		}
	} else {
		boost = 1.0
	}

	streak := 1.0
	switch {
	case g.WinStreak >= 5:
		streak = t.StreakBonus5
	case g.WinStreak >= 3:
		streak = t.StreakBonus3
	case g.WinStreak >= 2:
		streak = t.StreakBonus2
	}

	ddPenalty := 1.0 + 2.0*g.MaxDrawdown
	if ddPenalty <= 0 {
		ddPenalty = 1.0
	}

	return base * boost * streak / ddPenalty
}
