package genotype

import (
	"math"

	"github.com/evoquant/darwin-bot/pkg/types"
)

// rule is the family-specific signal body. One shared contract, many
// differing rule implementations.
type rule interface {
	raw(window []types.OHLCV, ind types.IndicatorMap, ctx *Context, p Params) Signal
}

var rules = map[types.Family]rule{
	types.FamilyTrendFollow: trendFollowRule{},
	types.FamilyMeanRevert:  meanRevertRule{},
	types.FamilyMomentum:    momentumRule{},
	types.FamilyConfluence:  confluenceRule{},
	types.FamilyPullback:    pullbackRule{},
}

func ruleFor(f types.Family) (rule, bool) {
	r, ok := rules[f]
	return r, ok
}

func highestHigh(window []types.OHLCV, n int) float64 {
	hi := math.Inf(-1)
	for _, c := range window[len(window)-n:] {
		if c.High > hi {
			hi = c.High
		}
	}
	return hi
}

func lowestLow(window []types.OHLCV, n int) float64 {
	lo := math.Inf(1)
	for _, c := range window[len(window)-n:] {
		if c.Low < lo {
			lo = c.Low
		}
	}
	return lo
}

func smaCloses(window []types.OHLCV, n int) float64 {
	sum := 0.0
	for _, c := range window[len(window)-n:] {
		sum += c.Close
	}
	return sum / float64(n)
}

// trendFollowRule trades breakouts of the N-period high/low in the
// direction of the EMA trend filter.
type trendFollowRule struct{}

func (trendFollowRule) raw(window []types.OHLCV, ind types.IndicatorMap, _ *Context, p Params) Signal {
	lookback := int(p.Get("lookback", 20))
	if len(window) < lookback+1 {
		return hold("insufficient lookback for breakout window")
	}
	rr := p.Get("risk_reward", 2.0)

	cur := window[len(window)-1].Close
	hi := highestHigh(window, lookback)
	lo := lowestLow(window, lookback)
	ema := ind.Get("EMA_50", 0)
	if ema == 0 {
		return hold("trend filter unavailable")
	}

	if cur > ema && cur >= hi {
		risk := cur - lo
		if risk <= 0 {
			return hold("degenerate breakout geometry")
		}
		return Signal{
			Action:     types.ActionBuy,
			Confidence: 0.85,
			StopLoss:   lo,
			TakeProfit: cur + rr*risk,
			Reason:     "bullish range breakout above trend filter",
		}
	}
	if cur < ema && cur <= lo {
		risk := hi - cur
		if risk <= 0 {
			return hold("degenerate breakout geometry")
		}
		return Signal{
			Action:     types.ActionSell,
			Confidence: 0.85,
			StopLoss:   hi,
			TakeProfit: cur - rr*risk,
			Reason:     "bearish range breakout below trend filter",
		}
	}
	return hold("no breakout")
}

// meanRevertRule fades Bollinger band extremes confirmed by RSI.
type meanRevertRule struct{}

func (meanRevertRule) raw(window []types.OHLCV, ind types.IndicatorMap, _ *Context, p Params) Signal {
	if len(window) == 0 {
		return hold("no candles")
	}
	close := window[len(window)-1].Close
	upper := ind.Get("BB_Upper", 0)
	lower := ind.Get("BB_Lower", 0)
	if upper == 0 || lower == 0 {
		return hold("bands unavailable")
	}
	mid := ind.Get("BB_Middle", (upper+lower)/2)
	rsi := ind.Get("RSI_14", 50)
	target := ind.Get("EMA_50", mid)

	width := p.Get("band_width", 1.0)
	stopPad := p.Get("stop_pad", 0.002)
	fadeHigh := mid + (upper-mid)*width
	fadeLow := mid - (mid-lower)*width

	if close > fadeHigh && rsi > p.Get("rsi_high", 70) {
		return Signal{
			Action:     types.ActionSell,
			Confidence: 0.75,
			StopLoss:   close * (1 + stopPad),
			TakeProfit: target,
			Reason:     "fading overbought band extreme",
		}
	}
	if close < fadeLow && rsi < p.Get("rsi_low", 30) {
		return Signal{
			Action:     types.ActionBuy,
			Confidence: 0.75,
			StopLoss:   close * (1 - stopPad),
			TakeProfit: target,
			Reason:     "fading oversold band extreme",
		}
	}
	return hold("price inside bands")
}

// momentumRule trades MACD crosses confirmed by the RSI midline.
type momentumRule struct{}

func (momentumRule) raw(window []types.OHLCV, ind types.IndicatorMap, _ *Context, p Params) Signal {
	lookback := int(p.Get("lookback", 14))
	if len(window) < lookback+1 {
		return hold("insufficient lookback for swing levels")
	}
	macd, haveMACD := ind["MACD"]
	macdSig, haveSig := ind["MACD_Signal"]
	if !haveMACD || !haveSig {
		return hold("momentum indicators unavailable")
	}
	rsi := ind.Get("RSI_14", 50)
	rsiMid := p.Get("rsi_mid", 50)
	rr := p.Get("risk_reward", 1.5)
	cur := window[len(window)-1].Close

	if macd > macdSig && rsi > rsiMid {
		sl := lowestLow(window, lookback)
		risk := cur - sl
		if risk <= 0 {
			return hold("degenerate swing geometry")
		}
		return Signal{
			Action:     types.ActionBuy,
			Confidence: 0.70,
			StopLoss:   sl,
			TakeProfit: cur + rr*risk,
			Reason:     "bullish momentum cross",
		}
	}
	if macd < macdSig && rsi < rsiMid {
		sl := highestHigh(window, lookback)
		risk := sl - cur
		if risk <= 0 {
			return hold("degenerate swing geometry")
		}
		return Signal{
			Action:     types.ActionSell,
			Confidence: 0.70,
			StopLoss:   sl,
			TakeProfit: cur - rr*risk,
			Reason:     "bearish momentum cross",
		}
	}
	return hold("no momentum alignment")
}

// confluenceRule only trades when the breakout signal agrees with the
// higher timeframe trend.
type confluenceRule struct{}

func (confluenceRule) raw(window []types.OHLCV, ind types.IndicatorMap, ctx *Context, p Params) Signal {
	base := trendFollowRule{}.raw(window, ind, ctx, p)
	if base.Action == types.ActionHold {
		return base
	}

	maPeriod := int(p.Get("ma_period", 50))
	higher := ctx.Window(types.TimeframeHigher)
	if len(higher) < maPeriod {
		return hold("higher timeframe unavailable")
	}
	h1Close := higher[len(higher)-1].Close
	h1MA := smaCloses(higher, maPeriod)

	if base.Action == types.ActionBuy && h1Close > h1MA {
		base.Confidence = 0.95
		base.Reason = "breakout confirmed by higher timeframe trend"
		return base
	}
	if base.Action == types.ActionSell && h1Close < h1MA {
		base.Confidence = 0.95
		base.Reason = "breakdown confirmed by higher timeframe trend"
		return base
	}
	return hold("no multi-timeframe confluence")
}

// pullbackRule buys or sells retests of the value area inside an
// established trend.
type pullbackRule struct{}

func (pullbackRule) raw(window []types.OHLCV, ind types.IndicatorMap, _ *Context, p Params) Signal {
	lookback := int(p.Get("lookback", 10))
	if len(window) < lookback+1 {
		return hold("insufficient lookback for swing levels")
	}
	ema := ind.Get("EMA_50", 0)
	if ema == 0 {
		return hold("value anchor unavailable")
	}
	close := window[len(window)-1].Close
	if close <= 0 {
		return hold("invalid close")
	}

	tol := p.Get("pullback_tol", 0.002)
	if math.Abs(close-ema)/close > tol {
		return hold("price not at value")
	}
	rsi := ind.Get("RSI_14", 50)
	if rsi < p.Get("rsi_low", 40) || rsi > p.Get("rsi_high", 60) {
		return hold("no balanced pullback")
	}

	rr := p.Get("risk_reward", 2.0)
	trendAnchor := ind.Get("EMA_200", ema)
	if close >= trendAnchor {
		sl := lowestLow(window, lookback)
		risk := close - sl
		if risk <= 0 {
			return hold("degenerate pullback geometry")
		}
		return Signal{
			Action:     types.ActionBuy,
			Confidence: 0.70,
			StopLoss:   sl,
			TakeProfit: close + rr*risk,
			Reason:     "pullback to value in uptrend",
		}
	}
	sl := highestHigh(window, lookback)
	risk := sl - close
	if risk <= 0 {
		return hold("degenerate pullback geometry")
	}
	return Signal{
		Action:     types.ActionSell,
		Confidence: 0.70,
		StopLoss:   sl,
		TakeProfit: close - rr*risk,
		Reason:     "pullback to value in downtrend",
	}
}
