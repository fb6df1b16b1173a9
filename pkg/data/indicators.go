package data

import (
	"math"

	"github.com/evoquant/darwin-bot/pkg/types"
)

// Snapshot computes the indicator values the trading heuristics consult
// for the most recent candle of the window. Indicators whose warmup
// exceeds the window are simply absent from the map; consumers fall back
// through IndicatorMap.Get.
func Snapshot(window []types.OHLCV) types.IndicatorMap {
	ind := types.IndicatorMap{}
	closes := make([]float64, len(window))
	for i, c := range window {
		closes[i] = c.Close
	}

	if ema, ok := emaLast(closes, 50); ok {
		ind["EMA_50"] = ema
	}
	if ema, ok := emaLast(closes, 200); ok {
		ind["EMA_200"] = ema
	}
	if rsi, ok := rsiLast(closes, 14); ok {
		ind["RSI_14"] = rsi
	}
	if upper, middle, lower, ok := bollinger(closes, 20, 2.0); ok {
		ind["BB_Upper"] = upper
		ind["BB_Middle"] = middle
		ind["BB_Lower"] = lower
	}
	if macd, signal, ok := macdLast(closes, 12, 26, 9); ok {
		ind["MACD"] = macd
		ind["MACD_Signal"] = signal
	}
	if atr, ok := atrLast(window, 14); ok {
		ind["ATR_14"] = atr
	}

	return ind
}

// emaSeries returns the full EMA series seeded with the SMA of the first
// period values, the same warmup the incremental indicator uses.
func emaSeries(values []float64, period int) ([]float64, bool) {
	if period <= 0 || len(values) < period {
		return nil, false
	}

	alpha := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out = append(out, ema)

	for i := period; i < len(values); i++ {
		ema = (values[i] * alpha) + (ema * (1 - alpha))
		out = append(out, ema)
	}
	return out, true
}

func emaLast(values []float64, period int) (float64, bool) {
	series, ok := emaSeries(values, period)
	if !ok {
		return 0, false
	}
	return series[len(series)-1], true
}

func rsiLast(prices []float64, period int) (float64, bool) {
	if len(prices) < period+1 {
		return 0, false
	}

	gains := make([]float64, 0, period)
	losses := make([]float64, 0, period)
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, math.Abs(change))
		}
	}

	avgGain := mean(gains)
	avgLoss := mean(losses)
	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

func bollinger(prices []float64, period int, stdDevMultiple float64) (upper, middle, lower float64, ok bool) {
	if len(prices) < period {
		return 0, 0, 0, false
	}

	recent := prices[len(prices)-period:]
	middle = mean(recent)
	stdDev := standardDeviation(recent, middle)

	upper = middle + (stdDevMultiple * stdDev)
	lower = middle - (stdDevMultiple * stdDev)
	return upper, middle, lower, true
}

// macdLast computes the MACD line and its EMA signal line over the full
// MACD history so the signal line carries real smoothing.
func macdLast(prices []float64, fast, slow, signal int) (float64, float64, bool) {
	fastSeries, okFast := emaSeries(prices, fast)
	slowSeries, okSlow := emaSeries(prices, slow)
	if !okFast || !okSlow {
		return 0, 0, false
	}

	// Align the two series on their tails.
	n := len(slowSeries)
	if len(fastSeries) < n {
		n = len(fastSeries)
	}
	macdHistory := make([]float64, n)
	for i := 0; i < n; i++ {
		macdHistory[i] = fastSeries[len(fastSeries)-n+i] - slowSeries[len(slowSeries)-n+i]
	}

	signalSeries, ok := emaSeries(macdHistory, signal)
	if !ok {
		return 0, 0, false
	}
	return macdHistory[len(macdHistory)-1], signalSeries[len(signalSeries)-1], true
}

func atrLast(window []types.OHLCV, period int) (float64, bool) {
	if len(window) < period+1 {
		return 0, false
	}

	sum := 0.0
	for i := len(window) - period; i < len(window); i++ {
		highLow := window[i].High - window[i].Low
		highClose := math.Abs(window[i].High - window[i-1].Close)
		lowClose := math.Abs(window[i].Low - window[i-1].Close)
		sum += math.Max(highLow, math.Max(highClose, lowClose))
	}
	return sum / float64(period), true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func standardDeviation(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
