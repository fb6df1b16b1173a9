package types

import (
	"math"
	"time"
)

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Timeframe identifiers used across the regime analyzer and signal context.
// The base timeframe provides the signal, the higher timeframes provide permission.
const (
	TimeframeBase   = "M15"
	TimeframeHigher = "H1"
	TimeframeMacro  = "H4"
)

// IndicatorMap holds pre-computed indicator values for the current bar,
// keyed by conventional names ("EMA_50", "RSI_14", "BB_Upper", ...).
type IndicatorMap map[string]float64

// Get returns the named indicator value or the fallback when absent.
func (m IndicatorMap) Get(name string, fallback float64) float64 {
	if v, ok := m[name]; ok {
		return v
	}
	return fallback
}

// Closes extracts the close series from a candle window.
func Closes(data []OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Close
	}
	return out
}

// LogReturns computes log returns of the close series.
// Zero or negative closes are skipped to keep the series finite.
func LogReturns(data []OHLCV) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		prev, cur := data[i-1].Close, data[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}
