package genotype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

const (
	testBaseline = 10000.0
	testScale    = 1000.0
)

func testCandles(closes []float64) []types.OHLCV {
	out := make([]types.OHLCV, len(closes))
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = types.OHLCV{
			Timestamp: ts.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 100,
		}
	}
	return out
}

// breakoutUpFixture is a window whose last close is a fresh N-period high.
func breakoutUpFixture() ([]types.OHLCV, types.IndicatorMap) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100.0 + float64(i)
	}
	// Last close 129 is the highest high, trend filter below price.
	return testCandles(closes), types.IndicatorMap{"EMA_50": 120.0}
}

// breakoutDownFixture is the bearish mirror of breakoutUpFixture.
func breakoutDownFixture() ([]types.OHLCV, types.IndicatorMap) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 129.0 - float64(i)
	}
	return testCandles(closes), types.IndicatorMap{"EMA_50": 110.0}
}

// TestGenerateSignal_BullishBreakout tests the raw trend-follow BUY path
func TestGenerateSignal_BullishBreakout(t *testing.T) {
	window, ind := breakoutUpFixture()
	g := New("hawk", types.FamilyTrendFollow, types.DirectionBoth,
		Params{"lookback": 20, "risk_reward": 2.0}, testBaseline, testScale)

	sig := g.GenerateSignal(window, ind, nil)
	require.Equal(t, types.ActionBuy, sig.Action)
	assert.Equal(t, 0.85, sig.Confidence)
	assert.Equal(t, 110.0, sig.StopLoss, "stop at the 20-period low")
	assert.Equal(t, 129.0+2.0*19.0, sig.TakeProfit)
}

// TestGenerateSignal_LongOnlyMandateBlocksSell tests that a LONG-only genotype never emits SELL
func TestGenerateSignal_LongOnlyMandateBlocksSell(t *testing.T) {
	window, ind := breakoutDownFixture()

	short := New("hawk_s", types.FamilyTrendFollow, types.DirectionShort,
		Params{"lookback": 20}, testBaseline, testScale)
	require.Equal(t, types.ActionSell, short.GenerateSignal(window, ind, nil).Action,
		"fixture must produce a raw SELL")

	long := New("hawk_l", types.FamilyTrendFollow, types.DirectionLong,
		Params{"lookback": 20}, testBaseline, testScale)
	sig := long.GenerateSignal(window, ind, nil)
	assert.Equal(t, types.ActionHold, sig.Action)
	assert.Contains(t, sig.Reason, "LONG-only mandate")
}

// TestGenerateSignal_ShortOnlyMandateBlocksBuy tests the symmetric mandate
func TestGenerateSignal_ShortOnlyMandateBlocksBuy(t *testing.T) {
	window, ind := breakoutUpFixture()

	short := New("hawk_s", types.FamilyTrendFollow, types.DirectionShort,
		Params{"lookback": 20}, testBaseline, testScale)
	sig := short.GenerateSignal(window, ind, nil)
	assert.Equal(t, types.ActionHold, sig.Action)
	assert.Contains(t, sig.Reason, "SHORT-only mandate")
}

// TestGenerateSignal_InsufficientLookback tests that thin windows resolve to HOLD, not an error
func TestGenerateSignal_InsufficientLookback(t *testing.T) {
	window := testCandles([]float64{100, 101, 102})
	g := New("hawk", types.FamilyTrendFollow, types.DirectionBoth,
		Params{"lookback": 20}, testBaseline, testScale)

	sig := g.GenerateSignal(window, types.IndicatorMap{"EMA_50": 100}, nil)
	assert.Equal(t, types.ActionHold, sig.Action)
	assert.NotEmpty(t, sig.Reason)
}

// TestUpdatePerformance_TakeProfitHit tests realized P&L accounting on a winning paper trade
func TestUpdatePerformance_TakeProfitHit(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionBoth, nil, testBaseline, testScale)
	g.OpenVirtual(100.0, Signal{Action: types.ActionBuy, StopLoss: 95.0, TakeProfit: 102.0})
	require.NotNil(t, g.OpenTrade)

	g.UpdatePerformance(103.0)

	assert.Nil(t, g.OpenTrade)
	assert.Equal(t, 12000.0, g.PhantomEquity, "pnl realized at the target, not the traded-through price")
	assert.Equal(t, 1, g.WinStreak)
	assert.Equal(t, 0, g.LossStreak)
	assert.Len(t, g.TradeLog, 1)
	assert.False(t, g.Untested())
}

// TestUpdatePerformance_StopLossHit tests realized loss accounting and streak reset
func TestUpdatePerformance_StopLossHit(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionBoth, nil, testBaseline, testScale)
	g.WinStreak = 3

	g.OpenVirtual(100.0, Signal{Action: types.ActionBuy, StopLoss: 99.0, TakeProfit: 110.0})
	g.UpdatePerformance(98.5)

	assert.Nil(t, g.OpenTrade)
	assert.Equal(t, 9000.0, g.PhantomEquity)
	assert.Equal(t, 0, g.WinStreak, "loss resets the win streak")
	assert.Equal(t, 1, g.LossStreak)
}

// TestUpdatePerformance_ShortSide tests the SELL-side realization arithmetic
func TestUpdatePerformance_ShortSide(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionShort, nil, testBaseline, testScale)
	g.OpenVirtual(100.0, Signal{Action: types.ActionSell, StopLoss: 103.0, TakeProfit: 96.0})

	g.UpdatePerformance(95.0)

	assert.Equal(t, testBaseline+(100.0-96.0)*testScale, g.PhantomEquity)
	assert.Equal(t, 1, g.WinStreak)
}

// TestUpdatePerformance_NoCrossLeavesPositionOpen tests that mark-to-market alone closes nothing
func TestUpdatePerformance_NoCrossLeavesPositionOpen(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionBoth, nil, testBaseline, testScale)
	g.OpenVirtual(100.0, Signal{Action: types.ActionBuy, StopLoss: 90.0, TakeProfit: 120.0})

	g.UpdatePerformance(99.0)

	assert.NotNil(t, g.OpenTrade)
	assert.Equal(t, testBaseline, g.PhantomEquity, "no realization without a cross")
	assert.Empty(t, g.TradeLog)
}

// TestUpdatePerformance_FloatingDrawdown tests that unrealized losses move max drawdown
func TestUpdatePerformance_FloatingDrawdown(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionBoth, nil, testBaseline, testScale)
	g.OpenVirtual(100.0, Signal{Action: types.ActionBuy, StopLoss: 90.0, TakeProfit: 120.0})

	g.UpdatePerformance(95.0)

	// Floating equity 10000 - 5*1000 = 5000 against a 10000 peak.
	assert.InDelta(t, 0.5, g.MaxDrawdown, 1e-9)

	// Recovery never shrinks the recorded maximum.
	g.UpdatePerformance(99.5)
	assert.InDelta(t, 0.5, g.MaxDrawdown, 1e-9)
}

// TestOpenVirtual_NoOpCases tests that holds and already-open positions open nothing
func TestOpenVirtual_NoOpCases(t *testing.T) {
	g := New("g", types.FamilyTrendFollow, types.DirectionBoth, nil, testBaseline, testScale)

	g.OpenVirtual(100.0, Signal{Action: types.ActionHold})
	assert.Nil(t, g.OpenTrade)

	g.OpenVirtual(100.0, Signal{Action: types.ActionBuy, StopLoss: 95, TakeProfit: 105})
	first := g.OpenTrade
	g.OpenVirtual(101.0, Signal{Action: types.ActionSell, StopLoss: 106, TakeProfit: 96})
	assert.Same(t, first, g.OpenTrade, "second signal must not replace the open position")
}

// TestQualityScore_EquityMonotonic tests that more equity means a higher score, all else equal
func TestQualityScore_EquityMonotonic(t *testing.T) {
	tuning := DefaultTuning()
	a := New("a", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)
	b := New("b", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)
	b.PhantomEquity = testBaseline + 2000

	assert.Greater(t, b.QualityScore(nil, tuning), a.QualityScore(nil, tuning))
}

// TestQualityScore_DrawdownPenalty tests that drawdown strictly reduces the score
func TestQualityScore_DrawdownPenalty(t *testing.T) {
	tuning := DefaultTuning()
	clean := New("a", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)
	bruised := New("b", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)
	bruised.MaxDrawdown = 0.5

	assert.Greater(t, clean.QualityScore(nil, tuning), bruised.QualityScore(nil, tuning))
	// 1 + 2*0.5 halves the score exactly.
	assert.InDelta(t, clean.QualityScore(nil, tuning)/2, bruised.QualityScore(nil, tuning), 1e-9)
}

// TestQualityScore_RegimeBoost tests the regime-conditioned boost and penalty
func TestQualityScore_RegimeBoost(t *testing.T) {
	tuning := DefaultTuning()
	ranging := &regime.Report{Trend: regime.TrendRanging}
	bullish := &regime.Report{Trend: regime.TrendBullish}

	reverter := New("mr", types.FamilyMeanRevert, types.DirectionBoth, nil, testBaseline, testScale)
	assert.InDelta(t, testBaseline*tuning.RangeBoost, reverter.QualityScore(ranging, tuning), 1e-9)
	assert.InDelta(t, testBaseline*tuning.MismatchPenalty, reverter.QualityScore(bullish, tuning), 1e-9)

	hawkLong := New("tf", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)
	assert.InDelta(t, testBaseline*tuning.TrendBoost, hawkLong.QualityScore(bullish, tuning), 1e-9)
	assert.InDelta(t, testBaseline*tuning.MismatchPenalty, hawkLong.QualityScore(ranging, tuning), 1e-9)

	// A SHORT-only trend follower gets no boost from a bullish regime.
	hawkShort := New("tfs", types.FamilyTrendFollow, types.DirectionShort, nil, testBaseline, testScale)
	assert.InDelta(t, testBaseline*tuning.MismatchPenalty, hawkShort.QualityScore(bullish, tuning), 1e-9)

	// No regime read: neutral multiplier.
	assert.InDelta(t, testBaseline, hawkLong.QualityScore(nil, tuning), 1e-9)
}

// TestQualityScore_StreakBonusLadder tests the win-streak multiplier thresholds
func TestQualityScore_StreakBonusLadder(t *testing.T) {
	tuning := DefaultTuning()
	g := New("g", types.FamilyTrendFollow, types.DirectionLong, nil, testBaseline, testScale)

	base := g.QualityScore(nil, tuning)

	g.WinStreak = 2
	assert.InDelta(t, base*tuning.StreakBonus2, g.QualityScore(nil, tuning), 1e-9)
	g.WinStreak = 3
	assert.InDelta(t, base*tuning.StreakBonus3, g.QualityScore(nil, tuning), 1e-9)
	g.WinStreak = 7
	assert.InDelta(t, base*tuning.StreakBonus5, g.QualityScore(nil, tuning), 1e-9)
}
