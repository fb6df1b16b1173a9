package genotype

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/darwin-bot/pkg/types"
)

// TestParams_Get tests the fallback lookup
func TestParams_Get(t *testing.T) {
	p := Params{"lookback": 20}
	assert.Equal(t, 20.0, p.Get("lookback", 14))
	assert.Equal(t, 14.0, p.Get("missing", 14))
}

// TestParams_Mutated_StaysWithinBounds tests that repeated mutation never escapes the clamps
func TestParams_Mutated_StaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := Params{
		"lookback":    20,
		"risk_reward": 2.0,
		"rsi_high":    70,
		"stop_pad":    0.002,
	}

	for i := 0; i < 500; i++ {
		p = p.Mutated(rng)
		assert.GreaterOrEqual(t, p["lookback"], 5.0)
		assert.LessOrEqual(t, p["lookback"], 200.0)
		assert.GreaterOrEqual(t, p["risk_reward"], 0.5)
		assert.LessOrEqual(t, p["risk_reward"], 5.0)
		assert.GreaterOrEqual(t, p["rsi_high"], 50.0)
		assert.LessOrEqual(t, p["rsi_high"], 95.0)
		assert.GreaterOrEqual(t, p["stop_pad"], 0.0005)
		assert.LessOrEqual(t, p["stop_pad"], 0.01)
	}
}

// TestParams_Mutated_LookbackStaysIntegral tests that period parameters mutate in whole steps
func TestParams_Mutated_LookbackStaysIntegral(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := Params{"lookback": 20, "ma_period": 50}

	for i := 0; i < 100; i++ {
		p = p.Mutated(rng)
		assert.Equal(t, math.Trunc(p["lookback"]), p["lookback"])
		assert.Equal(t, math.Trunc(p["ma_period"]), p["ma_period"])
	}
}

// TestParams_Mutated_UnknownKeysCarryOver tests that unrecognized parameters survive untouched
func TestParams_Mutated_UnknownKeysCarryOver(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := Params{"legacy_knob": 7.5}

	out := p.Mutated(rng)
	assert.Equal(t, 7.5, out["legacy_knob"])
}

// TestParams_Mutated_DoesNotAliasParent tests that mutation copies rather than shares storage
func TestParams_Mutated_DoesNotAliasParent(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	parent := Params{"risk_reward": 2.0}

	child := parent.Mutated(rng)
	child["risk_reward"] = 99

	assert.Equal(t, 2.0, parent["risk_reward"])
}

// TestCloneWithMutatedParams_FreshAccounting tests that offspring start with clean phantom state
func TestCloneWithMutatedParams_FreshAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	parent := New("parent", types.FamilyMomentum, types.DirectionLong,
		Params{"lookback": 14, "rsi_mid": 50}, testBaseline, testScale)
	parent.PhantomEquity = 15000
	parent.WinStreak = 4
	parent.TradeLog = []ClosedTrade{{PnL: 5.0, Action: types.ActionBuy}}

	child := parent.CloneWithMutatedParams("child", rng, testBaseline)

	require.Equal(t, "child", child.Name)
	assert.Equal(t, parent.Family, child.Family)
	assert.Equal(t, parent.Direction, child.Direction)
	assert.Equal(t, testBaseline, child.PhantomEquity)
	assert.Equal(t, 0, child.WinStreak)
	assert.Empty(t, child.TradeLog)
	assert.True(t, child.Untested())
}
