package engine

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/darwin-bot/internal/config"
	"github.com/evoquant/darwin-bot/pkg/data"
	"github.com/evoquant/darwin-bot/pkg/types"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Load()
	cfg.Evolution.SnapshotPath = filepath.Join(t.TempDir(), "population.json")
	return New("TESTUSDT", cfg, nil, rand.New(rand.NewSource(99)))
}

func testWindows(n int) map[string][]types.OHLCV {
	base := make([]types.OHLCV, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range base {
		price := 100.0 * math.Exp(0.0005*float64(i)+0.01*math.Sin(float64(i)/30.0))
		base[i] = types.OHLCV{
			Timestamp: ts.Add(time.Duration(i) * 15 * time.Minute),
			Open:      price, High: price * 1.002, Low: price * 0.998, Close: price,
			Volume: 100,
		}
	}
	return map[string][]types.OHLCV{
		types.TimeframeBase:   base,
		types.TimeframeHigher: data.Resample(base, 4),
		types.TimeframeMacro:  data.Resample(base, 16),
	}
}

// TestCycle_ProducesVerdictAndState tests one full decision cycle
func TestCycle_ProducesVerdictAndState(t *testing.T) {
	eng := testEngine(t)

	res := eng.Cycle(testWindows(400))

	assert.Contains(t, []types.Action{types.ActionHold, types.ActionBuy, types.ActionSell}, res.Action)
	assert.NotEmpty(t, res.Rationale)

	// Population ran an update pass: every member has a cached signal.
	for _, g := range eng.Population().Members() {
		_, ok := eng.Population().CachedSignal(g.Name)
		assert.True(t, ok)
	}
}

// TestCycle_NoData tests the degenerate empty-window case
func TestCycle_NoData(t *testing.T) {
	eng := testEngine(t)

	res := eng.Cycle(map[string][]types.OHLCV{})

	assert.Equal(t, types.ActionHold, res.Action)
}

// TestCycle_EvolutionInterval tests that generations advance only when the interval elapses
func TestCycle_EvolutionInterval(t *testing.T) {
	eng := testEngine(t)
	windows := testWindows(400)

	clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return clock }
	eng.lastEvolution = clock

	eng.Cycle(windows)
	require.Equal(t, 0, eng.Population().Generation(), "interval not yet elapsed")

	clock = clock.Add(25 * time.Hour)
	eng.Cycle(windows)
	assert.Equal(t, 1, eng.Population().Generation())

	// The timer resets after an evolution pass.
	clock = clock.Add(time.Hour)
	eng.Cycle(windows)
	assert.Equal(t, 1, eng.Population().Generation())
}

// TestCycle_DecisionsAccumulateForExport tests the session report feed
func TestCycle_DecisionsAccumulateForExport(t *testing.T) {
	eng := testEngine(t)
	windows := testWindows(400)

	eng.Cycle(windows)
	eng.Cycle(windows)

	members := eng.Population().Members()
	scores := map[string]float64{}
	for _, g := range members {
		scores[g.Name] = eng.Population().Score(g.Name)
	}

	path := filepath.Join(t.TempDir(), "session.xlsx")
	require.NoError(t, eng.ExcelReporter().WriteWorkbook(path, members, scores))
	assert.FileExists(t, path)
}
