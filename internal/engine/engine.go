package engine

import (
	"math/rand"
	"time"

	"github.com/evoquant/darwin-bot/internal/config"
	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/internal/jury"
	"github.com/evoquant/darwin-bot/internal/logger"
	"github.com/evoquant/darwin-bot/internal/monitoring"
	"github.com/evoquant/darwin-bot/internal/population"
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/data"
	"github.com/evoquant/darwin-bot/pkg/reporting"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// Engine runs the full evaluation cycle for one symbol: regime analysis,
// population update, jury verdict, and periodic evolution. Single-threaded;
// one Cycle call at a time.
type Engine struct {
	symbol   string
	cfg      *config.Config
	log      *logger.Logger
	rng      *rand.Rand
	analyzer *regime.Analyzer
	pop      *population.Population
	jury     *jury.Jury
	console  *reporting.ConsoleReporter
	excel    *reporting.ExcelReporter

	lastEvolution time.Time
	lastReport    *regime.Report
	lastResult    jury.Result
	now           func() time.Time
}

// New wires an engine from the loaded configuration. The random source
// drives both mutation and scout selection; seed it for reproducible runs.
func New(symbol string, cfg *config.Config, log *logger.Logger, rng *rand.Rand) *Engine {
	popCfg := population.Config{
		Cap:                cfg.Population.Cap,
		EliteFraction:      cfg.Population.EliteFraction,
		MinElites:          cfg.Population.MinElites,
		BaselineEquity:     cfg.Population.BaselineEquity,
		NotionalScale:      cfg.Population.NotionalScale,
		FreshnessThreshold: cfg.Evolution.FreshnessThreshold,
		DecayFactorRecent:  cfg.Evolution.DecayFactorRecent,
		DecayFactorStale:   cfg.Evolution.DecayFactorStale,
		Tuning: genotype.Tuning{
			TrendBoost:      cfg.Scoring.TrendBoost,
			RangeBoost:      cfg.Scoring.RangeBoost,
			MismatchPenalty: cfg.Scoring.MismatchPenalty,
			StreakBonus2:    cfg.Scoring.StreakBonus2,
			StreakBonus3:    cfg.Scoring.StreakBonus3,
			StreakBonus5:    cfg.Scoring.StreakBonus5,
		},
	}

	store := population.NewStore(cfg.Evolution.SnapshotPath)
	pop := population.New(popCfg, store, log)

	juryCfg := jury.Config{
		PanelSize:          cfg.Jury.PanelSize,
		ScoutProbability:   cfg.Jury.ScoutProbability,
		ConfidenceFloor:    cfg.Jury.ConfidenceFloor,
		LoneVoteConfidence: cfg.Jury.LoneVoteConfidence,
	}

	return &Engine{
		symbol:        symbol,
		cfg:           cfg,
		log:           log,
		rng:           rng,
		analyzer:      regime.NewAnalyzer(cfg.Regime.TrendingHurst, cfg.Regime.RevertingHurst, cfg.Regime.EntropyBins),
		pop:           pop,
		jury:          jury.New(juryCfg, rng, log),
		console:       reporting.NewConsoleReporter(),
		excel:         reporting.NewExcelReporter(symbol),
		lastEvolution: time.Now(),
		now:           time.Now,
	}
}

// Population exposes the engine's population for reporting and tooling.
func (e *Engine) Population() *population.Population {
	return e.pop
}

// ExcelReporter exposes the session decision history for final export.
func (e *Engine) ExcelReporter() *reporting.ExcelReporter {
	return e.excel
}

// Cycle evaluates one set of multi-timeframe candle windows and returns the
// jury verdict. Component failures degrade to conservative defaults rather
// than aborting the cycle.
func (e *Engine) Cycle(windows map[string][]types.OHLCV) jury.Result {
	window := windows[types.TimeframeBase]
	if len(window) == 0 {
		if e.log != nil {
			e.log.LogWarning("CYCLE", "no base-timeframe candles, holding")
		}
		monitoring.RecordError("insufficient_data")
		return jury.Result{Action: types.ActionHold, VoteTally: map[types.Action]int{}, Rationale: "no market data"}
	}
	price := window[len(window)-1].Close

	report := e.analyzer.Analyze(windows)
	monitoring.UpdateRegime(e.symbol, report.Hurst, report.Entropy, report.AlignmentScore)

	ind := data.Snapshot(window)
	ctx := &genotype.Context{Windows: windows}

	if err := e.pop.Update(window, ind, ctx, report); err != nil {
		if e.log != nil {
			e.log.LogError("POPULATION", err)
		}
		monitoring.RecordError("persistence")
	}

	result := e.jury.Decide(e.pop, report, window, ind, ctx)

	monitoring.RecordDecision(e.symbol, result.Action.String(), result.Confidence)
	if leader := e.pop.Leader(); leader != nil {
		monitoring.UpdatePopulation(e.symbol, len(e.pop.Members()), leader.Name, leader.PhantomEquity)
	}
	if e.log != nil {
		e.log.LogDecision(result.Action.String(), result.Confidence, result.Rationale)
	}

	e.excel.Record(reporting.DecisionRecord{
		Timestamp: e.now().UTC(),
		Price:     price,
		Report:    report,
		Result:    result,
	})

	e.lastReport = report
	e.lastResult = result

	e.maybeEvolve()
	return result
}

// maybeEvolve runs an evolution pass when the configured interval has
// elapsed since the last one.
func (e *Engine) maybeEvolve() {
	if e.now().Sub(e.lastEvolution) < e.cfg.Evolution.Interval {
		return
	}
	e.lastEvolution = e.now()

	if e.log != nil {
		e.log.Info("evolution interval elapsed, running generation %d", e.pop.Generation()+1)
	}
	e.pop.Evolve(e.rng)
	monitoring.RecordGeneration(e.symbol)
}

// PrintStatus renders the current leaderboard to the console.
func (e *Engine) PrintStatus() {
	members := e.pop.Members()
	scores := make(map[string]float64, len(members))
	for _, g := range members {
		scores[g.Name] = e.pop.Score(g.Name)
	}
	e.console.PrintLeaderboard(e.symbol, members, scores, e.pop.Generation())
}

// PrintLastDecision renders the most recent jury verdict to the console.
func (e *Engine) PrintLastDecision() {
	e.console.PrintDecision(e.symbol, e.lastReport, e.lastResult)
}
