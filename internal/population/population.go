package population

import (
	"sort"
	"time"

	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/internal/logger"
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// Config holds the evolutionary parameters of the population.
type Config struct {
	Cap                int
	EliteFraction      float64
	MinElites          int
	BaselineEquity     float64
	NotionalScale      float64
	FreshnessThreshold time.Duration
	DecayFactorRecent  float64
	DecayFactorStale   float64
	Tuning             genotype.Tuning
}

// Population is the ordered collection of genotypes plus the cycle caches.
// Order is last computed quality rank, descending. Owned exclusively by the
// engine process; the snapshot is the only durable representation.
type Population struct {
	cfg     Config
	store   *Store
	log     *logger.Logger
	members []*genotype.Genotype

	// Cycle caches, rebuilt by every Update pass.
	scores  map[string]float64
	signals map[string]genotype.Signal

	generation int
}

// New creates a population from the persisted snapshot, falling back to the
// canonical seeds when no usable snapshot exists. The store may be nil for
// a purely in-memory population.
func New(cfg Config, store *Store, log *logger.Logger) *Population {
	p := &Population{
		cfg:     cfg,
		store:   store,
		log:     log,
		scores:  map[string]float64{},
		signals: map[string]genotype.Signal{},
	}
	p.restore()
	return p
}

// restore loads the snapshot; any failure degrades to the seed population.
func (p *Population) restore() {
	p.members = nil

	if p.store != nil {
		snap, err := p.store.Load()
		if err != nil {
			p.warn("Snapshot Load", "falling back to seed population: %v", err)
		} else if snap != nil {
			p.members = p.fromSnapshot(snap)
		}
	}

	if len(p.members) == 0 {
		p.members = genotype.SeedPopulation(p.cfg.BaselineEquity, p.cfg.NotionalScale)
	}
}

// fromSnapshot rebuilds genotypes from persisted entries. Entries whose
// family no longer maps to a known genotype type are skipped with a logged
// warning; stale snapshots have their equity spread compressed toward the
// baseline so old dominance does not carry into a new session.
func (p *Population) fromSnapshot(snap *Snapshot) []*genotype.Genotype {
	decay := p.cfg.DecayFactorRecent
	if time.Since(snap.Timestamp) > p.cfg.FreshnessThreshold {
		decay = p.cfg.DecayFactorStale
		p.info("stale snapshot (%s old), decaying stored performance by %.2f",
			time.Since(snap.Timestamp).Round(time.Minute), decay)
	}

	var out []*genotype.Genotype
	for _, entry := range snap.Population {
		family, ok := types.ParseFamily(entry.Family)
		if !ok {
			p.warn("Snapshot Load", "skipping %q: unknown genotype family %q", entry.Name, entry.Family)
			continue
		}
		dir, ok := types.ParseDirection(entry.Direction)
		if !ok {
			p.warn("Snapshot Load", "skipping %q: unknown direction %q", entry.Name, entry.Direction)
			continue
		}

		g := genotype.New(entry.Name, family, dir, genotype.Params(entry.Parameters),
			p.cfg.BaselineEquity, p.cfg.NotionalScale)

		base := p.cfg.BaselineEquity
		g.PhantomEquity = base + (entry.Metrics.Equity-base)*decay
		g.PeakEquity = base + (entry.Metrics.Peak-base)*decay
		if g.PeakEquity < g.PhantomEquity {
			g.PeakEquity = g.PhantomEquity
		}
		g.MaxDrawdown = clampUnit(entry.Metrics.Drawdown)
		g.WinStreak = entry.Metrics.WinStreak
		g.LossStreak = entry.Metrics.LossStreak

		out = append(out, g)
	}
	return out
}

// Update runs one shadow-trading cycle: mark every genotype to market, poll
// signals, open paper positions for flat directional genotypes, re-rank by
// regime-conditioned quality, and persist the snapshot. Signals are cached
// so the jury polls the same values within this decision cycle.
func (p *Population) Update(window []types.OHLCV, ind types.IndicatorMap, ctx *genotype.Context, report *regime.Report) error {
	if len(window) == 0 {
		return nil
	}
	price := window[len(window)-1].Close

	p.signals = make(map[string]genotype.Signal, len(p.members))
	for _, g := range p.members {
		g.UpdatePerformance(price)

		sig := g.GenerateSignal(window, ind, ctx)
		p.signals[g.Name] = sig
		if g.OpenTrade == nil {
			g.OpenVirtual(price, sig)
		}
	}

	p.rank(report)
	return p.persist()
}

// rank sorts members by quality score descending and refreshes the score cache.
func (p *Population) rank(report *regime.Report) {
	p.scores = make(map[string]float64, len(p.members))
	for _, g := range p.members {
		p.scores[g.Name] = g.QualityScore(report, p.cfg.Tuning)
	}
	sort.SliceStable(p.members, func(i, j int) bool {
		return p.scores[p.members[i].Name] > p.scores[p.members[j].Name]
	})
}

func (p *Population) persist() error {
	if p.store == nil {
		return nil
	}
	snap := &Snapshot{
		Timestamp:     time.Now().UTC(),
		SchemaVersion: snapshotSchemaVersion,
		Population:    make([]SnapshotEntry, 0, len(p.members)),
	}
	for _, g := range p.members {
		snap.Population = append(snap.Population, SnapshotEntry{
			Name:       g.Name,
			Family:     g.Family.String(),
			Direction:  g.Direction.String(),
			Parameters: g.Params,
			Metrics: SnapshotMetrics{
				Equity:     g.PhantomEquity,
				Peak:       g.PeakEquity,
				Drawdown:   g.MaxDrawdown,
				WinStreak:  g.WinStreak,
				LossStreak: g.LossStreak,
			},
		})
	}
	return p.store.Save(snap)
}

// Members returns the ranked population, best first.
func (p *Population) Members() []*genotype.Genotype {
	return p.members
}

// Leader returns the current top-ranked genotype, or nil when empty.
func (p *Population) Leader() *genotype.Genotype {
	if len(p.members) == 0 {
		return nil
	}
	return p.members[0]
}

// Score returns the cached quality score for a genotype name.
func (p *Population) Score(name string) float64 {
	return p.scores[name]
}

// CachedSignal returns the signal computed for a genotype during this
// cycle's Update pass.
func (p *Population) CachedSignal(name string) (genotype.Signal, bool) {
	sig, ok := p.signals[name]
	return sig, ok
}

// Generation returns how many evolution cycles have run this session.
func (p *Population) Generation() int {
	return p.generation
}

func (p *Population) info(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Info(format, args...)
	}
}

func (p *Population) warn(topic, format string, args ...interface{}) {
	if p.log != nil {
		p.log.LogWarning(topic, format, args...)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
