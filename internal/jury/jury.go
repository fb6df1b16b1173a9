package jury

import (
	"fmt"
	"math/rand"

	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/internal/logger"
	"github.com/evoquant/darwin-bot/internal/regime"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// Pool is the view of the ranked population the jury needs: members in
// rank order, cached quality scores, and the signals computed during the
// same cycle's update pass.
type Pool interface {
	Members() []*genotype.Genotype
	Score(name string) float64
	CachedSignal(name string) (genotype.Signal, bool)
}

// Result is the final arbitrated decision for one cycle. Ephemeral;
// recomputed every cycle and never persisted.
type Result struct {
	Action        types.Action
	Confidence    float64
	SelectedPanel []string
	VoteTally     map[types.Action]int
	SuggestedSL   float64
	SuggestedTP   float64
	Rationale     string
}

// Config holds the jury protocol parameters.
type Config struct {
	PanelSize          int
	ScoutProbability   float64
	ConfidenceFloor    float64
	LoneVoteConfidence float64
}

// Jury samples a diversity-constrained panel from the ranked population,
// tallies votes, and resolves ties into one actionable decision.
type Jury struct {
	cfg Config
	rng *rand.Rand
	log *logger.Logger
}

// New creates a jury. The random source drives scout substitution and must
// be seeded by the caller for reproducibility.
func New(cfg Config, rng *rand.Rand, log *logger.Logger) *Jury {
	return &Jury{cfg: cfg, rng: rng, log: log}
}

// Decide assembles the panel, polls every member, and applies the
// tie-break ladder. The window/indicator/context arguments are only used
// for panelists whose signal was not cached by this cycle's update pass.
func (j *Jury) Decide(pool Pool, report *regime.Report, window []types.OHLCV, ind types.IndicatorMap, ctx *genotype.Context) Result {
	panel := j.assemblePanel(pool, report)
	if len(panel) == 0 {
		return Result{
			Action:    types.ActionHold,
			VoteTally: map[types.Action]int{},
			Rationale: "no eligible panelists",
		}
	}

	votes := make(map[string]genotype.Signal, len(panel))
	tally := map[types.Action]int{}
	names := make([]string, 0, len(panel))
	for _, g := range panel {
		sig, ok := pool.CachedSignal(g.Name)
		if !ok {
			sig = g.GenerateSignal(window, ind, ctx)
		}
		votes[g.Name] = sig
		tally[sig.Action]++
		names = append(names, g.Name)
	}

	result := j.resolve(panel, votes, tally)
	result.SelectedPanel = names
	result.VoteTally = tally
	return result
}

// assemblePanel builds the diversity-constrained panel: the ranked
// candidate list is filtered by the regime family restrictions, each known
// family in priority order contributes its first eligible member, and only
// then do remaining seats fill by raw rank. Scarce candidates fall back to
// the top-N by rank outright. The scout rule may then swap in an untested
// genotype so new mutations are not permanently starved of evaluation.
func (j *Jury) assemblePanel(pool Pool, report *regime.Report) []*genotype.Genotype {
	ranked := pool.Members()

	var candidates []*genotype.Genotype
	if report == nil || report.Allowed.All {
		candidates = ranked
	} else {
		for _, g := range ranked {
			if report.Allowed.Permits(g.Family, g.Direction) {
				candidates = append(candidates, g)
			}
		}
	}
	if len(candidates) < j.cfg.PanelSize {
		candidates = ranked
	}

	selected := make(map[string]bool, j.cfg.PanelSize)
	var panel []*genotype.Genotype

	for _, family := range types.Families {
		if len(panel) >= j.cfg.PanelSize {
			break
		}
		for _, g := range candidates {
			if g.Family == family && !selected[g.Name] {
				panel = append(panel, g)
				selected[g.Name] = true
				break
			}
		}
	}
	for _, g := range candidates {
		if len(panel) >= j.cfg.PanelSize {
			break
		}
		if !selected[g.Name] {
			panel = append(panel, g)
			selected[g.Name] = true
		}
	}

	j.maybeSeatScout(pool, panel, selected)
	return panel
}

// maybeSeatScout replaces the lowest-scoring panelist with a random
// untested genotype with the configured probability.
func (j *Jury) maybeSeatScout(pool Pool, panel []*genotype.Genotype, selected map[string]bool) {
	if len(panel) == 0 || j.rng.Float64() >= j.cfg.ScoutProbability {
		return
	}

	var untested []*genotype.Genotype
	for _, g := range pool.Members() {
		if g.Untested() && !selected[g.Name] {
			untested = append(untested, g)
		}
	}
	if len(untested) == 0 {
		return
	}
	scout := untested[j.rng.Intn(len(untested))]

	lowest := 0
	for i := 1; i < len(panel); i++ {
		if pool.Score(panel[i].Name) < pool.Score(panel[lowest].Name) {
			lowest = i
		}
	}

	if j.log != nil {
		j.log.Info("scout protocol: seating untested %q over %q", scout.Name, panel[lowest].Name)
	}
	delete(selected, panel[lowest].Name)
	panel[lowest] = scout
	selected[scout.Name] = true
}

// resolve applies the tie-break ladder, top rung first:
// unanimity, strict majority, lone signal, hung jury.
func (j *Jury) resolve(panel []*genotype.Genotype, votes map[string]genotype.Signal, tally map[types.Action]int) Result {
	total := len(panel)
	buys := tally[types.ActionBuy]
	sells := tally[types.ActionSell]

	// Rung 1: unanimity.
	for _, action := range []types.Action{types.ActionBuy, types.ActionSell, types.ActionHold} {
		if tally[action] == total {
			res := Result{
				Action:     action,
				Confidence: 1.0,
				Rationale:  fmt.Sprintf("unanimous %s verdict (panel of %d)", action, total),
			}
			j.attachLevels(&res, votes)
			return res
		}
	}

	// Rung 2: strict directional majority with at least 2 votes.
	winner, loser := types.ActionBuy, types.ActionSell
	winVotes, loseVotes := buys, sells
	if sells > buys {
		winner, loser = types.ActionSell, types.ActionBuy
		winVotes, loseVotes = sells, buys
	}
	if winVotes >= 2 && winVotes > loseVotes {
		frac := float64(winVotes) / float64(total)
		res := Result{
			Action:     winner,
			Confidence: j.cfg.ConfidenceFloor + (1.0-j.cfg.ConfidenceFloor)*frac,
			Rationale: fmt.Sprintf("majority verdict: %d %s vs %d %s (panel of %d)",
				winVotes, winner, loseVotes, loser, total),
		}
		j.attachLevels(&res, votes)
		return res
	}

	// Rung 3: a lone directional voice with zero opposition.
	if winVotes == 1 && loseVotes == 0 {
		res := Result{
			Action:     winner,
			Confidence: j.cfg.LoneVoteConfidence,
			Rationale:  fmt.Sprintf("lone %s signal, no opposition (panel of %d)", winner, total),
		}
		j.attachLevels(&res, votes)
		return res
	}

	// Rung 4: hung jury.
	return Result{
		Action:    types.ActionHold,
		Rationale: fmt.Sprintf("hung jury: %d BUY vs %d SELL (panel of %d)", buys, sells, total),
	}
}

// attachLevels copies the stop and target from the single
// highest-confidence voter on the winning side, preserving that voter's
// risk geometry instead of averaging across the panel.
func (j *Jury) attachLevels(res *Result, votes map[string]genotype.Signal) {
	if res.Action == types.ActionHold {
		return
	}
	best := -1.0
	for _, sig := range votes {
		if sig.Action == res.Action && sig.Confidence > best {
			best = sig.Confidence
			res.SuggestedSL = sig.StopLoss
			res.SuggestedTP = sig.TakeProfit
		}
	}
}
