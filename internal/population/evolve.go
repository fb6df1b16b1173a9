package population

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/evoquant/darwin-bot/internal/genotype"
	"github.com/evoquant/darwin-bot/pkg/types"
)

// Evolve runs one selection/mutation cycle on the ranked population.
// The top eliteFraction (with a minimum absolute count) survive
// unconditionally; the remaining slots are filled with mutated clones of
// parents sampled from the top half. Extinction protection then guarantees
// every protected (family, direction) combination is still represented.
//
// Evolve assumes the population is already ranked by the last Update pass.
func (p *Population) Evolve(rng *rand.Rand) {
	p.generation++

	eliteCount := int(math.Ceil(p.cfg.EliteFraction * float64(len(p.members))))
	if eliteCount < p.cfg.MinElites {
		eliteCount = p.cfg.MinElites
	}
	if eliteCount > len(p.members) {
		eliteCount = len(p.members)
	}

	next := make([]*genotype.Genotype, 0, p.cfg.Cap)
	names := make(map[string]bool, p.cfg.Cap)
	for _, g := range p.members[:eliteCount] {
		next = append(next, g)
		names[g.Name] = true
	}

	// Breed from the top half only; the bottom half is culled.
	parentPool := p.members[:maxInt(1, len(p.members)/2)]
	attempts := 0
	for len(next) < p.cfg.Cap && attempts < p.cfg.Cap*20 {
		attempts++
		parent := parentPool[rng.Intn(len(parentPool))]
		name := fmt.Sprintf("%s_g%dm%d", parent.Name, p.generation, rng.Intn(10000))
		if names[name] {
			continue
		}
		child := parent.CloneWithMutatedParams(name, rng, p.cfg.BaselineEquity)
		next = append(next, child)
		names[name] = true
	}

	p.members = next
	p.protectFromExtinction(names)
	p.info("evolution cycle %d complete: %d members (%d elites)", p.generation, len(p.members), eliteCount)
}

// protectFromExtinction re-seeds any protected (family, direction)
// combination that was lost to culling, displacing the lowest-ranked
// member when the cap is already reached. This prevents the ensemble from
// collapsing to a single family through unlucky culling.
func (p *Population) protectFromExtinction(names map[string]bool) {
	present := map[types.Family]map[types.Direction]bool{}
	for _, g := range p.members {
		if present[g.Family] == nil {
			present[g.Family] = map[types.Direction]bool{}
		}
		present[g.Family][g.Direction] = true
	}

	// Successive re-seeds at cap displace progressively higher ranks so one
	// injection never clobbers another.
	displace := len(p.members) - 1
	for _, spec := range genotype.SeedSpecs {
		if present[spec.Family] != nil && present[spec.Family][spec.Direction] {
			continue
		}

		seedName := spec.Name
		for names[seedName] {
			seedName += "_r"
		}
		seed := genotype.NewSeed(spec, p.cfg.BaselineEquity, p.cfg.NotionalScale)
		seed.Name = seedName

		if len(p.members) >= p.cfg.Cap {
			if displace < 0 {
				displace = 0
			}
			p.members[displace] = seed
			displace--
		} else {
			p.members = append(p.members, seed)
		}
		names[seedName] = true
		if present[spec.Family] == nil {
			present[spec.Family] = map[types.Direction]bool{}
		}
		present[spec.Family][spec.Direction] = true
		p.warn("Extinction Protection", "re-seeded %s %s as %q", spec.Family, spec.Direction, seedName)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
