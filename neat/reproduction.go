package neat

import (
	"math"
	"math/rand"
)

// Reproducer builds the next generation from a speciated, evaluated
// population: fitness sharing sets per-species offspring quotas, the single
// overall best genome survives unchanged, and every other slot is filled by
// crossover within (occasionally across) species followed by mutation.
type Reproducer struct {
	cfg     *Config
	mutator *Mutator
}

// NewReproducer creates a reproducer sharing the population's innovation
// tracker through its mutator.
func NewReproducer(cfg *Config, tracker *InnovationTracker) *Reproducer {
	return &Reproducer{cfg: cfg, mutator: NewMutator(&cfg.Genome, tracker)}
}

// Reproduce returns the next generation's genomes. The best genome is copied
// into the first slot verbatim; the remaining popSize-1 slots are divided
// among the species in proportion to their adjusted fitness. Returns nil
// when no species survive, which the caller treats as extinction.
func (r *Reproducer) Reproduce(ss *SpeciesSet, best *Genome, nextID func() int, rng *rand.Rand) []*Genome {
	species := ss.Sorted()
	if len(species) == 0 {
		return nil
	}

	counts := r.offspringCounts(species, r.cfg.Neat.PopSize-1)

	next := make([]*Genome, 0, r.cfg.Neat.PopSize)
	elite := best.Copy(nextID())
	next = append(next, elite)

	for i, s := range species {
		for j := 0; j < counts[i]; j++ {
			p1 := rouletteSelect(s.Members, rng)
			p2 := r.secondParent(species, s, rng)
			child := Crossover(nextID(), p1, p2, &r.cfg.Reproduction, rng)
			r.mutator.Mutate(child, rng)
			next = append(next, child)
		}
	}
	return next
}

// offspringCounts splits the available slots among the species in proportion
// to adjusted fitness. Adjusted fitness is the sum of each member's fitness
// divided by the species size, so large species do not crowd out small ones.
// Rounding leftovers go to the species with the highest adjusted fitness,
// keeping the split deterministic.
func (r *Reproducer) offspringCounts(species []*Species, slots int) []int {
	shares := make([]float64, len(species))
	minShare := math.Inf(1)
	for i, s := range species {
		sum := 0.0
		for _, g := range s.Members {
			sum += g.Fitness
		}
		s.AdjustedFitness = sum / float64(len(s.Members))
		shares[i] = s.AdjustedFitness
		if shares[i] < minShare {
			minShare = shares[i]
		}
	}

	// Shift shares so negative fitness cannot invert the proportions.
	total := 0.0
	for i := range shares {
		shares[i] -= minShare
		total += shares[i]
	}

	counts := make([]int, len(species))
	assigned := 0
	for i := range species {
		if total > 0 {
			counts[i] = int(math.Round(shares[i] / total * float64(slots)))
		} else {
			counts[i] = slots / len(species)
		}
		assigned += counts[i]
	}

	// Give the remainder (or take the overshoot) to the fittest species.
	richest := 0
	for i, s := range species {
		if s.AdjustedFitness > species[richest].AdjustedFitness {
			richest = i
		}
	}
	counts[richest] += slots - assigned
	if counts[richest] < 0 {
		counts[richest] = 0
	}
	return counts
}

// secondParent draws a mate for crossover: usually from the same species,
// occasionally from another species entirely.
func (r *Reproducer) secondParent(species []*Species, own *Species, rng *rand.Rand) *Genome {
	if len(species) > 1 && rng.Float64() < r.cfg.Reproduction.InterspeciesMatingRate {
		other := species[rng.Intn(len(species))]
		if other.ID != own.ID {
			return rouletteSelect(other.Members, rng)
		}
	}
	return rouletteSelect(own.Members, rng)
}

// rouletteSelect picks a genome with probability proportional to fitness.
// Fitness values are shifted so the minimum weighs zero; if every weight is
// zero the pick is uniform. The members slice must be non-empty.
func rouletteSelect(members []*Genome, rng *rand.Rand) *Genome {
	if len(members) == 1 {
		return members[0]
	}

	minFit := math.Inf(1)
	for _, g := range members {
		if g.Fitness < minFit {
			minFit = g.Fitness
		}
	}
	total := 0.0
	for _, g := range members {
		total += g.Fitness - minFit
	}
	// Covers all-equal fitness and the NaN a non-finite fitness produces.
	if !(total > 0) || math.IsInf(total, 1) {
		return members[rng.Intn(len(members))]
	}

	pick := rng.Float64() * total
	for _, g := range members {
		pick -= g.Fitness - minFit
		if pick <= 0 {
			return g
		}
	}
	return members[len(members)-1]
}
