package neat

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// ErrCompleteExtinction is returned when every species has been removed and
// reset_on_extinction is off.
var ErrCompleteExtinction = errors.New("all species extinct")

// FitnessFunc scores one genome. Implementations typically build a phenotype
// network from the genome and run it against the task. Returning an error
// marks the genome as failed for the generation without aborting the run.
type FitnessFunc func(g *Genome) (float64, error)

// GenerationStats summarizes one completed generation.
type GenerationStats struct {
	Generation    int
	BestFitness   float64
	MeanFitness   float64
	MedianFitness float64
	StdevFitness  float64
	NumSpecies    int
	EvalFailures  int

	// BestNodes and BestConnections give the size of the generation's best
	// genome, a cheap proxy for structural growth over a run.
	BestNodes       int
	BestConnections int

	// Solved is set when the best fitness reached the configured threshold.
	Solved bool
}

// Population is the top-level evolutionary state: the current genomes, the
// living species, the innovation tracker and the champion seen so far.
type Population struct {
	Config     *Config
	Genomes    []*Genome
	Species    *SpeciesSet
	Generation int

	// Best is a copy of the highest-fitness genome ever evaluated.
	Best *Genome

	Tracker *InnovationTracker

	// Seed anchors every random draw. Each generation derives its own RNG
	// from (Seed, Generation), so a population restored from a snapshot
	// continues exactly as the original run would have.
	Seed int64

	nextGenomeID int
	reproducer   *Reproducer
}

// NewPopulation validates the configuration and seeds generation zero.
func NewPopulation(cfg *Config, seed int64) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Population{
		Config:  cfg,
		Species: NewSpeciesSet(),
		Tracker: NewInnovationTracker(0),
		Seed:    seed,
	}
	p.reproducer = NewReproducer(cfg, p.Tracker)
	p.Genomes = p.spawn(p.generationRNG())
	return p, nil
}

// generationRNG derives the current generation's RNG from the run seed.
func (p *Population) generationRNG() *rand.Rand {
	s := uint64(p.Seed) + uint64(p.Generation)*0x9E3779B97F4A7C15
	return rand.New(rand.NewSource(int64(s)))
}

func (p *Population) nextID() int {
	p.nextGenomeID++
	return p.nextGenomeID
}

// spawn creates a fresh set of pop_size minimal genomes. Node ids are laid
// out as inputs 0..I-1, outputs I..I+O-1, then the bias node, identically in
// every genome, so the initial population shares all historical markings.
func (p *Population) spawn(rng *rand.Rand) []*Genome {
	gCfg := &p.Config.Genome
	genomes := make([]*Genome, 0, p.Config.Neat.PopSize)
	for i := 0; i < p.Config.Neat.PopSize; i++ {
		g := NewGenome(p.nextID())
		for j := 0; j < gCfg.NumInputs; j++ {
			g.AddNode(InputNode, gCfg.ActivationDefault, 0, gCfg.TimeConstant)
		}
		for j := 0; j < gCfg.NumOutputs; j++ {
			g.AddNode(OutputNode, gCfg.ActivationDefault, 0, gCfg.TimeConstant)
		}
		bias := g.AddNode(BiasNode, gCfg.ActivationDefault, gCfg.BiasValue, gCfg.TimeConstant)

		if gCfg.InitialConnection == "full" {
			outputs := g.NodeIDsByRole(OutputNode)
			sources := g.NodeIDsByRole(InputNode)
			sources = append(sources, bias.ID)
			for _, from := range sources {
				for _, to := range outputs {
					w := clamp(rng.NormFloat64()*gCfg.WeightInitStdev+gCfg.WeightInitMean,
						gCfg.WeightMinValue, gCfg.WeightMaxValue)
					marking := p.Tracker.ConnectionMarking(from, to)
					g.AddConnection(from, to, w, marking)
				}
			}
		}
		genomes = append(genomes, g)
	}
	return genomes
}

// reseed repopulates after a complete extinction. When a champion exists the
// new population is bred from it: one verbatim copy plus mutated copies.
// Without a champion the population restarts from minimal genomes.
func (p *Population) reseed(rng *rand.Rand) []*Genome {
	if p.Best == nil {
		return p.spawn(rng)
	}

	mutator := NewMutator(&p.Config.Genome, p.Tracker)
	genomes := make([]*Genome, 0, p.Config.Neat.PopSize)
	genomes = append(genomes, p.Best.Copy(p.nextID()))
	for len(genomes) < p.Config.Neat.PopSize {
		g := p.Best.Copy(p.nextID())
		mutator.Mutate(g, rng)
		genomes = append(genomes, g)
	}
	return genomes
}

// RunGeneration evaluates the population, updates the champion, speciates,
// applies stagnation and produces the next generation. It returns the stats
// of the generation just evaluated. When the fitness threshold is reached
// the returned stats have Solved set and the population is left intact so
// the champion can be extracted.
func (p *Population) RunGeneration(eval FitnessFunc) (*GenerationStats, error) {
	stats := &GenerationStats{Generation: p.Generation}
	stats.EvalFailures = p.evaluate(eval)

	fitnesses := make([]float64, len(p.Genomes))
	var best *Genome
	for i, g := range p.Genomes {
		fitnesses[i] = g.Fitness
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	stats.BestFitness = best.Fitness
	stats.MeanFitness = Mean(fitnesses)
	stats.MedianFitness = Median(fitnesses)
	stats.StdevFitness = Stdev(fitnesses)
	stats.BestNodes = len(best.Nodes)
	stats.BestConnections = len(best.Connections)

	if p.Best == nil || best.Fitness > p.Best.Fitness {
		p.Best = best.Copy(best.ID)
		p.Best.Fitness = best.Fitness
	}

	p.Species.Speciate(p.Genomes, p.Generation, &p.Config.Genome, &p.Config.Species)
	stats.NumSpecies = len(p.Species.Species)

	if !p.Config.Neat.NoFitnessTermination && best.Fitness >= p.Config.Neat.FitnessThreshold {
		stats.Solved = true
		return stats, nil
	}

	p.Species.UpdateStagnation()
	p.Species.PruneStagnant(p.Config.Stagnation.MaxStagnation, best.SpeciesID)

	rng := p.generationRNG()
	next := p.reproducer.Reproduce(p.Species, best, p.nextID, rng)
	if next == nil {
		if !p.Config.Neat.ResetOnExtinction {
			return stats, ErrCompleteExtinction
		}
		next = p.reseed(rng)
	}
	p.Genomes = next

	p.Tracker.Reset()
	p.Generation++
	return stats, nil
}

// evaluate scores every genome through a bounded worker pool. Each worker
// writes only its own genome's fitness, so no locking is needed. A genome
// whose evaluation fails is scored just below the generation's worst
// successful fitness, which keeps the failure at the bottom of the ranking
// without leaking a non-finite value into the fitness-sharing sums or the
// roulette weights. The failure count is returned for the stats.
func (p *Population) evaluate(eval FitnessFunc) int {
	workers := p.Config.Neat.EvalWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var failures sync.Map
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fitness, err := eval(p.Genomes[i])
				if err != nil {
					failures.Store(i, err)
					continue
				}
				p.Genomes[i].Fitness = fitness
			}
		}()
	}
	for i := range p.Genomes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	lowest := math.Inf(1)
	for i, g := range p.Genomes {
		if _, failed := failures.Load(i); failed {
			continue
		}
		if g.Fitness < lowest {
			lowest = g.Fitness
		}
	}
	sentinel := 0.0
	if !math.IsInf(lowest, 1) {
		sentinel = lowest - 1
	}

	count := 0
	failures.Range(func(key, _ any) bool {
		p.Genomes[key.(int)].Fitness = sentinel
		count++
		return true
	})
	return count
}

// Run drives generations until the fitness threshold is met or the
// generation limit is exhausted. The callback, when non-nil, receives each
// generation's stats as they complete. Returns the champion genome.
func (p *Population) Run(eval FitnessFunc, maxGenerations int, report func(*GenerationStats)) (*Genome, error) {
	for i := 0; i < maxGenerations; i++ {
		stats, err := p.RunGeneration(eval)
		if err != nil {
			return p.Best, err
		}
		if report != nil {
			report(stats)
		}
		if stats.Solved {
			break
		}
	}
	return p.Best, nil
}
