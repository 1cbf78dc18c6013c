package neat

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig is a small, fast configuration for population tests.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Neat.PopSize = 20
	cfg.Neat.FitnessThreshold = 1e9
	cfg.Neat.EvalWorkers = 4
	return cfg
}

// connCount scores a genome by its enabled connection count, a cheap fully
// deterministic fitness.
func connCount(g *Genome) (float64, error) {
	n := 0.0
	for _, c := range g.Connections {
		if c.Enabled {
			n++
		}
	}
	return n, nil
}

func TestNewPopulationSeedsSharedMarkings(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 1)
	require.NoError(t, err)
	require.Len(t, pop.Genomes, 20)

	want := innovations(pop.Genomes[0])
	require.Len(t, want, 3, "full scheme: 2 inputs + bias, each to 1 output")
	for _, g := range pop.Genomes {
		require.ElementsMatch(t, want, innovations(g),
			"identical initial structure must share historical markings")
		require.NoError(t, g.Validate(true))
	}
}

func TestNewPopulationUnconnected(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "unconnected"
	pop, err := NewPopulation(cfg, 1)
	require.NoError(t, err)
	for _, g := range pop.Genomes {
		require.Empty(t, g.Connections)
		require.Len(t, g.Nodes, 4)
	}
}

func TestNewPopulationRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.PopSize = 0
	_, err := NewPopulation(cfg, 1)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "NEAT.pop_size", cfgErr.Key)
}

func TestRunGenerationAdvances(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 1)
	require.NoError(t, err)

	stats, err := pop.RunGeneration(connCount)
	require.NoError(t, err)
	require.Zero(t, stats.Generation)
	require.Equal(t, 3.0, stats.BestFitness)
	require.GreaterOrEqual(t, stats.NumSpecies, 1)
	require.Zero(t, stats.EvalFailures)

	require.Equal(t, 1, pop.Generation)
	require.Len(t, pop.Genomes, 20, "population size is preserved")
	require.NotNil(t, pop.Best)
}

func TestRunIsDeterministic(t *testing.T) {
	collect := func() []GenerationStats {
		pop, err := NewPopulation(testConfig(), 42)
		require.NoError(t, err)

		out := []GenerationStats{}
		for i := 0; i < 5; i++ {
			stats, err := pop.RunGeneration(connCount)
			require.NoError(t, err)
			out = append(out, *stats)
		}
		return out
	}

	require.Equal(t, collect(), collect(), "same seed must reproduce the run exactly")
}

func TestFitnessThresholdStops(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.FitnessThreshold = 5.0
	pop, err := NewPopulation(cfg, 1)
	require.NoError(t, err)

	stats, err := pop.RunGeneration(func(g *Genome) (float64, error) { return 10.0, nil })
	require.NoError(t, err)
	require.True(t, stats.Solved)
	require.Zero(t, pop.Generation, "a solved population is left intact")
}

func TestNoFitnessTermination(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.FitnessThreshold = 5.0
	cfg.Neat.NoFitnessTermination = true
	pop, err := NewPopulation(cfg, 1)
	require.NoError(t, err)

	stats, err := pop.RunGeneration(func(g *Genome) (float64, error) { return 10.0, nil })
	require.NoError(t, err)
	require.False(t, stats.Solved)
	require.Equal(t, 1, pop.Generation)
}

func TestEvalFailureIsSentinel(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 1)
	require.NoError(t, err)

	failed := pop.Genomes[0]
	failures := pop.evaluate(func(g *Genome) (float64, error) {
		if g.ID == failed.ID {
			return 0, errors.New("boom")
		}
		return connCount(g)
	})
	require.Equal(t, 1, failures)

	lowest := math.Inf(1)
	for _, g := range pop.Genomes[1:] {
		if g.Fitness < lowest {
			lowest = g.Fitness
		}
	}
	require.False(t, math.IsInf(failed.Fitness, -1), "the sentinel stays finite")
	require.Less(t, failed.Fitness, lowest,
		"a failed genome ranks below every successful one")
}

func TestEvalFailureDoesNotSkewGeneration(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 1)
	require.NoError(t, err)

	failID := pop.Genomes[0].ID
	stats, err := pop.RunGeneration(func(g *Genome) (float64, error) {
		if g.ID == failID {
			return 0, errors.New("boom")
		}
		return connCount(g)
	})
	require.NoError(t, err, "a failed genome does not abort the generation")
	require.Equal(t, 1, stats.EvalFailures)
	require.Equal(t, 3.0, stats.BestFitness)
	require.False(t, math.IsInf(stats.MeanFitness, -1),
		"one failure must not drag the mean to -Inf")
	require.False(t, math.IsInf(stats.MedianFitness, -1))
	require.Len(t, pop.Genomes, 20, "the next generation is produced normally")
}

func TestReseedFromElite(t *testing.T) {
	cfg := testConfig()
	pop, err := NewPopulation(cfg, 1)
	require.NoError(t, err)
	_, err = pop.RunGeneration(connCount)
	require.NoError(t, err)
	require.NotNil(t, pop.Best)

	genomes := pop.reseed(pop.generationRNG())
	require.Len(t, genomes, cfg.Neat.PopSize)
	require.Zero(t, genomes[0].Distance(pop.Best, &cfg.Genome),
		"the first reseeded genome is an exact copy of the champion")
	for _, g := range genomes {
		require.NoError(t, g.Validate(cfg.Genome.FeedForward))
	}
}

func TestRunReportsAndReturnsChampion(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 7)
	require.NoError(t, err)

	reports := 0
	champion, err := pop.Run(connCount, 3, func(stats *GenerationStats) { reports++ })
	require.NoError(t, err)
	require.Equal(t, 3, reports)
	require.NotNil(t, champion)
	require.GreaterOrEqual(t, champion.Fitness, 3.0)
}
