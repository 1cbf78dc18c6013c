package neat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenomeJSONRoundTrip(t *testing.T) {
	g := twoInputGenome(7)
	g.AddNode(BiasNode, "sigmoid", 1.0, 1.0)
	addConn(g, 0, 0, 2, 0.5, true)
	addConn(g, 3, 1, 2, -0.25, false)
	g.Fitness = 3.5
	g.SpeciesID = 2

	path := filepath.Join(t.TempDir(), "genome.json")
	require.NoError(t, SaveGenome(path, g))

	got, err := LoadGenome(path)
	require.NoError(t, err)
	require.Equal(t, g.Record(), got.Record())
	require.Equal(t, 3.5, got.Fitness)
}

func TestGenomeRecordRejectsBadRole(t *testing.T) {
	rec := GenomeRecord{
		ID:    1,
		Nodes: []NodeRecord{{ID: 0, Role: "synapse", Activation: "identity"}},
	}
	_, err := rec.Genome()
	require.Error(t, err)
}

func TestCheckpointRoundTrip(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 11)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := pop.RunGeneration(connCount)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "pop.ckpt")
	require.NoError(t, pop.SaveCheckpoint(path))

	restored, err := LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, pop.Generation, restored.Generation)
	require.Equal(t, pop.Seed, restored.Seed)
	require.Len(t, restored.Genomes, len(pop.Genomes))
	require.Equal(t, pop.Snapshot(), restored.Snapshot())
}

func TestRestoreRejectsMismatchedTopology(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 3)
	require.NoError(t, err)
	_, err = pop.RunGeneration(connCount)
	require.NoError(t, err)

	snap := pop.Snapshot()
	snap.Config.Genome.NumOutputs = 2
	_, err = RestorePopulation(snap)
	require.ErrorIs(t, err, ErrOutputSizeMismatch)

	snap.Config.Genome.NumOutputs = 1
	snap.Config.Genome.NumInputs = 3
	_, err = RestorePopulation(snap)
	require.ErrorIs(t, err, ErrInputSizeMismatch)
}

func TestRestoredPopulationContinuesIdentically(t *testing.T) {
	pop, err := NewPopulation(testConfig(), 13)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := pop.RunGeneration(connCount)
		require.NoError(t, err)
	}

	restored, err := RestorePopulation(pop.Snapshot())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		wantStats, err := pop.RunGeneration(connCount)
		require.NoError(t, err)
		gotStats, err := restored.RunGeneration(connCount)
		require.NoError(t, err)
		require.Equal(t, wantStats, gotStats)
	}
	require.Equal(t, pop.Snapshot(), restored.Snapshot())
}
