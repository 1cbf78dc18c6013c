package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddNodeSplit(t *testing.T) {
	cfg := &DefaultConfig().Genome
	tracker := NewInnovationTracker(1)
	m := NewMutator(cfg, tracker)
	rng := rand.New(rand.NewSource(1))

	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 0.7, true)

	m.addNode(g, rng)

	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Connections, 3, "split adds two connections, deletes none")
	require.False(t, g.Connections[0].Enabled, "split connection is disabled")

	hidden := g.Nodes[2]
	require.Equal(t, HiddenNode, hidden.Role)
	require.Equal(t, cfg.ActivationDefault, hidden.Activation)

	inConn := g.ConnectionBetween(0, 2)
	outConn := g.ConnectionBetween(2, 1)
	require.NotNil(t, inConn)
	require.NotNil(t, outConn)
	require.Equal(t, 1.0, inConn.Weight, "in-side weight is 1.0")
	require.Equal(t, 0.7, outConn.Weight, "out-side carries the split weight")
	require.NoError(t, g.Validate(true))
}

func TestAddNodeSharedMarkings(t *testing.T) {
	cfg := &DefaultConfig().Genome
	tracker := NewInnovationTracker(1)
	m := NewMutator(cfg, tracker)

	build := func(id int) *Genome {
		g := NewGenome(id)
		g.AddNode(InputNode, "identity", 0, 1.0)
		g.AddNode(OutputNode, "identity", 0, 1.0)
		addConn(g, 0, 0, 1, 0.7, true)
		return g
	}

	g1 := build(1)
	g2 := build(2)
	m.addNode(g1, rand.New(rand.NewSource(1)))
	m.addNode(g2, rand.New(rand.NewSource(2)))

	// Both genomes split connection 0, so their new genes must align.
	require.ElementsMatch(t, innovations(g1), innovations(g2))
}

func innovations(g *Genome) []int {
	out := []int{}
	for inno := range g.Connections {
		out = append(out, inno)
	}
	return out
}

func TestAddConnectionRespectsAcyclicity(t *testing.T) {
	cfg := &DefaultConfig().Genome
	cfg.FeedForward = true
	tracker := NewInnovationTracker(1)
	m := NewMutator(cfg, tracker)
	rng := rand.New(rand.NewSource(1))

	// Input 0 -> output 1 already connected; the only other candidate pair
	// is the output self-loop, which feed-forward mode rejects.
	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 1.0, true)

	m.addConnection(g, rng)
	require.Len(t, g.Connections, 1, "no valid pair means a silent no-op")
}

func TestAddConnectionUsesTracker(t *testing.T) {
	cfg := &DefaultConfig().Genome
	cfg.FeedForward = true
	tracker := NewInnovationTracker(5)
	m := NewMutator(cfg, tracker)
	rng := rand.New(rand.NewSource(1))

	g := twoInputGenome(1)
	m.addConnection(g, rng)

	require.Len(t, g.Connections, 1)
	conn := g.SortedConnections()[0]
	require.Equal(t, 5, conn.Innovation)
	require.True(t, conn.Enabled)
	require.NoError(t, g.Validate(true))
}

func TestMutateWeightsStaysInRange(t *testing.T) {
	cfg := &DefaultConfig().Genome
	cfg.WeightMutateRate = 1.0
	cfg.WeightReplaceRate = 0.0
	cfg.WeightMutatePower = 100.0
	cfg.WeightMinValue = -1.0
	cfg.WeightMaxValue = 1.0
	m := NewMutator(cfg, NewInnovationTracker(10))
	rng := rand.New(rand.NewSource(1))

	g := twoInputGenome(1)
	addConn(g, 0, 0, 2, 0.0, true)
	addConn(g, 1, 1, 2, 0.0, true)

	for i := 0; i < 50; i++ {
		m.mutateWeights(g, rng)
		for _, conn := range g.Connections {
			require.GreaterOrEqual(t, conn.Weight, cfg.WeightMinValue)
			require.LessOrEqual(t, conn.Weight, cfg.WeightMaxValue)
		}
	}
}

func TestMutateWeightsSkipsDisabled(t *testing.T) {
	cfg := &DefaultConfig().Genome
	cfg.WeightMutateRate = 1.0
	m := NewMutator(cfg, NewInnovationTracker(10))
	rng := rand.New(rand.NewSource(1))

	g := twoInputGenome(1)
	addConn(g, 0, 0, 2, 0.25, false)

	m.mutateWeights(g, rng)
	require.Equal(t, 0.25, g.Connections[0].Weight)
}

func TestToggleEnableRevertsDisconnection(t *testing.T) {
	cfg := &DefaultConfig().Genome
	m := NewMutator(cfg, NewInnovationTracker(10))
	rng := rand.New(rand.NewSource(1))

	// The only connection is the output's only feed: disabling it would cut
	// the output off, so the toggle must revert.
	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 1.0, true)

	for i := 0; i < 10; i++ {
		m.toggleEnable(g, rng)
		require.True(t, g.Connections[0].Enabled)
	}
}

func TestToggleEnableCanReEnable(t *testing.T) {
	cfg := &DefaultConfig().Genome
	cfg.FeedForward = true
	m := NewMutator(cfg, NewInnovationTracker(10))
	rng := rand.New(rand.NewSource(1))

	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 1.0, false)

	m.toggleEnable(g, rng)
	require.True(t, g.Connections[0].Enabled)
}
