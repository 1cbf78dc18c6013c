package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrossoverSelfIdentity(t *testing.T) {
	cfg := &ReproductionConfig{DisabledInheritProb: 1.0}
	rng := rand.New(rand.NewSource(1))

	p := twoInputGenome(1)
	addConn(p, 0, 0, 2, 0.5, true)
	addConn(p, 1, 1, 2, -0.3, false)
	p.Fitness = 1.0

	other := p.Copy(2)
	other.Fitness = 1.0

	child := Crossover(10, p, other, cfg, rng)
	require.Equal(t, 10, child.ID)
	require.Len(t, child.Nodes, len(p.Nodes))
	require.Len(t, child.Connections, len(p.Connections))
	for inno, conn := range p.Connections {
		got := child.Connections[inno]
		require.NotNil(t, got)
		require.Equal(t, conn.Weight, got.Weight)
		require.Equal(t, conn.Enabled, got.Enabled)
	}
}

func TestCrossoverFitterParentKeepsUnmatched(t *testing.T) {
	cfg := &ReproductionConfig{DisabledInheritProb: 0.75}
	rng := rand.New(rand.NewSource(1))

	p1 := twoInputGenome(1)
	addConn(p1, 0, 0, 2, 1.0, true)
	addConn(p1, 2, 1, 2, 0.7, true)
	p1.Fitness = 2.0

	p2 := twoInputGenome(2)
	addConn(p2, 0, 0, 2, 1.0, true)
	addConn(p2, 3, 1, 2, -0.4, true)
	p2.Fitness = 1.0

	child := Crossover(10, p1, p2, cfg, rng)
	require.Contains(t, child.Connections, 0)
	require.Contains(t, child.Connections, 2, "fitter parent's unmatched gene is inherited")
	require.NotContains(t, child.Connections, 3, "weaker parent's unmatched gene is dropped")
}

func TestCrossoverEqualFitnessUnion(t *testing.T) {
	cfg := &ReproductionConfig{DisabledInheritProb: 0.75}
	rng := rand.New(rand.NewSource(1))

	p1 := twoInputGenome(1)
	addConn(p1, 0, 0, 2, 1.0, true)
	addConn(p1, 2, 1, 2, 0.7, true)
	p1.Fitness = 1.5

	p2 := twoInputGenome(2)
	addConn(p2, 0, 0, 2, 1.0, true)
	addConn(p2, 3, 1, 2, -0.4, true)
	p2.Fitness = 1.5

	child := Crossover(10, p1, p2, cfg, rng)
	require.Len(t, child.Connections, 3, "a fitness tie inherits unmatched genes from both parents")
}

func TestCrossoverAveraging(t *testing.T) {
	cfg := &ReproductionConfig{MateByAveraging: true, DisabledInheritProb: 1.0}
	rng := rand.New(rand.NewSource(1))

	p1 := twoInputGenome(1)
	addConn(p1, 0, 0, 2, 1.0, true)
	p2 := twoInputGenome(2)
	addConn(p2, 0, 0, 2, 0.0, true)

	child := Crossover(10, p1, p2, cfg, rng)
	require.InDelta(t, 0.5, child.Connections[0].Weight, 1e-9)
}

func TestCrossoverNeverDangles(t *testing.T) {
	cfg := &ReproductionConfig{DisabledInheritProb: 0.75}
	rng := rand.New(rand.NewSource(1))

	// p1 grew a hidden node the other parent never saw.
	p1 := twoInputGenome(1)
	hidden := p1.AddNode(HiddenNode, "identity", 0, 1.0)
	addConn(p1, 0, 0, hidden.ID, 1.0, true)
	addConn(p1, 1, hidden.ID, 2, 0.5, true)
	p1.Fitness = 1.0

	p2 := twoInputGenome(2)
	addConn(p2, 2, 0, 2, 1.0, true)
	p2.Fitness = 1.0

	child := Crossover(10, p1, p2, cfg, rng)
	require.NoError(t, child.Validate(true))
	require.Contains(t, child.Nodes, hidden.ID)
}
