package neat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// twoInputGenome builds a genome with input nodes 0 and 1 and output node 2.
func twoInputGenome(id int) *Genome {
	g := NewGenome(id)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	return g
}

// addConn inserts a connection gene directly, bypassing the duplicate and
// dangling checks, so tests can control innovation numbers.
func addConn(g *Genome, inno, from, to int, weight float64, enabled bool) {
	g.Connections[inno] = &ConnectionGene{
		Innovation: inno,
		In:         from,
		Out:        to,
		Weight:     weight,
		Enabled:    enabled,
	}
}

func TestAddConnectionErrors(t *testing.T) {
	g := twoInputGenome(1)

	_, err := g.AddConnection(0, 9, 1.0, 0)
	require.ErrorIs(t, err, ErrDanglingNode)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	require.Equal(t, 1, structural.GenomeID)

	_, err = g.AddConnection(0, 2, 1.0, 0)
	require.NoError(t, err)

	_, err = g.AddConnection(0, 2, 0.5, 1)
	require.ErrorIs(t, err, ErrDuplicateConnection)
	require.Len(t, g.Connections, 1)
}

func TestCreatesCycle(t *testing.T) {
	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(HiddenNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 1.0, true)
	addConn(g, 1, 1, 2, 1.0, true)

	require.True(t, g.CreatesCycle(2, 0), "closing the chain must be a cycle")
	require.True(t, g.CreatesCycle(1, 1), "self-loop is always a cycle")
	require.False(t, g.CreatesCycle(0, 2), "a parallel forward edge is not a cycle")

	// Disabled connections do not carry reachability.
	g.Connections[1].Enabled = false
	require.False(t, g.CreatesCycle(2, 0))
}

func TestValidate(t *testing.T) {
	g := NewGenome(1)
	g.AddNode(InputNode, "identity", 0, 1.0)
	g.AddNode(HiddenNode, "identity", 0, 1.0)
	g.AddNode(OutputNode, "identity", 0, 1.0)
	addConn(g, 0, 0, 1, 1.0, true)
	addConn(g, 1, 1, 2, 1.0, true)
	require.NoError(t, g.Validate(true))

	// A recurrent edge is fine for CTRNN evaluation but not feed-forward.
	addConn(g, 2, 2, 1, 1.0, true)
	require.NoError(t, g.Validate(false))
	require.ErrorIs(t, g.Validate(true), ErrCyclicTopology)

	// Dangling endpoints fail either way.
	bad := twoInputGenome(2)
	addConn(bad, 0, 0, 99, 1.0, true)
	require.ErrorIs(t, bad.Validate(false), ErrDanglingNode)
}

func TestCopyIsDeep(t *testing.T) {
	g := twoInputGenome(1)
	addConn(g, 0, 0, 2, 0.5, true)
	g.Fitness = 3.0
	g.SpeciesID = 7

	dup := g.Copy(2)
	require.Equal(t, 2, dup.ID)
	require.Zero(t, dup.Fitness, "fitness is not inherited")
	require.Zero(t, dup.SpeciesID, "species assignment is not inherited")

	dup.Connections[0].Weight = 9.0
	dup.Nodes[0].Bias = 5.0
	require.Equal(t, 0.5, g.Connections[0].Weight)
	require.Zero(t, g.Nodes[0].Bias)
}

func TestDistanceIdenticalIsZero(t *testing.T) {
	cfg := &DefaultConfig().Genome

	g1 := twoInputGenome(1)
	addConn(g1, 0, 0, 2, 0.5, true)
	addConn(g1, 1, 1, 2, -0.3, true)

	g2 := g1.Copy(2)
	require.Zero(t, g1.Distance(g2, cfg))
	require.Zero(t, g1.Distance(g1, cfg))
}

func TestDistanceExcessDisjointWeights(t *testing.T) {
	cfg := &DefaultConfig().Genome // c1 = c2 = 1.0, c3 = 0.4

	g1 := twoInputGenome(1)
	addConn(g1, 0, 0, 2, 1.0, true)
	addConn(g1, 1, 1, 2, 1.0, true)
	addConn(g1, 2, 0, 2, 1.0, false) // disjoint relative to g2

	g2 := twoInputGenome(2)
	addConn(g2, 0, 0, 2, 0.0, true)
	addConn(g2, 1, 1, 2, 0.5, true)
	addConn(g2, 4, 1, 2, 1.0, true) // excess relative to g1

	// Matching 0 and 1 with |dw| 1.0 and 0.5; one disjoint, one excess.
	// Both genomes are under the small-genome cutoff, so N = 1:
	// d = (1*1 + 1*1)/1 + 0.4*0.75 = 2.3
	want := 2.3
	require.InDelta(t, want, g1.Distance(g2, cfg), 1e-9)
	require.InDelta(t, want, g2.Distance(g1, cfg), 1e-9, "distance must be symmetric")
}

func TestMaxInnovation(t *testing.T) {
	g := twoInputGenome(1)
	require.Equal(t, -1, g.MaxInnovation())

	addConn(g, 5, 0, 2, 1.0, true)
	require.Equal(t, 5, g.MaxInnovation())
}

func TestSortedAccessors(t *testing.T) {
	g := twoInputGenome(1)
	addConn(g, 3, 0, 2, 1.0, true)
	addConn(g, 1, 1, 2, 1.0, true)

	conns := g.SortedConnections()
	require.Equal(t, []int{1, 3}, []int{conns[0].Innovation, conns[1].Innovation})

	nodes := g.SortedNodes()
	require.Equal(t, []int{0, 1, 2}, []int{nodes[0].ID, nodes[1].ID, nodes[2].ID})

	require.Equal(t, []int{0, 1}, g.NodeIDsByRole(InputNode))
	require.Equal(t, []int{2}, g.NodeIDsByRole(OutputNode))
}

func TestNodeRoleRoundTrip(t *testing.T) {
	for _, role := range []NodeRole{InputNode, OutputNode, HiddenNode, BiasNode} {
		parsed, err := ParseNodeRole(role.String())
		require.NoError(t, err)
		require.Equal(t, role, parsed)
	}
	_, err := ParseNodeRole("synapse")
	require.Error(t, err)
}

func TestStructuralErrorUnwrap(t *testing.T) {
	err := &StructuralError{GenomeID: 3, Err: ErrCyclicTopology}
	require.True(t, errors.Is(err, ErrCyclicTopology))
	require.Contains(t, err.Error(), "genome 3")
}
