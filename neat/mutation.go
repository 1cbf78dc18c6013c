package neat

import (
	"math/rand"
	"sort"
)

// addConnectionAttempts bounds the random search for an unconnected node
// pair before add-connection gives up as a silent no-op.
const addConnectionAttempts = 20

// Mutator applies weight and structural mutations to one genome at a time,
// consulting the shared InnovationTracker for every structural change so
// that identical mutations performed independently across the population
// receive identical historical markings.
type Mutator struct {
	cfg     *GenomeConfig
	tracker *InnovationTracker
}

// NewMutator creates a mutator bound to a generation's innovation tracker.
func NewMutator(cfg *GenomeConfig, tracker *InnovationTracker) *Mutator {
	return &Mutator{cfg: cfg, tracker: tracker}
}

// Mutate applies each operator to the genome, gated by its configured
// probability. Operators that cannot find a valid target are silent no-ops;
// that is a normal outcome, not an error.
func (m *Mutator) Mutate(g *Genome, rng *rand.Rand) {
	if rng.Float64() < m.cfg.NodeAddProb {
		m.addNode(g, rng)
	}
	if rng.Float64() < m.cfg.ConnAddProb {
		m.addConnection(g, rng)
	}
	if m.cfg.EnabledMutateRate > 0 && rng.Float64() < m.cfg.EnabledMutateRate {
		m.toggleEnable(g, rng)
	}
	m.mutateWeights(g, rng)
}

// newWeight draws a fresh connection weight from the init distribution.
func (m *Mutator) newWeight(rng *rand.Rand) float64 {
	w := rng.NormFloat64()*m.cfg.WeightInitStdev + m.cfg.WeightInitMean
	return clamp(w, m.cfg.WeightMinValue, m.cfg.WeightMaxValue)
}

// mutateWeights perturbs or replaces the weight of each enabled connection.
// A single uniform draw per gene decides between perturbation, replacement
// and no change.
func (m *Mutator) mutateWeights(g *Genome, rng *rand.Rand) {
	for _, conn := range g.SortedConnections() {
		if !conn.Enabled {
			continue
		}
		r := rng.Float64()
		switch {
		case r < m.cfg.WeightMutateRate:
			conn.Weight += rng.NormFloat64() * m.cfg.WeightMutatePower
			conn.Weight = clamp(conn.Weight, m.cfg.WeightMinValue, m.cfg.WeightMaxValue)
		case r < m.cfg.WeightMutateRate+m.cfg.WeightReplaceRate:
			conn.Weight = m.newWeight(rng)
		}
	}
}

// addConnection picks two distinct nodes not already connected and links
// them with a freshly sampled weight. In feed-forward mode candidate pairs
// that would close a cycle are rejected. After a bounded number of attempts
// the mutation gives up without modifying the genome.
func (m *Mutator) addConnection(g *Genome, rng *rand.Rand) {
	fromIDs := make([]int, 0, len(g.Nodes))
	toIDs := make([]int, 0, len(g.Nodes))
	for id, n := range g.Nodes {
		fromIDs = append(fromIDs, id)
		// Inputs and the bias node never receive connections.
		if n.Role != InputNode && n.Role != BiasNode {
			toIDs = append(toIDs, id)
		}
	}
	if len(fromIDs) == 0 || len(toIDs) == 0 {
		return
	}
	sort.Ints(fromIDs)
	sort.Ints(toIDs)

	for attempt := 0; attempt < addConnectionAttempts; attempt++ {
		from := fromIDs[rng.Intn(len(fromIDs))]
		to := toIDs[rng.Intn(len(toIDs))]

		if g.ConnectionBetween(from, to) != nil {
			continue
		}
		if m.cfg.FeedForward && g.CreatesCycle(from, to) {
			continue
		}

		marking := m.tracker.ConnectionMarking(from, to)
		if _, err := g.AddConnection(from, to, m.newWeight(rng), marking); err != nil {
			continue
		}
		return
	}
}

// addNode splits an enabled connection A->B with weight w: the connection
// is disabled (never deleted), a hidden node N is created, and two new
// connections A->N (weight 1.0) and N->B (weight w) take its place. This
// approximately preserves the pre-mutation function while adding capacity.
// The markings of both new connections derive from the split connection's
// own marking, so the same split in two genomes yields matching markings.
func (m *Mutator) addNode(g *Genome, rng *rand.Rand) {
	enabled := []*ConnectionGene{}
	for _, conn := range g.SortedConnections() {
		if conn.Enabled {
			enabled = append(enabled, conn)
		}
	}
	if len(enabled) == 0 {
		return
	}

	split := enabled[rng.Intn(len(enabled))]
	split.Enabled = false

	node := g.AddNode(HiddenNode, m.cfg.ActivationDefault, 0, m.cfg.TimeConstant)
	inMarking, outMarking := m.tracker.SplitMarkings(split.Innovation)

	if _, err := g.AddConnection(split.In, node.ID, 1.0, inMarking); err != nil {
		split.Enabled = true
		return
	}
	if _, err := g.AddConnection(node.ID, split.Out, split.Weight, outMarking); err != nil {
		split.Enabled = true
		return
	}
}

// toggleEnable flips the enabled flag of one random connection. A flip that
// would disconnect a previously connected output from all inputs, or that
// would close a cycle in feed-forward mode, is reverted.
func (m *Mutator) toggleEnable(g *Genome, rng *rand.Rand) {
	conns := g.SortedConnections()
	if len(conns) == 0 {
		return
	}
	conn := conns[rng.Intn(len(conns))]

	before := g.reachableOutputs()
	conn.Enabled = !conn.Enabled

	if conn.Enabled && m.cfg.FeedForward && g.hasCycle() {
		conn.Enabled = false
		return
	}
	if !conn.Enabled {
		after := g.reachableOutputs()
		for id := range before {
			if !after[id] {
				conn.Enabled = true
				return
			}
		}
	}
}
