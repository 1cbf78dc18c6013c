package neat

import (
	"fmt"
	"sort"
)

// Genome is the graph-valued encoding of one candidate network: an
// ordered-by-id set of node genes and an ordered-by-historical-marking set of
// connection genes. Nodes and connections reference each other only by
// integer identifier; the genome owns all genes in flat indexed containers,
// which avoids cyclic ownership while still allowing cyclic topology for
// recurrent networks.
//
// A genome never removes genes: disabling a connection, never deleting it, is
// how structure is pruned while preserving historical alignment.
type Genome struct {
	ID int

	// Nodes maps node id -> NodeGene.
	Nodes map[int]*NodeGene

	// Connections maps historical marking -> ConnectionGene.
	Connections map[int]*ConnectionGene

	// Fitness is assigned during evaluation; zero until then.
	Fitness float64

	// SpeciesID is assigned by the speciator and reset each generation.
	// Zero means unassigned.
	SpeciesID int
}

// NewGenome creates an empty genome with the given key.
func NewGenome(id int) *Genome {
	return &Genome{
		ID:          id,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[int]*ConnectionGene),
	}
}

// AddNode appends a new node gene with the next free node id and returns it.
func (g *Genome) AddNode(role NodeRole, activation string, bias, timeConstant float64) *NodeGene {
	node := &NodeGene{
		ID:           g.nextNodeID(),
		Role:         role,
		Activation:   activation,
		Bias:         bias,
		TimeConstant: timeConstant,
	}
	g.Nodes[node.ID] = node
	return node
}

// nextNodeID is derived rather than stored so copies and deserialized
// genomes need no bookkeeping.
func (g *Genome) nextNodeID() int {
	next := 0
	for id := range g.Nodes {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// AddConnection inserts a connection gene with the given historical marking.
// It fails with ErrDuplicateConnection if a connection already exists between
// the same ordered node pair, and with ErrDanglingNode if either endpoint is
// not in the genome's node set.
func (g *Genome) AddConnection(from, to int, weight float64, marking int) (*ConnectionGene, error) {
	if _, ok := g.Nodes[from]; !ok {
		return nil, &StructuralError{GenomeID: g.ID, Err: fmt.Errorf("%w: node %d", ErrDanglingNode, from)}
	}
	if _, ok := g.Nodes[to]; !ok {
		return nil, &StructuralError{GenomeID: g.ID, Err: fmt.Errorf("%w: node %d", ErrDanglingNode, to)}
	}
	if g.ConnectionBetween(from, to) != nil {
		return nil, &StructuralError{GenomeID: g.ID, Err: fmt.Errorf("%w: %d->%d", ErrDuplicateConnection, from, to)}
	}

	conn := &ConnectionGene{
		Innovation: marking,
		In:         from,
		Out:        to,
		Weight:     weight,
		Enabled:    true,
	}
	g.Connections[marking] = conn
	return conn, nil
}

// ConnectionBetween returns the gene linking the ordered pair (from, to),
// or nil if none exists.
func (g *Genome) ConnectionBetween(from, to int) *ConnectionGene {
	for _, conn := range g.Connections {
		if conn.In == from && conn.Out == to {
			return conn
		}
	}
	return nil
}

// SortedNodes returns the node genes ordered by id.
func (g *Genome) SortedNodes() []*NodeGene {
	nodes := make([]*NodeGene, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// SortedConnections returns the connection genes ordered by historical
// marking. Every iteration that draws randomness or produces order-dependent
// results goes through this to keep runs reproducible.
func (g *Genome) SortedConnections() []*ConnectionGene {
	conns := make([]*ConnectionGene, 0, len(g.Connections))
	for _, c := range g.Connections {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Innovation < conns[j].Innovation })
	return conns
}

// NodeIDsByRole returns the ids of all nodes with the given role, sorted.
// The sorted order of output ids is the stable output order of Activate.
func (g *Genome) NodeIDsByRole(role NodeRole) []int {
	ids := []int{}
	for id, n := range g.Nodes {
		if n.Role == role {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// MaxInnovation returns the highest historical marking in the genome, or -1
// if it has no connections.
func (g *Genome) MaxInnovation() int {
	maxInno := -1
	for inno := range g.Connections {
		if inno > maxInno {
			maxInno = inno
		}
	}
	return maxInno
}

// Copy creates a deep copy of the genome under a new key. Fitness and
// species assignment are not carried over.
func (g *Genome) Copy(id int) *Genome {
	dup := NewGenome(id)
	for nid, n := range g.Nodes {
		dup.Nodes[nid] = n.Copy()
	}
	for inno, c := range g.Connections {
		dup.Connections[inno] = c.Copy()
	}
	return dup
}

// CreatesCycle reports whether adding a connection from -> to would create a
// cycle through the genome's enabled connections. A self-loop always counts.
func (g *Genome) CreatesCycle(from, to int) bool {
	if from == to {
		return true
	}

	// The new edge closes a cycle iff `from` is already reachable from `to`.
	visited := map[int]bool{}
	queue := []int{to}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == from {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, conn := range g.Connections {
			if conn.Enabled && conn.In == current {
				queue = append(queue, conn.Out)
			}
		}
	}
	return false
}

// Validate checks the structural invariants: every connection endpoint must
// exist in the node set, and in feed-forward mode the enabled-connection
// graph must be acyclic.
func (g *Genome) Validate(feedForward bool) error {
	for _, conn := range g.SortedConnections() {
		if _, ok := g.Nodes[conn.In]; !ok {
			return &StructuralError{GenomeID: g.ID, Err: fmt.Errorf("%w: connection #%d references %d", ErrDanglingNode, conn.Innovation, conn.In)}
		}
		if _, ok := g.Nodes[conn.Out]; !ok {
			return &StructuralError{GenomeID: g.ID, Err: fmt.Errorf("%w: connection #%d references %d", ErrDanglingNode, conn.Innovation, conn.Out)}
		}
	}
	if feedForward && g.hasCycle() {
		return &StructuralError{GenomeID: g.ID, Err: ErrCyclicTopology}
	}
	return nil
}

// hasCycle reports whether the enabled-connection graph contains a cycle,
// using Kahn's algorithm over all nodes.
func (g *Genome) hasCycle() bool {
	inDegree := make(map[int]int, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = 0
	}
	for _, conn := range g.Connections {
		if conn.Enabled {
			inDegree[conn.Out]++
		}
	}

	queue := []int{}
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}

	removed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		removed++
		for _, conn := range g.Connections {
			if conn.Enabled && conn.In == current {
				inDegree[conn.Out]--
				if inDegree[conn.Out] == 0 {
					queue = append(queue, conn.Out)
				}
			}
		}
	}
	return removed != len(g.Nodes)
}

// Distance computes the compatibility distance to another genome:
//
//	d = (c1*E + c2*D)/N + c3*W̄
//
// where E counts excess genes (markings beyond the other genome's highest),
// D counts disjoint genes, W̄ is the mean absolute weight difference over
// matching genes, and N is the size of the larger connection set — taken as
// 1 when the larger set is small, to avoid over-penalizing tiny genomes.
// The measure is symmetric and zero for identical genomes.
func (g *Genome) Distance(other *Genome, cfg *GenomeConfig) float64 {
	lenG := len(g.Connections)
	lenO := len(other.Connections)
	if lenG == 0 && lenO == 0 {
		return 0
	}

	maxG := g.MaxInnovation()
	maxO := other.MaxInnovation()

	var excess, disjoint, matching, weightDiff float64
	for inno, conn := range g.Connections {
		if oc, ok := other.Connections[inno]; ok {
			matching++
			weightDiff += abs(conn.Weight - oc.Weight)
			continue
		}
		if inno > maxO {
			excess++
		} else {
			disjoint++
		}
	}
	for inno := range other.Connections {
		if _, ok := g.Connections[inno]; ok {
			continue
		}
		if inno > maxG {
			excess++
		} else {
			disjoint++
		}
	}

	n := 1.0
	if larger := max(lenG, lenO); larger >= smallGenomeSize {
		n = float64(larger)
	}

	d := (cfg.CompatibilityExcessCoefficient*excess + cfg.CompatibilityDisjointCoefficient*disjoint) / n
	if matching > 0 {
		d += cfg.CompatibilityWeightCoefficient * weightDiff / matching
	}
	return d
}

// smallGenomeSize is the connection count below which the normalizer N in
// the compatibility distance is held at 1.
const smallGenomeSize = 20

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// reachableOutputs returns the set of output-node ids reachable from any
// input or bias node over enabled connections. Used to guard enable toggles
// against disconnecting an output entirely.
func (g *Genome) reachableOutputs() map[int]bool {
	visited := map[int]bool{}
	queue := []int{}
	for id, n := range g.Nodes {
		if n.Role == InputNode || n.Role == BiasNode {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, conn := range g.Connections {
			if conn.Enabled && conn.In == current && !visited[conn.Out] {
				visited[conn.Out] = true
				queue = append(queue, conn.Out)
			}
		}
	}

	outputs := map[int]bool{}
	for id, n := range g.Nodes {
		if n.Role == OutputNode && visited[id] {
			outputs[id] = true
		}
	}
	return outputs
}
