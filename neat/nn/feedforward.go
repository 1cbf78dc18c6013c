// Package nn builds runnable phenotype networks from genomes: acyclic
// genomes become FeedForwardNetworks evaluated in one topological pass,
// recurrent genomes become CTRNNs integrated with fixed-step Euler.
package nn

import (
	"fmt"
	"sort"

	"neatevo/neat"
)

// neuralNode holds one node's resolved evaluation data: its transfer
// function and the enabled connections feeding it.
type neuralNode struct {
	ID         int
	Bias       float64
	Activation neat.ActivationFunc
	Incoming   []incomingLink
}

// incomingLink is one enabled connection into a node.
type incomingLink struct {
	From   int
	Weight float64
}

// FeedForwardNetwork is the stateless phenotype of an acyclic genome. One
// Activate call propagates the inputs through the node evaluation order and
// returns the outputs; no state survives between calls.
type FeedForwardNetwork struct {
	inputIDs  []int
	outputIDs []int
	biasIDs   []int
	biases    []float64

	// evalOrder lists hidden and output node ids topologically sorted, so a
	// single forward pass sees every node's inputs already computed.
	evalOrder []int
	nodes     map[int]neuralNode
}

// NewFeedForward builds a feed-forward phenotype from a genome. The enabled
// connections must form an acyclic graph; a cycle fails with
// neat.ErrCyclicTopology.
func NewFeedForward(g *neat.Genome) (*FeedForwardNetwork, error) {
	net := &FeedForwardNetwork{
		inputIDs:  g.NodeIDsByRole(neat.InputNode),
		outputIDs: g.NodeIDsByRole(neat.OutputNode),
		biasIDs:   g.NodeIDsByRole(neat.BiasNode),
		nodes:     make(map[int]neuralNode),
	}
	for _, id := range net.biasIDs {
		net.biases = append(net.biases, g.Nodes[id].Bias)
	}

	for _, gn := range g.SortedNodes() {
		fn, err := neat.GetActivation(gn.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", gn.ID, err)
		}
		net.nodes[gn.ID] = neuralNode{
			ID:         gn.ID,
			Bias:       gn.Bias,
			Activation: fn,
		}
	}
	for _, conn := range g.SortedConnections() {
		if !conn.Enabled {
			continue
		}
		node, ok := net.nodes[conn.Out]
		if !ok {
			return nil, &neat.StructuralError{GenomeID: g.ID,
				Err: fmt.Errorf("%w: connection #%d targets %d", neat.ErrDanglingNode, conn.Innovation, conn.Out)}
		}
		node.Incoming = append(node.Incoming, incomingLink{From: conn.In, Weight: conn.Weight})
		net.nodes[conn.Out] = node
	}

	order, err := topoOrder(g)
	if err != nil {
		return nil, err
	}
	source := make(map[int]bool)
	for _, id := range net.inputIDs {
		source[id] = true
	}
	for _, id := range net.biasIDs {
		source[id] = true
	}
	for _, id := range order {
		if !source[id] {
			net.evalOrder = append(net.evalOrder, id)
		}
	}
	return net, nil
}

// topoOrder sorts the genome's nodes by Kahn's algorithm over the enabled
// connections. The pending queue is kept sorted by node id so the order, and
// therefore the evaluation, is identical across runs.
func topoOrder(g *neat.Genome) ([]int, error) {
	inDegree := make(map[int]int, len(g.Nodes))
	outgoing := make(map[int][]int)
	for id := range g.Nodes {
		inDegree[id] = 0
	}
	for _, conn := range g.SortedConnections() {
		if !conn.Enabled {
			continue
		}
		outgoing[conn.In] = append(outgoing[conn.In], conn.Out)
		inDegree[conn.Out]++
	}

	queue := []int{}
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	order := make([]int, 0, len(g.Nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)
		for _, next := range outgoing[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
		sort.Ints(queue)
	}

	if len(order) != len(g.Nodes) {
		return nil, &neat.StructuralError{GenomeID: g.ID, Err: neat.ErrCyclicTopology}
	}
	return order, nil
}

// NumInputs returns the number of input nodes the network expects.
func (net *FeedForwardNetwork) NumInputs() int { return len(net.inputIDs) }

// NumOutputs returns the number of output nodes the network produces.
func (net *FeedForwardNetwork) NumOutputs() int { return len(net.outputIDs) }

// Activate propagates one input vector through the network and returns the
// output vector, ordered by ascending output-node id. The input slice length
// must match the input-node count.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputIDs) {
		return nil, fmt.Errorf("%w: got %d, want %d", neat.ErrInputSizeMismatch, len(inputs), len(net.inputIDs))
	}

	values := make(map[int]float64, len(net.nodes))
	for i, id := range net.inputIDs {
		values[id] = inputs[i]
	}
	for i, id := range net.biasIDs {
		values[id] = net.biases[i]
	}

	for _, id := range net.evalOrder {
		node := net.nodes[id]
		sum := node.Bias
		for _, link := range node.Incoming {
			sum += values[link.From] * link.Weight
		}
		values[id] = node.Activation(sum)
	}

	// An output with no enabled incoming path keeps the map zero value.
	outputs := make([]float64, len(net.outputIDs))
	for i, id := range net.outputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}
