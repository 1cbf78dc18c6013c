package nn

import (
	"fmt"

	"neatevo/neat"
)

// ctrnnNode is one integrated neuron: its time constant, bias term,
// transfer function and weighted incoming links (dense indices).
type ctrnnNode struct {
	tau        float64
	bias       float64
	activation neat.ActivationFunc
	incoming   []incomingLink
}

// CTRNN is the stateful phenotype of a (possibly recurrent) genome: a
// continuous-time recurrent neural network integrated with fixed-step Euler.
// Each external tick holds the inputs constant and advances the internal
// state through a configured number of substeps:
//
//	y_i += (dt/τ_i) * (-y_i + Σ_j w_ji·out_j + θ_i)
//
// where out_j is the source node's current output. All nodes update
// synchronously within a substep, so evaluation is deterministic regardless
// of node order. Identical genome, inputs and parameters always produce
// identical trajectories.
type CTRNN struct {
	steps int
	dt    float64

	inputIdx  []int
	outputIdx []int

	nodes []ctrnnNode
	roles []neat.NodeRole

	// state holds the membrane potential y per node; out caches f(y) (or the
	// raw input / bias constant) for the synchronous update.
	state []float64
	out   []float64
}

// NewCTRNN builds a CTRNN phenotype. Steps is the number of Euler substeps
// per Activate call and dt the integration step size; both must be positive.
func NewCTRNN(g *neat.Genome, steps int, dt float64) (*CTRNN, error) {
	if steps <= 0 || dt <= 0 {
		return nil, fmt.Errorf("invalid integration parameters: steps=%d dt=%g", steps, dt)
	}

	sorted := g.SortedNodes()
	index := make(map[int]int, len(sorted))
	for i, n := range sorted {
		index[n.ID] = i
	}

	net := &CTRNN{
		steps: steps,
		dt:    dt,
		nodes: make([]ctrnnNode, len(sorted)),
		roles: make([]neat.NodeRole, len(sorted)),
		state: make([]float64, len(sorted)),
		out:   make([]float64, len(sorted)),
	}
	for i, n := range sorted {
		fn, err := neat.GetActivation(n.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		net.nodes[i] = ctrnnNode{tau: n.TimeConstant, bias: n.Bias, activation: fn}
		net.roles[i] = n.Role
		switch n.Role {
		case neat.InputNode:
			net.inputIdx = append(net.inputIdx, i)
		case neat.OutputNode:
			net.outputIdx = append(net.outputIdx, i)
		}
	}

	for _, conn := range g.SortedConnections() {
		if !conn.Enabled {
			continue
		}
		from, ok := index[conn.In]
		if !ok {
			return nil, &neat.StructuralError{GenomeID: g.ID,
				Err: fmt.Errorf("%w: connection #%d sources %d", neat.ErrDanglingNode, conn.Innovation, conn.In)}
		}
		to, ok := index[conn.Out]
		if !ok {
			return nil, &neat.StructuralError{GenomeID: g.ID,
				Err: fmt.Errorf("%w: connection #%d targets %d", neat.ErrDanglingNode, conn.Innovation, conn.Out)}
		}
		net.nodes[to].incoming = append(net.nodes[to].incoming, incomingLink{From: from, Weight: conn.Weight})
	}
	return net, nil
}

// NumInputs returns the number of input nodes the network expects.
func (net *CTRNN) NumInputs() int { return len(net.inputIdx) }

// NumOutputs returns the number of output nodes the network produces.
func (net *CTRNN) NumOutputs() int { return len(net.outputIdx) }

// Flush resets the internal state to zero, as if the network had never been
// activated.
func (net *CTRNN) Flush() {
	for i := range net.state {
		net.state[i] = 0
	}
}

// refreshOutputs recomputes every node's visible output from its state.
// Input nodes emit the clamped-in input value, bias nodes their constant.
func (net *CTRNN) refreshOutputs(inputs []float64) {
	in := 0
	for i := range net.nodes {
		switch net.roles[i] {
		case neat.InputNode:
			net.out[i] = inputs[in]
			in++
		case neat.BiasNode:
			net.out[i] = net.nodes[i].bias
		default:
			net.out[i] = net.nodes[i].activation(net.state[i])
		}
	}
}

// Activate advances the network by one external tick with the given inputs
// held constant, and returns the output-node outputs ordered by ascending
// node id. State carries over between calls; use Flush between independent
// sequences.
func (net *CTRNN) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputIdx) {
		return nil, fmt.Errorf("%w: got %d, want %d", neat.ErrInputSizeMismatch, len(inputs), len(net.inputIdx))
	}

	for step := 0; step < net.steps; step++ {
		net.refreshOutputs(inputs)
		for i := range net.nodes {
			if net.roles[i] == neat.InputNode || net.roles[i] == neat.BiasNode {
				continue
			}
			node := &net.nodes[i]
			sum := node.bias
			for _, link := range node.incoming {
				sum += net.out[link.From] * link.Weight
			}
			net.state[i] += net.dt / node.tau * (-net.state[i] + sum)
		}
	}

	net.refreshOutputs(inputs)
	outputs := make([]float64, len(net.outputIdx))
	for i, idx := range net.outputIdx {
		outputs[i] = net.out[idx]
	}
	return outputs, nil
}
