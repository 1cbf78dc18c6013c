package neat

import "fmt"

// NodeRole identifies what part a node plays in the network topology.
type NodeRole int

const (
	InputNode NodeRole = iota
	OutputNode
	HiddenNode
	BiasNode
)

// String returns the lowercase role name used in serialized genomes.
func (r NodeRole) String() string {
	switch r {
	case InputNode:
		return "input"
	case OutputNode:
		return "output"
	case HiddenNode:
		return "hidden"
	case BiasNode:
		return "bias"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseNodeRole is the inverse of NodeRole.String.
func ParseNodeRole(s string) (NodeRole, error) {
	switch s {
	case "input":
		return InputNode, nil
	case "output":
		return OutputNode, nil
	case "hidden":
		return HiddenNode, nil
	case "bias":
		return BiasNode, nil
	default:
		return 0, fmt.Errorf("unknown node role %q", s)
	}
}

// NodeGene represents one neuron of a genome. Node genes are immutable once
// created; a genome only adds nodes, never removes or rewrites them.
type NodeGene struct {
	ID   int
	Role NodeRole

	// Activation names the transfer function for this node, resolved through
	// the closed table in activations.go when a phenotype is built.
	Activation string

	// Bias is the constant term for this node. For BiasNode it is also the
	// node's fixed output in feed-forward evaluation.
	Bias float64

	// TimeConstant is the CTRNN integration constant τ. Feed-forward
	// evaluation ignores it.
	TimeConstant float64
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	dup := *ng
	return &dup
}

func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(%d %s act=%s bias=%.3f tau=%.2f)",
		ng.ID, ng.Role, ng.Activation, ng.Bias, ng.TimeConstant)
}

// ConnectionGene represents a weighted, directed link between two nodes.
// Two connection genes with the same historical marking are the same gene
// across any two genomes; that alignment is what crossover depends on.
type ConnectionGene struct {
	// Innovation is the historical marking, assigned once per distinct
	// structural mutation per generation by the InnovationTracker.
	Innovation int

	In      int
	Out     int
	Weight  float64
	Enabled bool
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	dup := *cg
	return &dup
}

func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(#%d %d->%d w=%.3f enabled=%t)",
		cg.Innovation, cg.In, cg.Out, cg.Weight, cg.Enabled)
}
