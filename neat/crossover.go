package neat

import (
	"math/rand"
	"sort"
)

// Crossover recombines two parents into an offspring genome with the given
// key. Genes are aligned by historical marking: matching genes inherit a
// weight from one parent at random (or the mean, when MateByAveraging is
// set), while disjoint and excess genes come from the fitter parent. When
// the parents' fitness is equal, unmatched genes from both parents are
// included. A matching gene disabled in either parent stays disabled with
// probability DisabledInheritProb.
//
// Crossing a genome with itself reproduces it exactly, up to the new key.
func Crossover(childID int, p1, p2 *Genome, cfg *ReproductionConfig, rng *rand.Rand) *Genome {
	child := NewGenome(childID)

	// Node set first: the union of both parents, preferring p1's copy of a
	// node both carry. Connection inheritance below can then never dangle.
	for id, n := range p2.Nodes {
		child.Nodes[id] = n.Copy()
	}
	for id, n := range p1.Nodes {
		child.Nodes[id] = n.Copy()
	}

	markings := map[int]bool{}
	for inno := range p1.Connections {
		markings[inno] = true
	}
	for inno := range p2.Connections {
		markings[inno] = true
	}
	sorted := make([]int, 0, len(markings))
	for inno := range markings {
		sorted = append(sorted, inno)
	}
	sort.Ints(sorted)

	for _, inno := range sorted {
		c1, in1 := p1.Connections[inno]
		c2, in2 := p2.Connections[inno]

		var gene *ConnectionGene
		switch {
		case in1 && in2:
			if cfg.MateByAveraging {
				gene = c1.Copy()
				gene.Weight = (c1.Weight + c2.Weight) / 2.0
			} else if rng.Float64() < 0.5 {
				gene = c1.Copy()
			} else {
				gene = c2.Copy()
			}
			if !c1.Enabled || !c2.Enabled {
				gene.Enabled = rng.Float64() >= cfg.DisabledInheritProb
			}
		case in1:
			if p1.Fitness < p2.Fitness {
				continue
			}
			gene = c1.Copy()
		default:
			if p2.Fitness < p1.Fitness {
				continue
			}
			gene = c2.Copy()
		}
		child.Connections[gene.Innovation] = gene
	}

	return child
}
