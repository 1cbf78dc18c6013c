package neat

import "sort"

// Species groups structurally similar genomes so that fitness sharing can
// protect new topologies while they optimize.
type Species struct {
	ID int

	// Created is the generation the species first appeared in.
	Created int

	// Representative is a copy of one member genome; compatibility is
	// always measured against it, never against live members.
	Representative *Genome

	// Members holds the genomes assigned this generation, in assignment
	// order. Cleared before each speciation pass.
	Members []*Genome

	// BestFitness is the highest raw fitness any member has ever reached.
	// Staleness counts consecutive generations without improving it.
	BestFitness float64
	Staleness   int

	// AdjustedFitness is the sum of the members' shared fitness, recomputed
	// each generation by the reproducer.
	AdjustedFitness float64
}

// BestMember returns the member with the highest raw fitness, with the lower
// genome key winning ties. Nil for an empty species.
func (s *Species) BestMember() *Genome {
	var best *Genome
	for _, g := range s.Members {
		if best == nil || g.Fitness > best.Fitness || (g.Fitness == best.Fitness && g.ID < best.ID) {
			best = g
		}
	}
	return best
}

// SpeciesSet maintains the living species across generations and assigns
// genomes to them.
type SpeciesSet struct {
	Species map[int]*Species
	nextID  int
}

// NewSpeciesSet creates an empty species set. Species ids start at 1 so that
// a genome's zero SpeciesID always means unassigned.
func NewSpeciesSet() *SpeciesSet {
	return &SpeciesSet{Species: make(map[int]*Species), nextID: 1}
}

// Sorted returns the species ordered by id, which is also creation order.
func (ss *SpeciesSet) Sorted() []*Species {
	out := make([]*Species, 0, len(ss.Species))
	for _, s := range ss.Species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Speciate partitions the genomes into species. Each genome joins the first
// existing species, in creation order, whose representative lies within the
// compatibility threshold; if none qualifies, a new species is founded with
// the genome as representative. Representatives are held fixed throughout
// the pass, then refreshed to a copy of each species' first member so the
// next generation measures against a current genome. Species left empty are
// removed.
func (ss *SpeciesSet) Speciate(genomes []*Genome, generation int, gCfg *GenomeConfig, sCfg *SpeciesConfig) {
	for _, s := range ss.Species {
		s.Members = s.Members[:0]
	}

	ordered := ss.Sorted()
	for _, g := range genomes {
		g.SpeciesID = 0
		for _, s := range ordered {
			if g.Distance(s.Representative, gCfg) < sCfg.CompatibilityThreshold {
				s.Members = append(s.Members, g)
				g.SpeciesID = s.ID
				break
			}
		}
		if g.SpeciesID == 0 {
			s := &Species{
				ID:             ss.nextID,
				Created:        generation,
				Representative: g.Copy(g.ID),
				Members:        []*Genome{g},
			}
			ss.nextID++
			ss.Species[s.ID] = s
			ordered = append(ordered, s)
			g.SpeciesID = s.ID
		}
	}

	for id, s := range ss.Species {
		if len(s.Members) == 0 {
			delete(ss.Species, id)
			continue
		}
		s.Representative = s.Members[0].Copy(s.Members[0].ID)
	}
}
