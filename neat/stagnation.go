package neat

// UpdateStagnation refreshes each species' best-fitness watermark after
// evaluation. A species that improves its all-time best resets its staleness
// counter; otherwise the counter advances by one.
func (ss *SpeciesSet) UpdateStagnation() {
	for _, s := range ss.Sorted() {
		best := s.BestMember()
		if best == nil {
			continue
		}
		if best.Fitness > s.BestFitness {
			s.BestFitness = best.Fitness
			s.Staleness = 0
		} else {
			s.Staleness++
		}
	}
}

// PruneStagnant removes species whose staleness reached the limit. The
// species containing the population's overall best genome is always spared,
// so a converged run cannot extinguish its own champion. Returns the ids of
// the removed species in ascending order.
func (ss *SpeciesSet) PruneStagnant(limit int, bestSpeciesID int) []int {
	removed := []int{}
	for _, s := range ss.Sorted() {
		if s.ID == bestSpeciesID {
			continue
		}
		if s.Staleness >= limit {
			removed = append(removed, s.ID)
			delete(ss.Species, s.ID)
		}
	}
	return removed
}
