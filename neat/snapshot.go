package neat

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
)

// NodeRecord is the serialized form of a NodeGene.
type NodeRecord struct {
	ID           int
	Role         string
	Activation   string
	Bias         float64
	TimeConstant float64
}

// ConnectionRecord is the serialized form of a ConnectionGene.
type ConnectionRecord struct {
	Innovation int
	In         int
	Out        int
	Weight     float64
	Enabled    bool
}

// GenomeRecord is the serialized form of a Genome. Genes are stored in
// sorted order so two snapshots of the same genome are byte-identical.
type GenomeRecord struct {
	ID          int
	Nodes       []NodeRecord
	Connections []ConnectionRecord
	Fitness     float64
	SpeciesID   int
}

// SpeciesRecord is the serialized form of a Species. Membership is not
// stored; it is recovered from the genomes' SpeciesID on restore.
type SpeciesRecord struct {
	ID             int
	Created        int
	Representative GenomeRecord
	BestFitness    float64
	Staleness      int
}

// Snapshot captures everything needed to resume a run: the configuration,
// every genome, the species bookkeeping and the id counters. A restored
// population produces bit-identical generations to the original run.
type Snapshot struct {
	Config         *Config
	Seed           int64
	Generation     int
	NextGenomeID   int
	NextSpeciesID  int
	InnovationHead int
	Genomes        []GenomeRecord
	Species        []SpeciesRecord
	Best           *GenomeRecord
}

// Record converts a genome to its serialized form.
func (g *Genome) Record() GenomeRecord {
	rec := GenomeRecord{
		ID:        g.ID,
		Fitness:   g.Fitness,
		SpeciesID: g.SpeciesID,
	}
	for _, n := range g.SortedNodes() {
		rec.Nodes = append(rec.Nodes, NodeRecord{
			ID:           n.ID,
			Role:         n.Role.String(),
			Activation:   n.Activation,
			Bias:         n.Bias,
			TimeConstant: n.TimeConstant,
		})
	}
	for _, c := range g.SortedConnections() {
		rec.Connections = append(rec.Connections, ConnectionRecord{
			Innovation: c.Innovation,
			In:         c.In,
			Out:        c.Out,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
		})
	}
	return rec
}

// Genome rebuilds a genome from its serialized form.
func (rec GenomeRecord) Genome() (*Genome, error) {
	g := NewGenome(rec.ID)
	g.Fitness = rec.Fitness
	g.SpeciesID = rec.SpeciesID
	for _, nr := range rec.Nodes {
		role, err := ParseNodeRole(nr.Role)
		if err != nil {
			return nil, fmt.Errorf("genome %d node %d: %w", rec.ID, nr.ID, err)
		}
		g.Nodes[nr.ID] = &NodeGene{
			ID:           nr.ID,
			Role:         role,
			Activation:   nr.Activation,
			Bias:         nr.Bias,
			TimeConstant: nr.TimeConstant,
		}
	}
	for _, cr := range rec.Connections {
		g.Connections[cr.Innovation] = &ConnectionGene{
			Innovation: cr.Innovation,
			In:         cr.In,
			Out:        cr.Out,
			Weight:     cr.Weight,
			Enabled:    cr.Enabled,
		}
	}
	if err := g.Validate(false); err != nil {
		return nil, err
	}
	return g, nil
}

// checkArity verifies a restored genome carries the input and output node
// counts the configuration declares. A checkpoint or genome file written
// under a different topology cannot be resumed against this config.
func checkArity(g *Genome, cfg *GenomeConfig) error {
	if len(g.NodeIDsByRole(InputNode)) != cfg.NumInputs {
		return &StructuralError{GenomeID: g.ID, Err: ErrInputSizeMismatch}
	}
	if len(g.NodeIDsByRole(OutputNode)) != cfg.NumOutputs {
		return &StructuralError{GenomeID: g.ID, Err: ErrOutputSizeMismatch}
	}
	return nil
}

// Snapshot captures the population's complete state between generations.
func (p *Population) Snapshot() *Snapshot {
	snap := &Snapshot{
		Config:         p.Config,
		Seed:           p.Seed,
		Generation:     p.Generation,
		NextGenomeID:   p.nextGenomeID,
		NextSpeciesID:  p.Species.nextID,
		InnovationHead: p.Tracker.Head(),
	}
	for _, g := range p.Genomes {
		snap.Genomes = append(snap.Genomes, g.Record())
	}
	for _, s := range p.Species.Sorted() {
		snap.Species = append(snap.Species, SpeciesRecord{
			ID:             s.ID,
			Created:        s.Created,
			Representative: s.Representative.Record(),
			BestFitness:    s.BestFitness,
			Staleness:      s.Staleness,
		})
	}
	if p.Best != nil {
		rec := p.Best.Record()
		snap.Best = &rec
	}
	return snap
}

// RestorePopulation rebuilds a population from a snapshot. The restored
// population continues the run deterministically: the same fitness function
// yields the same genomes the original run would have produced.
func RestorePopulation(snap *Snapshot) (*Population, error) {
	if err := snap.Config.Validate(); err != nil {
		return nil, err
	}

	p := &Population{
		Config:       snap.Config,
		Species:      NewSpeciesSet(),
		Generation:   snap.Generation,
		Tracker:      NewInnovationTracker(snap.InnovationHead),
		Seed:         snap.Seed,
		nextGenomeID: snap.NextGenomeID,
	}
	p.reproducer = NewReproducer(snap.Config, p.Tracker)
	p.Species.nextID = snap.NextSpeciesID

	for _, rec := range snap.Genomes {
		g, err := rec.Genome()
		if err != nil {
			return nil, err
		}
		if err := checkArity(g, &snap.Config.Genome); err != nil {
			return nil, err
		}
		p.Genomes = append(p.Genomes, g)
	}
	for _, sr := range snap.Species {
		rep, err := sr.Representative.Genome()
		if err != nil {
			return nil, err
		}
		s := &Species{
			ID:             sr.ID,
			Created:        sr.Created,
			Representative: rep,
			BestFitness:    sr.BestFitness,
			Staleness:      sr.Staleness,
		}
		for _, g := range p.Genomes {
			if g.SpeciesID == s.ID {
				s.Members = append(s.Members, g)
			}
		}
		p.Species.Species[s.ID] = s
	}
	if snap.Best != nil {
		best, err := snap.Best.Genome()
		if err != nil {
			return nil, err
		}
		p.Best = best
	}
	return p, nil
}

// SaveCheckpoint writes a gzip-compressed gob snapshot of the population.
func (p *Population) SaveCheckpoint(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	if err := gob.NewEncoder(zw).Encode(p.Snapshot()); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish checkpoint: %w", err)
	}
	return file.Sync()
}

// LoadCheckpoint restores a population from a checkpoint file written by
// SaveCheckpoint.
func LoadCheckpoint(path string) (*Population, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	defer zr.Close()

	var snap Snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return RestorePopulation(&snap)
}

// SaveGenome writes a single genome as indented JSON, for inspection or for
// reloading a champion into another process.
func SaveGenome(path string, g *Genome) error {
	data, err := json.MarshalIndent(g.Record(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal genome: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadGenome reads a genome written by SaveGenome.
func LoadGenome(path string) (*Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome file: %w", err)
	}
	var rec GenomeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genome: %w", err)
	}
	return rec.Genome()
}
