// Package neat implements the NeuroEvolution of Augmenting Topologies (NEAT)
// algorithm: a genetic algorithm that evolves both the weights and the
// structure of neural networks, starting from minimal topologies and growing
// them through mutation while speciation protects new structure long enough
// to be optimized.
//
// Genomes encode networks as node and connection genes; connection genes
// carry historical markings assigned by an InnovationTracker, which is what
// lets crossover align genes between structurally different parents. The
// nn subpackage turns genomes into runnable networks, feed-forward or
// continuous-time recurrent.
//
// Basic usage:
//
//	config := neat.DefaultConfig()
//	config.Neat.FitnessThreshold = 3.9
//
//	pop, err := neat.NewPopulation(config, 42)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	champion, err := pop.Run(evalGenome, 300, nil)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Printf("best fitness: %.4f\n", champion.Fitness)
//
// Runs are deterministic for a given seed, and a population restored from a
// checkpoint continues exactly as the original run would have.
package neat
