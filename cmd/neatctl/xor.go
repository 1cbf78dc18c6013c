package main

import (
	"neatevo/neat"
	"neatevo/neat/nn"
)

// xorCases is the canonical benchmark task: two binary inputs, one output.
var xorCases = [][3]float64{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

// xorFitness scores a genome on XOR: 4 minus the summed squared error over
// the four cases, so a perfect network scores 4.0. A fitness threshold of
// 3.9 is the usual solved criterion.
func xorFitness(g *neat.Genome) (float64, error) {
	net, err := nn.NewFeedForward(g)
	if err != nil {
		return 0, err
	}

	fitness := 4.0
	for _, c := range xorCases {
		out, err := net.Activate([]float64{c[0], c[1]})
		if err != nil {
			return 0, err
		}
		diff := out[0] - c[2]
		fitness -= diff * diff
	}
	return fitness, nil
}

// xorConfig returns the default configuration tuned for the XOR task.
func xorConfig() *neat.Config {
	cfg := neat.DefaultConfig()
	cfg.Neat.FitnessThreshold = 3.9
	cfg.Genome.NumInputs = 2
	cfg.Genome.NumOutputs = 1
	return cfg
}
