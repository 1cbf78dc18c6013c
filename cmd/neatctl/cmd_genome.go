package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"neatevo/neat"
	"neatevo/neat/nn"
)

// championJSON serializes a genome for the run archive.
func championJSON(g *neat.Genome) ([]byte, error) {
	return json.Marshal(g.Record())
}

func newGenomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genome",
		Short: "Inspect saved genomes",
	}
	cmd.AddCommand(newGenomeShowCmd(), newGenomeEvalCmd())
	return cmd
}

func newGenomeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a saved genome's structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := neat.LoadGenome(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Genome %d: %d nodes, %d connections, fitness %.4f\n",
				g.ID, len(g.Nodes), len(g.Connections), g.Fitness)
			for _, n := range g.SortedNodes() {
				fmt.Printf("  %s\n", n)
			}
			for _, c := range g.SortedConnections() {
				fmt.Printf("  %s\n", c)
			}
			return nil
		},
	}
}

func newGenomeEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <file>",
		Short: "Run a saved genome against the XOR cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := neat.LoadGenome(args[0])
			if err != nil {
				return err
			}
			net, err := nn.NewFeedForward(g)
			if err != nil {
				return err
			}

			for _, c := range xorCases {
				out, err := net.Activate([]float64{c[0], c[1]})
				if err != nil {
					return err
				}
				fmt.Printf("  %g XOR %g = %.4f (want %g)\n", c[0], c[1], out[0], c[2])
			}
			fitness, err := xorFitness(g)
			if err != nil {
				return err
			}
			fmt.Printf("fitness %.4f\n", fitness)
			return nil
		},
	}
}
