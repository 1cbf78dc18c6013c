package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "neatctl",
		Short: "NEAT neuroevolution runner",
		Long: `neatctl evolves neural networks with NEAT: it grows network
topologies through mutation and crossover, protects innovation through
speciation, and archives runs for later comparison.`,
	}

	rootCmd.PersistentFlags().String("db", "", "SQLite run archive path (empty disables archiving)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRunsCmd(),
		newCheckpointCmd(),
		newGenomeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("neatctl version %s\n", version)
		},
	}
}
