package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"neatevo/neat"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect and resume run checkpoints",
	}
	cmd.AddCommand(newCheckpointInspectCmd(), newCheckpointResumeCmd())
	return cmd
}

func newCheckpointInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a checkpoint's summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			pop, err := neat.LoadCheckpoint(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Checkpoint %s (%s)\n", args[0], humanize.Bytes(uint64(info.Size())))
			fmt.Printf("  Generation: %d\n", pop.Generation)
			fmt.Printf("  Seed:       %d\n", pop.Seed)
			fmt.Printf("  Population: %d genomes\n", len(pop.Genomes))
			fmt.Printf("  Species:    %d\n", len(pop.Species.Species))
			if pop.Best != nil {
				fmt.Printf("  Best:       genome %d, fitness %.4f, %d nodes, %d connections\n",
					pop.Best.ID, pop.Best.Fitness, len(pop.Best.Nodes), len(pop.Best.Connections))
			}
			return nil
		},
	}
}

func newCheckpointResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <file>",
		Short: "Resume an XOR run from a checkpoint",
		Long: `Resume evolution from a checkpoint. A resumed run continues exactly
as the original would have: the per-generation random state derives from
the run seed and the generation number, both stored in the checkpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generations, _ := cmd.Flags().GetInt("generations")
			checkpointPath, _ := cmd.Flags().GetString("checkpoint")
			genomePath, _ := cmd.Flags().GetString("save-genome")
			dbPath, _ := cmd.Flags().GetString("db")

			pop, err := neat.LoadCheckpoint(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("resuming at generation %d\n", pop.Generation)
			return driveRun(cmd.Context(), pop, generations, checkpointPath, genomePath, dbPath, pop.Seed)
		},
	}

	cmd.Flags().Int("generations", 300, "Maximum number of further generations")
	cmd.Flags().String("checkpoint", "", "Write a new checkpoint here after the run")
	cmd.Flags().String("save-genome", "", "Write the champion genome as JSON here")

	return cmd
}
