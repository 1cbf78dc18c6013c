package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"neatevo/internal/store"
	"neatevo/neat"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a population on the XOR benchmark",
		Long: `Run NEAT on the XOR task until the fitness threshold is reached
or the generation limit is exhausted.

Examples:
  neatctl run --seed 42 --generations 300
  neatctl run --config xor.ini --db runs.db --checkpoint xor.ckpt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			seed, _ := cmd.Flags().GetInt64("seed")
			generations, _ := cmd.Flags().GetInt("generations")
			checkpointPath, _ := cmd.Flags().GetString("checkpoint")
			genomePath, _ := cmd.Flags().GetString("save-genome")
			dbPath, _ := cmd.Flags().GetString("db")

			cfg := xorConfig()
			if configPath != "" {
				loaded, err := neat.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			pop, err := neat.NewPopulation(cfg, seed)
			if err != nil {
				return err
			}
			return driveRun(cmd.Context(), pop, generations, checkpointPath, genomePath, dbPath, seed)
		},
	}

	cmd.Flags().String("config", "", "INI config file (defaults to built-in XOR settings)")
	cmd.Flags().Int64("seed", 0, "Random seed; the same seed reproduces the run exactly")
	cmd.Flags().Int("generations", 300, "Maximum number of generations")
	cmd.Flags().String("checkpoint", "", "Write a checkpoint here after the run")
	cmd.Flags().String("save-genome", "", "Write the champion genome as JSON here")

	return cmd
}

// driveRun executes the generation loop with optional archiving, and is
// shared between a fresh run and a checkpoint resume.
func driveRun(ctx context.Context, pop *neat.Population, generations int, checkpointPath, genomePath, dbPath string, seed int64) error {
	var archive store.Store
	runID := uuid.NewString()
	if dbPath != "" {
		s := store.NewSQLiteStore(dbPath)
		if err := s.Init(ctx); err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		defer s.Close()
		archive = s

		err := archive.CreateRun(ctx, store.RunRecord{
			ID:        runID,
			Task:      "xor",
			Seed:      seed,
			StartedAt: time.Now(),
			Status:    store.RunRunning,
		})
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		fmt.Printf("run %s\n", runID)
	}

	solved := false
	lastGen := pop.Generation
	report := func(stats *neat.GenerationStats) {
		lastGen = stats.Generation
		solved = stats.Solved
		fmt.Printf("gen %4d  best %7.4f  mean %7.4f  species %3d",
			stats.Generation, stats.BestFitness, stats.MeanFitness, stats.NumSpecies)
		if stats.EvalFailures > 0 {
			fmt.Printf("  failures %d", stats.EvalFailures)
		}
		fmt.Println()

		if archive != nil {
			err := archive.AppendGeneration(ctx, store.GenerationRecord{
				RunID:        runID,
				Generation:   stats.Generation,
				BestFitness:  stats.BestFitness,
				MeanFitness:  stats.MeanFitness,
				StdevFitness: stats.StdevFitness,
				NumSpecies:   stats.NumSpecies,
				EvalFailures: stats.EvalFailures,
			})
			if err != nil {
				fmt.Printf("warning: failed to archive generation: %v\n", err)
			}
		}
	}

	champion, runErr := pop.Run(xorFitness, generations, report)

	bestFitness := math.Inf(-1)
	if champion != nil {
		bestFitness = champion.Fitness
	}
	if archive != nil {
		status := store.RunExhausted
		switch {
		case runErr != nil:
			status = store.RunFailed
		case solved:
			status = store.RunSolved
		}
		if err := archive.FinishRun(ctx, runID, status, bestFitness, lastGen+1); err != nil {
			fmt.Printf("warning: failed to finalize run: %v\n", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if solved {
		fmt.Printf("solved at generation %d with fitness %.4f\n", lastGen, bestFitness)
	} else {
		fmt.Printf("generation limit reached; best fitness %.4f\n", bestFitness)
	}

	if champion != nil {
		if genomePath != "" {
			if err := neat.SaveGenome(genomePath, champion); err != nil {
				return err
			}
			fmt.Printf("champion written to %s\n", genomePath)
		}
		if archive != nil {
			if data, err := championJSON(champion); err == nil {
				if err := archive.SaveChampion(ctx, runID, data); err != nil {
					fmt.Printf("warning: failed to archive champion: %v\n", err)
				}
			}
		}
	}
	if checkpointPath != "" {
		if err := pop.SaveCheckpoint(checkpointPath); err != nil {
			return err
		}
		fmt.Printf("checkpoint written to %s\n", checkpointPath)
	}
	return nil
}
