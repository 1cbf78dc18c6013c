package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"neatevo/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run archive",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

// openArchive opens the run archive named by the persistent --db flag.
func openArchive(cmd *cobra.Command) (store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		return nil, fmt.Errorf("--db is required for archive commands")
	}
	s := store.NewSQLiteStore(dbPath)
	if err := s.Init(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}
	return s, nil
}

func newRunsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer archive.Close()

			runs, err := archive.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs archived yet.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %-6s %-9s  started %-14s  seed %-12d best %7.4f  %s gens\n",
					run.ID, run.Task, run.Status,
					humanize.Time(run.StartedAt),
					run.Seed, run.BestFitness,
					humanize.Comma(int64(run.Generations)))
			}
			return nil
		},
	}
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-generation stats for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer archive.Close()

			ctx := cmd.Context()
			run, ok, err := archive.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s not found", args[0])
			}

			fmt.Printf("Run %s\n", run.ID)
			fmt.Printf("  Task:    %s\n", run.Task)
			fmt.Printf("  Seed:    %d\n", run.Seed)
			fmt.Printf("  Started: %s (%s)\n", run.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
			fmt.Printf("  Status:  %s\n", run.Status)
			fmt.Printf("  Best:    %.4f over %s generations\n", run.BestFitness, humanize.Comma(int64(run.Generations)))
			fmt.Println()

			gens, err := archive.Generations(ctx, run.ID)
			if err != nil {
				return err
			}
			for _, g := range gens {
				fmt.Printf("  gen %4d  best %7.4f  mean %7.4f ± %6.4f  species %3d",
					g.Generation, g.BestFitness, g.MeanFitness, g.StdevFitness, g.NumSpecies)
				if g.EvalFailures > 0 {
					fmt.Printf("  failures %d", g.EvalFailures)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
