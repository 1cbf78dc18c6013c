// Package store archives evolution runs: one row per run, one row per
// completed generation, and the champion genome of each run, so finished
// experiments can be listed and compared after the process exits.
package store

import (
	"context"
	"time"
)

// RunStatus tracks a run's lifecycle in the archive.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSolved    RunStatus = "solved"
	RunExhausted RunStatus = "exhausted"
	RunFailed    RunStatus = "failed"
)

// RunRecord describes one evolution run.
type RunRecord struct {
	ID        string
	Task      string
	Seed      int64
	StartedAt time.Time
	Status    RunStatus

	// BestFitness and Generations reflect the archive's latest view of the
	// run; they are updated when the run finishes.
	BestFitness float64
	Generations int
}

// GenerationRecord is the per-generation summary appended as a run proceeds.
type GenerationRecord struct {
	RunID        string
	Generation   int
	BestFitness  float64
	MeanFitness  float64
	StdevFitness float64
	NumSpecies   int
	EvalFailures int
}

// Store is the run archive. Implementations must be safe for concurrent use.
type Store interface {
	Init(ctx context.Context) error
	CreateRun(ctx context.Context, run RunRecord) error
	FinishRun(ctx context.Context, id string, status RunStatus, bestFitness float64, generations int) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	AppendGeneration(ctx context.Context, rec GenerationRecord) error
	Generations(ctx context.Context, runID string) ([]GenerationRecord, error)
	SaveChampion(ctx context.Context, runID string, genomeJSON []byte) error
	GetChampion(ctx context.Context, runID string) ([]byte, bool, error)
	Close() error
}
