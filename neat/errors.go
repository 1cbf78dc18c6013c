package neat

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural genome problems. They are wrapped in a
// StructuralError by the operation that detects them, so callers can test
// with errors.Is while still seeing which genome was corrupted.
var (
	// ErrDuplicateConnection is returned when a connection between the same
	// ordered node pair already exists in the genome.
	ErrDuplicateConnection = errors.New("duplicate connection")

	// ErrCyclicTopology is returned when a feed-forward network is requested
	// for a genome whose enabled connections form a cycle.
	ErrCyclicTopology = errors.New("cyclic topology")

	// ErrDanglingNode is returned when a connection references a node id that
	// does not exist in the genome's node set.
	ErrDanglingNode = errors.New("dangling node reference")

	// ErrInputSizeMismatch is returned by Activate when the input slice does
	// not match the network's declared input-node count.
	ErrInputSizeMismatch = errors.New("input size mismatch")

	// ErrOutputSizeMismatch is returned when a genome's output-node count does
	// not match the configured number of outputs, e.g. restoring a checkpoint
	// written under a different topology.
	ErrOutputSizeMismatch = errors.New("output size mismatch")
)

// StructuralError indicates a corrupted genome. It is always fatal to the
// operation that produced it.
type StructuralError struct {
	GenomeID int
	Err      error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("genome %d: %v", e.GenomeID, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// ConfigError reports a missing or out-of-range hyperparameter. It is fatal
// at population construction time and never recovered automatically.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// missingConfig builds the error for a required key absent from the file.
func missingConfig(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "required key is missing"}
}
