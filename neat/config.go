package neat

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/ini.v1"
)

// Config bundles every hyperparameter the engine consumes. It is loaded from
// a sectioned INI file; unknown keys are ignored, missing required keys fail
// with a ConfigError naming the key.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Species      SpeciesConfig
	Reproduction ReproductionConfig
	Stagnation   StagnationConfig
	CTRNN        CTRNNConfig
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`

	// EvalWorkers bounds the fitness-evaluation worker pool; 0 means one
	// worker per available CPU.
	EvalWorkers int `ini:"eval_workers"`
}

// GenomeConfig holds parameters governing genome structure, mutation and
// compatibility distance.
type GenomeConfig struct {
	NumInputs  int `ini:"num_inputs"`
	NumOutputs int `ini:"num_outputs"`

	// FeedForward disallows recurrent connections when true. Recurrent
	// genomes are evaluated as CTRNNs.
	FeedForward bool `ini:"feed_forward"`

	// InitialConnection selects the seeding scheme: "full" connects every
	// input (and the bias node) to every output, "unconnected" creates no
	// connections.
	InitialConnection string `ini:"initial_connection"`

	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMinValue    float64 `ini:"weight_min_value"`
	WeightMaxValue    float64 `ini:"weight_max_value"`

	ConnAddProb       float64 `ini:"conn_add_prob"`
	NodeAddProb       float64 `ini:"node_add_prob"`
	EnabledMutateRate float64 `ini:"enabled_mutate_rate"`

	ActivationDefault string `ini:"activation_default"`

	// BiasValue is the constant emitted by the bias node.
	BiasValue float64 `ini:"bias_value"`

	// TimeConstant is the CTRNN τ assigned to newly created nodes.
	TimeConstant float64 `ini:"time_constant"`

	CompatibilityExcessCoefficient   float64 `ini:"compatibility_excess_coefficient"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
}

// SpeciesConfig holds speciation parameters.
type SpeciesConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// ReproductionConfig holds crossover and parent-selection parameters.
type ReproductionConfig struct {
	// InterspeciesMatingRate is the probability that the second parent is
	// drawn from the whole population instead of the species.
	InterspeciesMatingRate float64 `ini:"interspecies_mating_rate"`

	// MateByAveraging makes matching genes inherit the arithmetic mean of
	// the parents' weights instead of one parent's weight chosen at random.
	MateByAveraging bool `ini:"mate_by_averaging"`

	// DisabledInheritProb is the probability that a matching gene disabled
	// in either parent stays disabled in the offspring.
	DisabledInheritProb float64 `ini:"disabled_inherit_prob"`
}

// StagnationConfig holds species-extinction parameters.
type StagnationConfig struct {
	MaxStagnation int `ini:"max_stagnation"`
}

// CTRNNConfig holds the integration parameters for recurrent evaluation.
type CTRNNConfig struct {
	// TimeSteps is the number of Euler substeps per external tick.
	TimeSteps int `ini:"time_steps"`

	// StepSize is the Euler step dt.
	StepSize float64 `ini:"step_size"`
}

// DefaultConfig returns a configuration with the published NEAT defaults:
// c1 = c2 = 1.0, c3 = 0.4, threshold 3.0, stagnation limit 15.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize: 150,

			// Termination on fitness is opt-in: unset, no threshold is
			// ever reached.
			FitnessThreshold: math.Inf(1),
		},
		Genome: GenomeConfig{
			NumInputs:         2,
			NumOutputs:        1,
			FeedForward:       true,
			InitialConnection: "full",
			WeightInitMean:    0.0,
			WeightInitStdev:   1.0,
			WeightMutateRate:  0.8,
			WeightReplaceRate: 0.1,
			WeightMutatePower: 0.5,
			WeightMinValue:    -30.0,
			WeightMaxValue:    30.0,
			ConnAddProb:       0.15,
			NodeAddProb:       0.05,
			EnabledMutateRate: 0.01,
			ActivationDefault: "sigmoid",
			BiasValue:         1.0,
			TimeConstant:      1.0,

			CompatibilityExcessCoefficient:   1.0,
			CompatibilityDisjointCoefficient: 1.0,
			CompatibilityWeightCoefficient:   0.4,
		},
		Species: SpeciesConfig{
			CompatibilityThreshold: 3.0,
		},
		Reproduction: ReproductionConfig{
			InterspeciesMatingRate: 0.001,
			DisabledInheritProb:    0.75,
		},
		Stagnation: StagnationConfig{
			MaxStagnation: 15,
		},
		CTRNN: CTRNNConfig{
			TimeSteps: 10,
			StepSize:  0.05,
		},
	}
}

// requiredKeys lists the keys that must be present in a config file, by
// section. Everything else falls back to DefaultConfig values.
var requiredKeys = map[string][]string{
	"NEAT":    {"pop_size"},
	"Genome":  {"num_inputs", "num_outputs"},
	"Species": {"compatibility_threshold"},
}

// LoadConfig loads configuration from an INI file. Defaults fill any
// optional key the file omits.
func LoadConfig(path string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
	}

	for section, keys := range requiredKeys {
		for _, key := range keys {
			if !file.Section(section).HasKey(key) {
				return nil, missingConfig(section + "." + key)
			}
		}
	}

	config := DefaultConfig()
	sections := map[string]any{
		"NEAT":         &config.Neat,
		"Genome":       &config.Genome,
		"Species":      &config.Species,
		"Reproduction": &config.Reproduction,
		"Stagnation":   &config.Stagnation,
		"CTRNN":        &config.CTRNN,
	}
	for name, target := range sections {
		if err := file.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", name, err)
		}
	}
	config.Genome.InitialConnection = strings.TrimSpace(config.Genome.InitialConnection)
	config.Genome.ActivationDefault = strings.TrimSpace(config.Genome.ActivationDefault)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges. Population construction refuses a config
// that fails validation.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return &ConfigError{Key: "NEAT.pop_size", Reason: "must be positive"}
	}
	if c.Neat.EvalWorkers < 0 {
		return &ConfigError{Key: "NEAT.eval_workers", Reason: "cannot be negative"}
	}
	if c.Genome.NumInputs <= 0 {
		return &ConfigError{Key: "Genome.num_inputs", Reason: "must be positive"}
	}
	if c.Genome.NumOutputs <= 0 {
		return &ConfigError{Key: "Genome.num_outputs", Reason: "must be positive"}
	}
	switch c.Genome.InitialConnection {
	case "full", "unconnected":
	default:
		return &ConfigError{Key: "Genome.initial_connection", Reason: fmt.Sprintf("unknown scheme %q", c.Genome.InitialConnection)}
	}
	if _, err := GetActivation(c.Genome.ActivationDefault); err != nil {
		return &ConfigError{Key: "Genome.activation_default", Reason: err.Error()}
	}
	for key, p := range map[string]float64{
		"Genome.weight_mutate_rate":             c.Genome.WeightMutateRate,
		"Genome.weight_replace_rate":            c.Genome.WeightReplaceRate,
		"Genome.conn_add_prob":                  c.Genome.ConnAddProb,
		"Genome.node_add_prob":                  c.Genome.NodeAddProb,
		"Genome.enabled_mutate_rate":            c.Genome.EnabledMutateRate,
		"Reproduction.interspecies_mating_rate": c.Reproduction.InterspeciesMatingRate,
		"Reproduction.disabled_inherit_prob":    c.Reproduction.DisabledInheritProb,
	} {
		if p < 0 || p > 1 {
			return &ConfigError{Key: key, Reason: "must be between 0 and 1"}
		}
	}
	if c.Genome.WeightMaxValue < c.Genome.WeightMinValue {
		return &ConfigError{Key: "Genome.weight_max_value", Reason: "cannot be less than weight_min_value"}
	}
	if c.Genome.WeightInitStdev < 0 {
		return &ConfigError{Key: "Genome.weight_init_stdev", Reason: "cannot be negative"}
	}
	if c.Genome.WeightMutatePower < 0 {
		return &ConfigError{Key: "Genome.weight_mutate_power", Reason: "cannot be negative"}
	}
	if c.Genome.TimeConstant <= 0 {
		return &ConfigError{Key: "Genome.time_constant", Reason: "must be positive"}
	}
	for key, coeff := range map[string]float64{
		"Genome.compatibility_excess_coefficient":   c.Genome.CompatibilityExcessCoefficient,
		"Genome.compatibility_disjoint_coefficient": c.Genome.CompatibilityDisjointCoefficient,
		"Genome.compatibility_weight_coefficient":   c.Genome.CompatibilityWeightCoefficient,
	} {
		if coeff < 0 {
			return &ConfigError{Key: key, Reason: "cannot be negative"}
		}
	}
	if c.Species.CompatibilityThreshold <= 0 {
		return &ConfigError{Key: "Species.compatibility_threshold", Reason: "must be positive"}
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return &ConfigError{Key: "Stagnation.max_stagnation", Reason: "must be positive"}
	}
	if c.CTRNN.TimeSteps <= 0 {
		return &ConfigError{Key: "CTRNN.time_steps", Reason: "must be positive"}
	}
	if c.CTRNN.StepSize <= 0 {
		return &ConfigError{Key: "CTRNN.step_size", Reason: "must be positive"}
	}
	return nil
}
