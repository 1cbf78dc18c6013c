package neat

import (
	"fmt"
	"math"
)

// ActivationFunc is a node transfer function. The set of activations is
// closed: nodes carry an activation tag that is resolved through the fixed
// lookup table below when a phenotype is built, so evaluation pays a plain
// function call rather than any dynamic dispatch.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps tag names to transfer functions. Configuration
// refers to activations by these names.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"sine":     Sine,
	"absolute": Absolute,
	"abs":      Absolute, // alias
}

// GetActivation retrieves an activation function by tag name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the steepened logistic function from the original NEAT paper.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (rectified linear unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped restricts its input to [-1, 1].
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Sine activation function.
func Sine(x float64) float64 {
	return math.Sin(x)
}

// Absolute activation function.
func Absolute(x float64) float64 {
	return math.Abs(x)
}
