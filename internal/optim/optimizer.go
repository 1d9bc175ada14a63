// Package optim implements the optimization algorithms used to train the
// forecaster: SGD with momentum, AdamW, and the learning-rate schedulers
// that drive them across a training run.
package optim

import (
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters in-place based on the gradient map
// produced by a backward pass. Gradients are keyed by the parameter's
// tensor pointer.
type Optimizer interface {
	// Step applies one gradient update to every parameter that has an
	// entry in the gradient map; parameters without gradients are skipped.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// ZeroGrad clears all parameter gradients. Call before each backward
	// pass to prevent accumulation across iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate; schedulers call this every step.
	SetLR(lr float64)
}

// getGradient retrieves the gradient for a parameter, or nil when the
// parameter did not participate in the recorded computation.
func getGradient(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor()]
}
