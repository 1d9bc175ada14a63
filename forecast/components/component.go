// Package components implements the forecaster's component sub-models:
// piecewise-linear trend, Fourier seasonality, and the scalar-effect
// blocks behind events and future regressors. Each component turns its
// feature slice into a per-quantile contribution tensor; the composition
// engine in the forecast package decides how contributions combine.
package components

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Component is the contract every sub-model implements: evaluate the
// component over its input features, selecting per-series parameters by
// the meta index vector when the component is not globally shared.
// Output shape is (batch, timeSteps, quantiles).
type Component interface {
	Evaluate(e *autodiff.Engine, input *tensor.Tensor, meta []int) *tensor.Tensor
	Parameters() []*nn.Parameter
}

// Regularized is implemented by components that contribute their own
// regularization terms: a gated sparsity/smoothness term and an always-on
// penalty tying per-series parameters to their shared counterpart.
type Regularized interface {
	// SparsityTerm returns the component's gated regularization scalar
	// already weighted by its configured lambda, or nil when disabled.
	SparsityTerm(e *autodiff.Engine) *tensor.Tensor
	// LocalDeviationTerm returns the always-on local-parameter penalty
	// already weighted, or nil when the component is globally shared or
	// the local weight is zero.
	LocalDeviationTerm(e *autodiff.Engine) *tensor.Tensor
}

// broadcastMeta returns a series-0 index vector when a local component
// needs series identity but the batch carried none.
func broadcastMeta(meta []int, batchSize int) []int {
	if meta != nil {
		return meta
	}
	return make([]int, batchSize)
}
