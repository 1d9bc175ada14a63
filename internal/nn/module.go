// Package nn implements the neural network building blocks the forecaster
// is assembled from: the Module interface, trainable Parameters, Linear
// layers, activations, the Sequential container, weight initialization and
// element-wise losses.
package nn

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Forward computes the module output through the given engine so the
// operation is recorded for differentiation; Parameters returns every
// trainable parameter, including those of nested modules.
type Module interface {
	Forward(e *autodiff.Engine, input *tensor.Tensor) *tensor.Tensor
	Parameters() []*Parameter
}
