// Package ops defines the differentiable operations recorded on the
// gradient tape. Each operation stores its inputs and output and knows how
// to push an output gradient back to its input gradients.
package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// Operation is one recorded step of the forward pass.
type Operation interface {
	// Inputs returns the input tensors in positional order.
	Inputs() []*tensor.Tensor

	// Output returns the tensor produced by the forward pass.
	Output() *tensor.Tensor

	// Backward computes the gradient of each input given the gradient of
	// the output, in the same positional order as Inputs. A nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.Tensor) []*tensor.Tensor
}
