package nn

import "github.com/dashirov/neural-prophet/internal/tensor"

// Parameter is a trainable tensor with an associated gradient slot.
//
// Gradients are produced by the autodiff backward pass and attached by the
// training loop; the optimizer reads and clears them.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a trainable parameter wrapping an initialized tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor { return p.tensor }

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.Tensor { return p.grad }

// SetGrad attaches a gradient tensor.
func (p *Parameter) SetGrad(grad *tensor.Tensor) { p.grad = grad }

// ZeroGrad clears the gradient. Must be called before each training
// iteration to avoid accumulating stale gradients.
func (p *Parameter) ZeroGrad() { p.grad = nil }
