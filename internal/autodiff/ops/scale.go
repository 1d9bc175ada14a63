package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// ScaleOp represents multiplication by a scalar constant: output = s * input.
type ScaleOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	s      float64
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(input, output *tensor.Tensor, s float64) *ScaleOp {
	return &ScaleOp{inputs: []*tensor.Tensor{input}, output: output, s: s}
}

// Backward scales the output gradient by the same constant.
func (op *ScaleOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Scale(outputGrad, op.s)}
}

// Inputs returns the input tensor.
func (op *ScaleOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns s * input.
func (op *ScaleOp) Output() *tensor.Tensor { return op.output }

// AddScalarOp represents addition of a scalar constant: output = input + s.
// The constant does not participate in differentiation.
type AddScalarOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.Tensor) *AddScalarOp {
	return &AddScalarOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad.Clone()}
}

// Inputs returns the input tensor.
func (op *AddScalarOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns input + s.
func (op *AddScalarOp) Output() *tensor.Tensor { return op.output }
