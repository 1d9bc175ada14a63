package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// SliceOp represents a contiguous slice along one dimension:
// output = input[..., start:end, ...].
//
// Backward scatters the output gradient into a zero tensor of the input
// shape at the sliced positions; everything outside the slice receives
// zero gradient.
type SliceOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	dim    int
	start  int
}

// NewSliceOp creates a new SliceOp.
func NewSliceOp(input, output *tensor.Tensor, dim, start int) *SliceOp {
	return &SliceOp{inputs: []*tensor.Tensor{input}, output: output, dim: dim, start: start}
}

// Backward computes the input gradient for the slice.
func (op *SliceOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.Zeros(op.inputs[0].Shape())
	tensor.AddIntoSlice(grad, outputGrad, op.dim, op.start)
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *SliceOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the sliced tensor.
func (op *SliceOp) Output() *tensor.Tensor { return op.output }
