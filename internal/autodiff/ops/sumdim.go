package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// SumDimOp represents a sum reduction along one dimension.
//
// Each input element contributes with weight 1, so the backward pass
// broadcasts the output gradient back to the input shape.
type SumDimOp struct {
	inputs  []*tensor.Tensor
	output  *tensor.Tensor
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(input, output *tensor.Tensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{inputs: []*tensor.Tensor{input}, output: output, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the output gradient to the input shape.
func (op *SumDimOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	inShape := op.inputs[0].Shape()
	grad := outputGrad
	if !op.keepDim {
		// Re-insert the reduced dimension as size 1 before broadcasting.
		kept := inShape.Clone()
		kept[op.dim] = 1
		grad = tensor.Reshape(grad, kept)
	}
	return []*tensor.Tensor{tensor.BroadcastTo(grad, inShape)}
}

// Inputs returns the input tensor.
func (op *SumDimOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the reduced tensor.
func (op *SumDimOp) Output() *tensor.Tensor { return op.output }
