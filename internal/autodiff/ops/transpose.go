package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// TransposeOp represents a 2D transpose.
//
// Even though transpose is conceptually a view, it allocates a new tensor,
// so it must be recorded: without it, gradients computed for the transposed
// tensor would never reach the original parameter.
type TransposeOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.Tensor) *TransposeOp {
	return &TransposeOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward transposes the output gradient back to the input layout.
func (op *TransposeOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Transpose2D(outputGrad)}
}

// Inputs returns the input tensor.
func (op *TransposeOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the transposed tensor.
func (op *TransposeOp) Output() *tensor.Tensor { return op.output }
