package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// MulOp represents element-wise multiplication: output = a * b.
//
// d(a*b)/da = b and d(a*b)/db = a; gradients are reduced along broadcast
// dimensions.
type MulOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.Tensor{
		tensor.ReduceTo(tensor.Mul(outputGrad, b), a.Shape()),
		tensor.ReduceTo(tensor.Mul(outputGrad, a), b.Shape()),
	}
}

// Inputs returns the input tensors [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a * b.
func (op *MulOp) Output() *tensor.Tensor { return op.output }
