package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// DivOp represents element-wise division: output = a / b.
//
// d(a/b)/da = 1/b and d(a/b)/db = -a/b².
type DivOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.Tensor) *DivOp {
	return &DivOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := tensor.ReduceTo(tensor.Div(outputGrad, b), a.Shape())
	// -g * a / b²
	gradB := tensor.Neg(tensor.Div(tensor.Mul(outputGrad, a), tensor.Mul(b, b)))
	return []*tensor.Tensor{gradA, tensor.ReduceTo(gradB, b.Shape())}
}

// Inputs returns the input tensors [a, b].
func (op *DivOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a / b.
func (op *DivOp) Output() *tensor.Tensor { return op.output }
