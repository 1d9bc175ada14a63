package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// MatMulOp represents 2D matrix multiplication: output = a @ b.
//
// Given C = A @ B:
//
//	dL/dA = dL/dC @ Bᵀ
//	dL/dB = Aᵀ @ dL/dC
type MatMulOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.Tensor) *MatMulOp {
	return &MatMulOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := tensor.MatMul(outputGrad, tensor.Transpose2D(b))
	gradB := tensor.MatMul(tensor.Transpose2D(a), outputGrad)
	return []*tensor.Tensor{gradA, gradB}
}

// Inputs returns the input tensors [a, b].
func (op *MatMulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a @ b.
func (op *MatMulOp) Output() *tensor.Tensor { return op.output }
