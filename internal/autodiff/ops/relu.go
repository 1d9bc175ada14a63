package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// ReLUOp represents the rectified linear unit: output = max(0, input).
type ReLUOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.Tensor) *ReLUOp {
	return &ReLUOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward passes the gradient only where the input was positive.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	in := op.inputs[0]
	grad := tensor.Zeros(in.Shape())
	inData := in.Data()
	gradData := grad.Data()
	outGradData := outputGrad.Data()
	for i, v := range inData {
		if v > 0 {
			gradData[i] = outGradData[i]
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns max(0, input).
func (op *ReLUOp) Output() *tensor.Tensor { return op.output }
