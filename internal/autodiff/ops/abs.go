package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// AbsOp represents the element-wise absolute value, used by the sparsity
// regularizers.
type AbsOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(input, output *tensor.Tensor) *AbsOp {
	return &AbsOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward multiplies the gradient by the sign of the input.
// The subgradient at exactly zero is taken as zero.
func (op *AbsOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	in := op.inputs[0]
	grad := tensor.Zeros(in.Shape())
	inData := in.Data()
	gradData := grad.Data()
	outGradData := outputGrad.Data()
	for i, v := range inData {
		switch {
		case v > 0:
			gradData[i] = outGradData[i]
		case v < 0:
			gradData[i] = -outGradData[i]
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *AbsOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns |input|.
func (op *AbsOp) Output() *tensor.Tensor { return op.output }
