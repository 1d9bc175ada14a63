package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// SumOp reduces a tensor to the scalar sum of all its elements.
type SumOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.Tensor) *SumOp {
	return &SumOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward fills the input shape with the scalar output gradient.
func (op *SumOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	g := outputGrad.Data()[0]
	return []*tensor.Tensor{tensor.Full(op.inputs[0].Shape(), g)}
}

// Inputs returns the input tensor.
func (op *SumOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar sum.
func (op *SumOp) Output() *tensor.Tensor { return op.output }

// MeanOp reduces a tensor to the scalar mean of all its elements.
type MeanOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.Tensor) *MeanOp {
	return &MeanOp{inputs: []*tensor.Tensor{input}, output: output}
}

// Backward distributes the scalar output gradient evenly over the input.
func (op *MeanOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	in := op.inputs[0]
	g := outputGrad.Data()[0] / float64(in.NumElements())
	return []*tensor.Tensor{tensor.Full(in.Shape(), g)}
}

// Inputs returns the input tensor.
func (op *MeanOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar mean.
func (op *MeanOp) Output() *tensor.Tensor { return op.output }
