package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// IndexSelectOp gathers rows along dimension 0. It is how "local"
// (per-series) parameters are routed: the batch's series-identity indices
// select one parameter row per batch entry.
//
// Backward scatter-adds the output gradient back to the selected rows;
// rows selected more than once accumulate.
type IndexSelectOp struct {
	inputs  []*tensor.Tensor
	output  *tensor.Tensor
	indices []int
}

// NewIndexSelectOp creates a new IndexSelectOp.
func NewIndexSelectOp(input, output *tensor.Tensor, indices []int) *IndexSelectOp {
	return &IndexSelectOp{inputs: []*tensor.Tensor{input}, output: output, indices: indices}
}

// Backward scatters the output gradient to the gathered rows.
func (op *IndexSelectOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.Zeros(op.inputs[0].Shape())
	tensor.ScatterAddRows(grad, outputGrad, op.indices)
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor.
func (op *IndexSelectOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the gathered rows.
func (op *IndexSelectOp) Output() *tensor.Tensor { return op.output }
