package ops

import "github.com/dashirov/neural-prophet/internal/tensor"

// ConcatOp represents concatenation along one dimension.
//
// Backward splits the output gradient at the input boundaries and returns
// one gradient slice per input.
type ConcatOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	dim    int
	sizes  []int
}

// NewConcatOp creates a new ConcatOp. sizes holds each input's extent
// along the concatenation dimension.
func NewConcatOp(inputs []*tensor.Tensor, output *tensor.Tensor, dim int, sizes []int) *ConcatOp {
	return &ConcatOp{inputs: inputs, output: output, dim: dim, sizes: sizes}
}

// Backward splits the output gradient back per input.
func (op *ConcatOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grads := make([]*tensor.Tensor, len(op.inputs))
	offset := 0
	for i, size := range op.sizes {
		grads[i] = tensor.SliceDim(outputGrad, op.dim, offset, offset+size)
		offset += size
	}
	return grads
}

// Inputs returns the concatenated input tensors.
func (op *ConcatOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the concatenated tensor.
func (op *ConcatOp) Output() *tensor.Tensor { return op.output }
