// Package autodiff implements tape-based reverse-mode automatic
// differentiation over the dense tensor substrate.
//
// The Engine performs forward computation eagerly and, while its tape is
// recording, logs one Operation per call. Backward walks the tape in
// reverse and returns a gradient map keyed by tensor pointer, which the
// optimizers consume.
//
// Usage:
//
//	e := autodiff.NewEngine()
//	e.Tape().StartRecording()
//	y := e.Mul(x, x) // y = x²
//	grads := e.Backward(y)
//	grads[x]         // dy/dx = 2x
package autodiff

import (
	"github.com/dashirov/neural-prophet/internal/autodiff/ops"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Engine executes tensor operations and records them for differentiation.
type Engine struct {
	tape *GradientTape
}

// NewEngine creates an engine with a fresh, non-recording tape.
func NewEngine() *Engine {
	return &Engine{tape: NewGradientTape()}
}

// Tape returns the gradient tape for lifecycle control
// (start/stop recording, clearing between steps).
func (e *Engine) Tape() *GradientTape { return e.tape }

// Backward computes gradients of output with respect to every tensor that
// participated in its computation.
func (e *Engine) Backward(output *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	return e.tape.Backward(output)
}

// Detach returns a copy of t disconnected from the tape: no gradient flows
// through the returned tensor. This backs every "gradient-detached"
// requirement of the model (multiplicative trend scaling, median offsets).
func (e *Engine) Detach(t *tensor.Tensor) *tensor.Tensor {
	return t.Clone()
}

// Constant wraps raw data as a graph input that requires no gradient.
func (e *Engine) Constant(t *tensor.Tensor) *tensor.Tensor {
	return t
}

// Add performs element-wise addition with broadcasting.
func (e *Engine) Add(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Add(a, b)
	e.tape.Record(ops.NewAddOp(a, b, out))
	return out
}

// Sub performs element-wise subtraction with broadcasting.
func (e *Engine) Sub(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Sub(a, b)
	e.tape.Record(ops.NewSubOp(a, b, out))
	return out
}

// Mul performs element-wise multiplication with broadcasting.
func (e *Engine) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Mul(a, b)
	e.tape.Record(ops.NewMulOp(a, b, out))
	return out
}

// Div performs element-wise division with broadcasting.
func (e *Engine) Div(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Div(a, b)
	e.tape.Record(ops.NewDivOp(a, b, out))
	return out
}

// MatMul performs 2D matrix multiplication.
func (e *Engine) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.MatMul(a, b)
	e.tape.Record(ops.NewMatMulOp(a, b, out))
	return out
}

// Transpose transposes a 2D tensor.
func (e *Engine) Transpose(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.Transpose2D(t)
	e.tape.Record(ops.NewTransposeOp(t, out))
	return out
}

// Reshape changes the shape of t, preserving element order.
func (e *Engine) Reshape(t *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	out := tensor.Reshape(t, shape)
	e.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

// SliceDim slices t along dim to [start:end).
func (e *Engine) SliceDim(t *tensor.Tensor, dim, start, end int) *tensor.Tensor {
	out := tensor.SliceDim(t, dim, start, end)
	e.tape.Record(ops.NewSliceOp(t, out, dim, start))
	return out
}

// Concat concatenates tensors along dim.
func (e *Engine) Concat(dim int, ts ...*tensor.Tensor) *tensor.Tensor {
	out := tensor.Concat(dim, ts...)
	sizes := make([]int, len(ts))
	for i, t := range ts {
		sizes[i] = t.Shape()[dim]
	}
	e.tape.Record(ops.NewConcatOp(ts, out, dim, sizes))
	return out
}

// SumDim sums along one dimension.
func (e *Engine) SumDim(t *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	out := tensor.SumDim(t, dim, keepDim)
	e.tape.Record(ops.NewSumDimOp(t, out, dim, keepDim))
	return out
}

// Sum reduces t to the scalar sum of its elements, shape {1}.
func (e *Engine) Sum(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(tensor.Shape{1})
	out.Data()[0] = tensor.Sum(t)
	e.tape.Record(ops.NewSumOp(t, out))
	return out
}

// Mean reduces t to the scalar mean of its elements, shape {1}.
func (e *Engine) Mean(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(tensor.Shape{1})
	out.Data()[0] = tensor.Mean(t)
	e.tape.Record(ops.NewMeanOp(t, out))
	return out
}

// ReLU applies max(0, x) element-wise.
func (e *Engine) ReLU(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.ReLU(t)
	e.tape.Record(ops.NewReLUOp(t, out))
	return out
}

// Abs applies |x| element-wise.
func (e *Engine) Abs(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.Abs(t)
	e.tape.Record(ops.NewAbsOp(t, out))
	return out
}

// Scale multiplies by a scalar constant.
func (e *Engine) Scale(t *tensor.Tensor, s float64) *tensor.Tensor {
	out := tensor.Scale(t, s)
	e.tape.Record(ops.NewScaleOp(t, out, s))
	return out
}

// AddScalar adds a scalar constant.
func (e *Engine) AddScalar(t *tensor.Tensor, s float64) *tensor.Tensor {
	out := tensor.AddScalar(t, s)
	e.tape.Record(ops.NewAddScalarOp(t, out))
	return out
}

// Neg negates element-wise.
func (e *Engine) Neg(t *tensor.Tensor) *tensor.Tensor {
	return e.Scale(t, -1)
}

// IndexSelect gathers rows along dimension 0.
func (e *Engine) IndexSelect(t *tensor.Tensor, indices []int) *tensor.Tensor {
	out := tensor.IndexSelect(t, indices)
	e.tape.Record(ops.NewIndexSelectOp(t, out, indices))
	return out
}
