// Package tensor implements the dense numeric substrate of the forecaster:
// row-major float64 tensors with NumPy-style broadcasting, plus the raw
// (non-differentiated) math the autodiff engine builds on.
//
// The model is fixed-topology and CPU-only, so a single dtype is enough.
// Matrix multiplication is delegated to gonum.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense row-major float64 tensor.
//
// Tensors are identified by pointer: the autodiff tape keys gradients by
// *Tensor, so operations always allocate fresh outputs and never mutate
// their inputs.
type Tensor struct {
	data  []float64
	shape Shape
}

// FromSlice creates a tensor backed by the given data slice.
// The slice is used directly, not copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Tensor{data: data, shape: shape.Clone()}, nil
}

// New creates a zero-initialized tensor of the given shape.
// Panics on an invalid shape; use FromSlice for recoverable construction.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor{data: make([]float64, shape.NumElements()), shape: shape.Clone()}
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with a constant value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor filled with values drawn from N(0, 1).
func Randn(shape Shape) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rand.NormFloat64()
	}
	return t
}

// Arange creates a 1D tensor with values start, start+1, ..., end-1.
func Arange(start, end int) *Tensor {
	if end <= start {
		panic(fmt.Sprintf("tensor.Arange: end %d must be greater than start %d", end, start))
	}
	t := New(Shape{end - start})
	for i := range t.data {
		t.data[i] = float64(start + i)
	}
	return t
}

// Linspace creates a 1D tensor with n evenly spaced values in [start, end].
func Linspace(start, end float64, n int) *Tensor {
	if n < 2 {
		panic("tensor.Linspace: need at least 2 points")
	}
	t := New(Shape{n})
	step := (end - start) / float64(n-1)
	for i := range t.data {
		t.data[i] = start + float64(i)*step
	}
	return t
}

// Data returns the backing slice.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{data: data, shape: t.shape.Clone()}
}

// At returns the element at the given coordinates.
func (t *Tensor) At(coords ...int) float64 {
	return t.data[t.offset(coords)]
}

// Set writes the element at the given coordinates.
func (t *Tensor) Set(value float64, coords ...int) {
	t.data[t.offset(coords)] = value
}

func (t *Tensor) offset(coords []int) int {
	if len(coords) != len(t.shape) {
		panic(fmt.Sprintf("tensor: got %d coordinates for %d-dimensional tensor", len(coords), len(t.shape)))
	}
	strides := t.shape.ComputeStrides()
	off := 0
	for d, c := range coords {
		if c < 0 || c >= t.shape[d] {
			panic(fmt.Sprintf("tensor: coordinate %d out of range for dimension %d (size %d)", c, d, t.shape[d]))
		}
		off += c * strides[d]
	}
	return off
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}
