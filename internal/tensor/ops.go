package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// binaryOp applies f element-wise with NumPy-style broadcasting.
func binaryOp(a, b *Tensor, f func(x, y float64) float64) *Tensor {
	outShape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	out := New(outShape)

	if a.shape.Equal(b.shape) {
		for i := range out.data {
			out.data[i] = f(a.data[i], b.data[i])
		}
		return out
	}

	outStrides := outShape.ComputeStrides()
	aStrides := a.shape.ComputeStrides()
	bStrides := b.shape.ComputeStrides()
	for i := range out.data {
		aIdx, bIdx := 0, 0
		rem := i
		for d := 0; d < len(outShape); d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			if ad := d - (len(outShape) - len(a.shape)); ad >= 0 {
				c := coord
				if a.shape[ad] == 1 {
					c = 0
				}
				aIdx += c * aStrides[ad]
			}
			if bd := d - (len(outShape) - len(b.shape)); bd >= 0 {
				c := coord
				if b.shape[bd] == 1 {
					c = 0
				}
				bIdx += c * bStrides[bd]
			}
		}
		out.data[i] = f(a.data[aIdx], b.data[bIdx])
	}
	return out
}

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) *Tensor {
	return binaryOp(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) *Tensor {
	return binaryOp(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns the element-wise product a * b with broadcasting.
func Mul(a, b *Tensor) *Tensor {
	return binaryOp(a, b, func(x, y float64) float64 { return x * y })
}

// Div returns the element-wise quotient a / b with broadcasting.
// Division by zero propagates as ±Inf/NaN; callers validate upstream.
func Div(a, b *Tensor) *Tensor {
	return binaryOp(a, b, func(x, y float64) float64 { return x / y })
}

// Apply returns f applied element-wise.
func Apply(t *Tensor, f func(x float64) float64) *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Scale returns t * s.
func Scale(t *Tensor, s float64) *Tensor {
	out := t.Clone()
	floats.Scale(s, out.data)
	return out
}

// AddScalar returns t + s.
func AddScalar(t *Tensor, s float64) *Tensor {
	out := t.Clone()
	floats.AddConst(s, out.data)
	return out
}

// Neg returns -t.
func Neg(t *Tensor) *Tensor {
	return Scale(t, -1)
}

// Abs returns |t|.
func Abs(t *Tensor) *Tensor {
	return Apply(t, math.Abs)
}

// ReLU returns max(0, t).
func ReLU(t *Tensor) *Tensor {
	return Apply(t, func(x float64) float64 { return math.Max(0, x) })
}

// MatMul returns the 2D matrix product a @ b via gonum.
func MatMul(a, b *Tensor) *Tensor {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("tensor.MatMul: expected 2D operands, got %v and %v", a.shape, b.shape))
	}
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("tensor.MatMul: inner dimensions do not match: %v @ %v", a.shape, b.shape))
	}
	out := New(Shape{m, n})
	am := mat.NewDense(m, k, a.data)
	bm := mat.NewDense(k2, n, b.data)
	cm := mat.NewDense(m, n, out.data)
	cm.Mul(am, bm)
	return out
}

// Transpose2D returns the transpose of a 2D tensor.
func Transpose2D(t *Tensor) *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor.Transpose2D: expected 2D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[c*rows+r] = t.data[r*cols+c]
		}
	}
	return out
}

// Reshape returns a copy of t with a new shape of equal element count.
func Reshape(t *Tensor, shape Shape) *Tensor {
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor.Reshape: cannot reshape %v to %v", t.shape, shape))
	}
	out := t.Clone()
	out.shape = shape.Clone()
	return out
}

// SliceDim copies the sub-tensor t[..., start:end, ...] along dim.
func SliceDim(t *Tensor, dim, start, end int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("tensor.SliceDim: invalid dimension %d for shape %v", dim, t.shape))
	}
	if start < 0 || end > t.shape[dim] || start >= end {
		panic(fmt.Sprintf("tensor.SliceDim: invalid range [%d:%d] for dimension of size %d", start, end, t.shape[dim]))
	}
	outShape := t.shape.Clone()
	outShape[dim] = end - start
	out := New(outShape)
	copySlice(out.data, t.data, t.shape, dim, start, false)
	return out
}

// AddIntoSlice accumulates src into dst[..., start:start+n, ...] along dim,
// where n is src's size along dim. Used by the slice backward pass.
func AddIntoSlice(dst, src *Tensor, dim, start int) {
	if len(dst.shape) != len(src.shape) {
		panic("tensor.AddIntoSlice: rank mismatch")
	}
	copySlice(src.data, dst.data, dst.shape, dim, start, true)
}

// copySlice moves data between a full tensor and a slice of it along dim.
// When accumulate is false, small receives full[range]; when true, full
// accumulates small into the range. The small buffer is always the first
// argument's counterpart: (small, full) for reads, (small, full) for writes.
func copySlice(small, full []float64, fullShape Shape, dim, start int, accumulate bool) {
	strides := fullShape.ComputeStrides()
	// outer iterates dims before dim, inner covers dims after.
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= fullShape[d]
	}
	inner := strides[dim]
	width := len(small) / (outer * inner)
	for o := 0; o < outer; o++ {
		for w := 0; w < width; w++ {
			fullOff := o*strides[dim]*fullShape[dim] + (start+w)*inner
			smallOff := o*width*inner + w*inner
			if accumulate {
				for i := 0; i < inner; i++ {
					full[fullOff+i] += small[smallOff+i]
				}
			} else {
				copy(small[smallOff:smallOff+inner], full[fullOff:fullOff+inner])
			}
		}
	}
}

// Concat concatenates tensors along dim. All other dimensions must match.
func Concat(dim int, ts ...*Tensor) *Tensor {
	if len(ts) == 0 {
		panic("tensor.Concat: no tensors")
	}
	outShape := ts[0].shape.Clone()
	for _, t := range ts[1:] {
		if len(t.shape) != len(outShape) {
			panic("tensor.Concat: rank mismatch")
		}
		for d := range outShape {
			if d == dim {
				continue
			}
			if t.shape[d] != outShape[d] {
				panic(fmt.Sprintf("tensor.Concat: shape mismatch along dimension %d: %v vs %v", d, ts[0].shape, t.shape))
			}
		}
		outShape[dim] += t.shape[dim]
	}
	out := New(outShape)
	offset := 0
	for _, t := range ts {
		copySlice(t.data, out.data, outShape, dim, offset, true)
		offset += t.shape[dim]
	}
	return out
}

// SumDim sums along dim. With keepDim the reduced dimension stays as size 1,
// otherwise it is squeezed out.
func SumDim(t *Tensor, dim int, keepDim bool) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("tensor.SumDim: invalid dimension %d for shape %v", dim, t.shape))
	}
	keptShape := t.shape.Clone()
	keptShape[dim] = 1
	out := New(keptShape)

	strides := t.shape.ComputeStrides()
	outStrides := keptShape.ComputeStrides()
	for i, v := range t.data {
		rem := i
		outIdx := 0
		for d := 0; d < len(t.shape); d++ {
			coord := rem / strides[d]
			rem %= strides[d]
			if d != dim {
				outIdx += coord * outStrides[d]
			}
		}
		out.data[outIdx] += v
	}

	if !keepDim {
		squeezed := make(Shape, 0, len(keptShape)-1)
		for d, size := range keptShape {
			if d != dim {
				squeezed = append(squeezed, size)
			}
		}
		if len(squeezed) == 0 {
			squeezed = Shape{1}
		}
		out.shape = squeezed
	}
	return out
}

// Sum returns the sum of all elements.
func Sum(t *Tensor) float64 {
	return floats.Sum(t.data)
}

// Mean returns the mean of all elements.
func Mean(t *Tensor) float64 {
	return floats.Sum(t.data) / float64(len(t.data))
}

// BroadcastTo expands t to the target shape following broadcasting rules.
func BroadcastTo(t *Tensor, target Shape) *Tensor {
	if t.shape.Equal(target) {
		return t.Clone()
	}
	out := New(target)
	srcStrides := t.shape.ComputeStrides()
	dstStrides := target.ComputeStrides()
	for i := range out.data {
		rem := i
		srcIdx := 0
		for d := 0; d < len(target); d++ {
			coord := rem / dstStrides[d]
			rem %= dstStrides[d]
			if sd := d - (len(target) - len(t.shape)); sd >= 0 {
				if t.shape[sd] == 1 {
					coord = 0
				}
				srcIdx += coord * srcStrides[sd]
			}
		}
		out.data[i] = t.data[srcIdx]
	}
	return out
}

// ReduceTo sums grad down to the target shape, undoing broadcasting.
// Used by backward passes of broadcasting operations.
func ReduceTo(grad *Tensor, target Shape) *Tensor {
	if grad.shape.Equal(target) {
		return grad.Clone()
	}
	result := grad
	for len(result.shape) > len(target) {
		result = SumDim(result, 0, false)
	}
	for d := 0; d < len(target); d++ {
		if target[d] == 1 && result.shape[d] > 1 {
			result = SumDim(result, d, true)
		}
	}
	if !result.shape.Equal(target) {
		result = Reshape(result, target)
	}
	return result
}

// IndexSelect gathers rows of t along dimension 0.
func IndexSelect(t *Tensor, indices []int) *Tensor {
	if len(t.shape) < 1 {
		panic("tensor.IndexSelect: scalar input")
	}
	rowSize := len(t.data) / t.shape[0]
	outShape := t.shape.Clone()
	outShape[0] = len(indices)
	out := New(outShape)
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[0] {
			panic(fmt.Sprintf("tensor.IndexSelect: index %d out of range for %d rows", idx, t.shape[0]))
		}
		copy(out.data[i*rowSize:(i+1)*rowSize], t.data[idx*rowSize:(idx+1)*rowSize])
	}
	return out
}

// ScatterAddRows accumulates rows of src into dst at the given row indices.
// Inverse of IndexSelect; used by its backward pass.
func ScatterAddRows(dst, src *Tensor, indices []int) {
	rowSize := len(dst.data) / dst.shape[0]
	for i, idx := range indices {
		dstRow := dst.data[idx*rowSize : (idx+1)*rowSize]
		srcRow := src.data[i*rowSize : (i+1)*rowSize]
		floats.Add(dstRow, srcRow)
	}
}
