package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashirov/neural-prophet/internal/tensor"
)

// checkGradients compares the tape's analytic gradient for x against a
// central-difference estimate of f.
func checkGradients(t *testing.T, f func(e *Engine, x *tensor.Tensor) *tensor.Tensor, x *tensor.Tensor) {
	t.Helper()

	e := NewEngine()
	e.Tape().StartRecording()
	out := f(e, x)
	require.Equal(t, 1, out.NumElements(), "gradient check needs a scalar output")
	grads := e.Backward(out)
	analytic := grads[x]
	require.NotNil(t, analytic, "no gradient flowed to input")

	const eps = 1e-6
	data := x.Data()
	for i := range data {
		orig := data[i]
		data[i] = orig + eps
		plus := f(NewEngine(), x).Data()[0]
		data[i] = orig - eps
		minus := f(NewEngine(), x).Data()[0]
		data[i] = orig
		numeric := (plus - minus) / (2 * eps)
		assert.InDelta(t, numeric, analytic.Data()[i], 1e-4, "gradient mismatch at element %d", i)
	}
}

func TestBackwardSquare(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, -2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	e := NewEngine()
	e.Tape().StartRecording()
	y := e.Sum(e.Mul(x, x))
	grads := e.Backward(y)

	require.NotNil(t, grads[x])
	assert.InDeltaSlice(t, []float64{2, -4, 6}, grads[x].Data(), 1e-12)
}

func TestGradMatMulChain(t *testing.T) {
	x, err := tensor.FromSlice([]float64{0.5, -1, 2, 0.25, 1, -0.5}, tensor.Shape{2, 3})
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float64{1, -2, 0.5, 3, -1, 0.2}, tensor.Shape{3, 2})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Mean(e.MatMul(x, w))
	}, x)
	checkGradients(t, func(e *Engine, w *tensor.Tensor) *tensor.Tensor {
		return e.Mean(e.MatMul(x, w))
	}, w)
}

func TestGradBroadcastMul(t *testing.T) {
	// (2, 3, 1) * (2, 1, 2): both sides broadcast, as in the component
	// evaluations.
	a, err := tensor.FromSlice([]float64{1, 2, 3, -1, 0.5, 2}, tensor.Shape{2, 3, 1})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float64{0.5, -2, 1.5, 3}, tensor.Shape{2, 1, 2})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Sum(e.Mul(x, b))
	}, a)
	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Sum(e.Mul(a, x))
	}, b)
}

func TestGradSliceConcat(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		left := e.SliceDim(x, 1, 0, 2)
		right := e.SliceDim(x, 1, 2, 4)
		return e.Sum(e.Mul(e.Concat(1, right, left), e.Concat(1, left, right)))
	}, x)
}

func TestGradReLUAbs(t *testing.T) {
	// Away from the kinks both have clean gradients.
	x, err := tensor.FromSlice([]float64{-2, -0.5, 0.7, 1.5}, tensor.Shape{4})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Sum(e.ReLU(x))
	}, x)
	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Sum(e.Abs(x))
	}, x)
}

func TestGradSumDimDivScale(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	d, err := tensor.FromSlice([]float64{2, 4, 8}, tensor.Shape{1, 3})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Mean(e.SumDim(e.Div(x, d), 1, false))
	}, x)
	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		return e.Sum(e.Scale(e.AddScalar(x, 1.5), 0.25))
	}, x)
}

func TestGradIndexSelect(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		sel := e.IndexSelect(x, []int{0, 2, 2, 1})
		return e.Sum(e.Mul(sel, sel))
	}, x)
}

func TestGradTransposeReshape(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, -1, 2, -2, 3, -3}, tensor.Shape{2, 3})
	require.NoError(t, err)

	checkGradients(t, func(e *Engine, x *tensor.Tensor) *tensor.Tensor {
		wt := e.Transpose(x)
		flat := e.Reshape(wt, tensor.Shape{6})
		return e.Sum(e.Mul(flat, flat))
	}, x)
}

func TestDetachBlocksGradient(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	e := NewEngine()
	e.Tape().StartRecording()
	y := e.Sum(e.Mul(e.Detach(x), x))
	grads := e.Backward(y)

	// Only the connected factor receives a gradient: d/dx of c*x is c,
	// not 2x.
	require.NotNil(t, grads[x])
	assert.InDeltaSlice(t, []float64{1, 2, 3}, grads[x].Data(), 1e-12)
}

func TestGradientAccumulationAcrossUses(t *testing.T) {
	x, err := tensor.FromSlice([]float64{2}, tensor.Shape{1})
	require.NoError(t, err)

	e := NewEngine()
	e.Tape().StartRecording()
	y := e.Add(e.Mul(x, x), e.Mul(x, x)) // 2x²
	grads := e.Backward(y)

	require.NotNil(t, grads[x])
	assert.InDelta(t, 8.0, grads[x].Data()[0], 1e-12)
}

func TestTapeLifecycle(t *testing.T) {
	e := NewEngine()
	x := tensor.Ones(tensor.Shape{2})

	_ = e.Add(x, x)
	assert.Equal(t, 0, e.Tape().NumOps(), "ops must not record before StartRecording")

	e.Tape().StartRecording()
	_ = e.Add(x, x)
	assert.Equal(t, 1, e.Tape().NumOps())

	e.Tape().Clear()
	assert.Equal(t, 0, e.Tape().NumOps())
	assert.True(t, e.Tape().IsRecording(), "Clear preserves recording state")
}
