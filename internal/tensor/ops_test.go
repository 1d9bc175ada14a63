package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBroadcast(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	b, err := FromSlice([]float64{10, 20, 30}, Shape{1, 3})
	require.NoError(t, err)

	out := Add(a, b)
	assert.Equal(t, Shape{2, 3}, out.Shape())
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, out.Data())
}

func TestMulBroadcastBothSides(t *testing.T) {
	// (2, 3, 1) * (2, 1, 2) -> (2, 3, 2)
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3, 1})
	require.NoError(t, err)
	b, err := FromSlice([]float64{1, 10, 2, 20}, Shape{2, 1, 2})
	require.NoError(t, err)

	out := Mul(a, b)
	require.Equal(t, Shape{2, 3, 2}, out.Shape())
	assert.Equal(t, []float64{
		1, 10, 2, 20, 3, 30,
		8, 80, 10, 100, 12, 120,
	}, out.Data())
}

func TestMatMul(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	b, err := FromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
	require.NoError(t, err)

	out := MatMul(a, b)
	require.Equal(t, Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())
}

func TestTranspose2D(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	out := Transpose2D(a)
	require.Equal(t, Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestSliceDim(t *testing.T) {
	a, err := FromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		10, 11, 12,
	}, Shape{2, 2, 3})
	require.NoError(t, err)

	mid := SliceDim(a, 2, 1, 2)
	require.Equal(t, Shape{2, 2, 1}, mid.Shape())
	assert.Equal(t, []float64{2, 5, 8, 11}, mid.Data())

	rows := SliceDim(a, 1, 1, 2)
	require.Equal(t, Shape{2, 1, 3}, rows.Shape())
	assert.Equal(t, []float64{4, 5, 6, 10, 11, 12}, rows.Data())
}

func TestConcatInvertsSlice(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, Shape{2, 2, 2})
	require.NoError(t, err)

	left := SliceDim(a, 2, 0, 1)
	right := SliceDim(a, 2, 1, 2)
	back := Concat(2, left, right)

	require.Equal(t, a.Shape(), back.Shape())
	assert.Equal(t, a.Data(), back.Data())
}

func TestSumDim(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	cols := SumDim(a, 0, false)
	require.Equal(t, Shape{3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())

	rows := SumDim(a, 1, true)
	require.Equal(t, Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Data())
}

func TestReduceToUndoesBroadcast(t *testing.T) {
	grad, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	r := ReduceTo(grad, Shape{1, 3})
	require.Equal(t, Shape{1, 3}, r.Shape())
	assert.Equal(t, []float64{5, 7, 9}, r.Data())

	scalarish := ReduceTo(grad, Shape{3})
	require.Equal(t, Shape{3}, scalarish.Shape())
	assert.Equal(t, []float64{5, 7, 9}, scalarish.Data())
}

func TestIndexSelectAndScatter(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{3, 2})
	require.NoError(t, err)

	sel := IndexSelect(a, []int{2, 0, 2})
	require.Equal(t, Shape{3, 2}, sel.Shape())
	assert.Equal(t, []float64{5, 6, 1, 2, 5, 6}, sel.Data())

	dst := Zeros(Shape{3, 2})
	src, err := FromSlice([]float64{1, 1, 2, 2, 3, 3}, Shape{3, 2})
	require.NoError(t, err)
	ScatterAddRows(dst, src, []int{2, 0, 2})
	assert.Equal(t, []float64{2, 2, 0, 0, 4, 4}, dst.Data())
}

func TestReLUAndAbs(t *testing.T) {
	a, err := FromSlice([]float64{-2, -0.5, 0, 1.5}, Shape{4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1.5}, ReLU(a).Data())
	assert.Equal(t, []float64{2, 0.5, 0, 1.5}, Abs(a).Data())
}

func TestOpsDoNotMutateInputs(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	b, err := FromSlice([]float64{5, 6, 7, 8}, Shape{2, 2})
	require.NoError(t, err)

	_ = Add(a, b)
	_ = Mul(a, b)
	_ = MatMul(a, b)
	_ = Scale(a, 3)

	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data())
	assert.Equal(t, []float64{5, 6, 7, 8}, b.Data())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want Shape
		wantErr    bool
	}{
		{Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false},
		{Shape{2, 1}, Shape{1, 3}, Shape{2, 3}, false},
		{Shape{4, 1, 2}, Shape{3, 1}, Shape{4, 3, 2}, false},
		{Shape{3}, Shape{2, 3}, Shape{2, 3}, false},
		{Shape{2, 3}, Shape{2, 4}, nil, true},
	}
	for _, tc := range tests {
		got, err := BroadcastShapes(tc.a, tc.b)
		if tc.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
