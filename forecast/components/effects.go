package components

import (
	"fmt"

	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// ScalarFeatureEffects contracts feature channels against per-quantile
// weights: features (batch, steps, f) × params (quantiles, f) gives
// (batch, steps, quantiles). This is the effect engine behind events,
// holidays and future regressors.
func ScalarFeatureEffects(e *autodiff.Engine, features, params *tensor.Tensor) *tensor.Tensor {
	shape := features.Shape()
	batchSize, steps, nFeat := shape[0], shape[1], shape[2]
	nQuantiles := params.Shape()[0]

	flat := e.Constant(tensor.Reshape(features, tensor.Shape{batchSize * steps, nFeat}))
	out := e.MatMul(flat, e.Transpose(params)) // (b*steps, q)
	return e.Reshape(out, tensor.Shape{batchSize, steps, nQuantiles})
}

// indexRange is one item's column span inside a flat effect block.
type indexRange struct {
	start, end int
}

// EffectBlock holds one mode's learned scalar-effect weights as a single
// flat (quantiles, totalFeatures) parameter, with a fixed index table
// assigning each named item its column range. The table is built once at
// construction and never resized.
type EffectBlock struct {
	params *nn.Parameter
	table  map[string]indexRange
	order  []string
	total  int
}

// NewEffectBlock lays out the named items in the given order, each with
// the given feature width, and allocates the zero-initialized flat weight
// parameter.
func NewEffectBlock(paramName string, nQuantiles int, names []string, widths []int) *EffectBlock {
	b := &EffectBlock{table: make(map[string]indexRange)}
	for i, name := range names {
		w := widths[i]
		b.table[name] = indexRange{start: b.total, end: b.total + w}
		b.order = append(b.order, name)
		b.total += w
	}
	if b.total > 0 {
		b.params = nn.NewParameter(paramName, nn.Zeros(tensor.Shape{nQuantiles, b.total}))
	}
	return b
}

// Empty reports whether the block has no items.
func (b *EffectBlock) Empty() bool { return b.total == 0 }

// TotalFeatures returns the flat feature width of the block.
func (b *EffectBlock) TotalFeatures() int { return b.total }

// Names returns the item names in layout order.
func (b *EffectBlock) Names() []string { return b.order }

// Has reports whether the block carries the named item.
func (b *EffectBlock) Has(name string) bool {
	_, ok := b.table[name]
	return ok
}

// Parameter returns the flat weight parameter, or nil for an empty block.
func (b *EffectBlock) Parameter() *nn.Parameter { return b.params }

// Effects applies the whole block to its feature slice
// (batch, steps, totalFeatures).
func (b *EffectBlock) Effects(e *autodiff.Engine, features *tensor.Tensor) *tensor.Tensor {
	return ScalarFeatureEffects(e, features, b.params.Tensor())
}

// EffectsFor re-applies the effect function restricted to one named item's
// columns, for per-item decomposition entries.
func (b *EffectBlock) EffectsFor(e *autodiff.Engine, name string, features *tensor.Tensor) *tensor.Tensor {
	r, ok := b.table[name]
	if !ok {
		panic(fmt.Sprintf("effects: unknown item %q", name))
	}
	sub := tensor.SliceDim(features, 2, r.start, r.end)
	params := e.SliceDim(b.params.Tensor(), 1, r.start, r.end)
	return ScalarFeatureEffects(e, sub, params)
}

// Weights returns a copy of the named item's weight columns,
// shape (quantiles, width).
func (b *EffectBlock) Weights(name string) (*tensor.Tensor, bool) {
	r, ok := b.table[name]
	if !ok {
		return nil, false
	}
	return tensor.SliceDim(b.params.Tensor(), 1, r.start, r.end), true
}
