package components

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// ScalarEffectsGroup pairs an additive and a multiplicative EffectBlock
// under one roof with per-item sparsity weights. Events/holidays and
// future regressors are both instances of this component; only their
// feature sources differ.
type ScalarEffectsGroup struct {
	Additive       *EffectBlock
	Multiplicative *EffectBlock
	regs           map[string]float64
}

// ScalarItem declares one event or regressor at construction time.
type ScalarItem struct {
	Name  string
	Mode  string // additive or multiplicative
	Width int    // feature channels; 1 for binary indicators
	Reg   float64
}

// NewScalarEffectsGroup builds the fixed-layout additive and
// multiplicative blocks from the declared item list. Items keep their
// declaration order within each mode; the feature stacker must lay the
// corresponding channels out in the same order.
func NewScalarEffectsGroup(kind string, nQuantiles int, items []ScalarItem) *ScalarEffectsGroup {
	var addNames, mulNames []string
	var addWidths, mulWidths []int
	regs := make(map[string]float64)
	for _, item := range items {
		w := item.Width
		if w == 0 {
			w = 1
		}
		if item.Mode == "multiplicative" {
			mulNames = append(mulNames, item.Name)
			mulWidths = append(mulWidths, w)
		} else {
			addNames = append(addNames, item.Name)
			addWidths = append(addWidths, w)
		}
		if item.Reg > 0 {
			regs[item.Name] = item.Reg
		}
	}
	return &ScalarEffectsGroup{
		Additive:       NewEffectBlock(kind+".additive", nQuantiles, addNames, addWidths),
		Multiplicative: NewEffectBlock(kind+".multiplicative", nQuantiles, mulNames, mulWidths),
		regs:           regs,
	}
}

// Empty reports whether neither mode carries any item.
func (g *ScalarEffectsGroup) Empty() bool {
	return g.Additive.Empty() && g.Multiplicative.Empty()
}

// Parameters returns the non-empty flat weight blocks.
func (g *ScalarEffectsGroup) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	if !g.Additive.Empty() {
		params = append(params, g.Additive.Parameter())
	}
	if !g.Multiplicative.Empty() {
		params = append(params, g.Multiplicative.Parameter())
	}
	return params
}

// Weights returns the named item's weight columns from whichever mode
// block carries it.
func (g *ScalarEffectsGroup) Weights(name string) (*tensor.Tensor, bool) {
	if w, ok := g.Additive.Weights(name); ok {
		return w, true
	}
	return g.Multiplicative.Weights(name)
}

// block returns the mode block carrying name, or nil.
func (g *ScalarEffectsGroup) block(name string) *EffectBlock {
	if g.Additive.Has(name) {
		return g.Additive
	}
	if g.Multiplicative.Has(name) {
		return g.Multiplicative
	}
	return nil
}

// SparsityTerm sums the per-item mean-absolute-weight penalties weighted
// by each item's configured lambda.
func (g *ScalarEffectsGroup) SparsityTerm(e *autodiff.Engine) *tensor.Tensor {
	var term *tensor.Tensor
	for _, b := range []*EffectBlock{g.Additive, g.Multiplicative} {
		for _, name := range b.order {
			lambda, ok := g.regs[name]
			if !ok {
				continue
			}
			r := b.table[name]
			w := e.SliceDim(b.params.Tensor(), 1, r.start, r.end)
			penalty := e.Scale(e.Mean(e.Abs(w)), lambda)
			if term == nil {
				term = penalty
			} else {
				term = e.Add(term, penalty)
			}
		}
	}
	return term
}

// LocalDeviationTerm is always nil: scalar-effect weights are globally
// shared.
func (g *ScalarEffectsGroup) LocalDeviationTerm(e *autodiff.Engine) *tensor.Tensor {
	return nil
}
