package forecast

import (
	"fmt"

	"github.com/dashirov/neural-prophet/forecast/components"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// decompose turns the retained forward intermediates into a named map of
// per-horizon, per-quantile contributions. Multiplicative contributions
// are reported scaled by the detached trend, matching what they added to
// the forecast.
func (m *Model) decompose(st *forwardState) map[string]*tensor.Tensor {
	e := m.engine
	nLags := m.cfg.NLags
	comps := make(map[string]*tensor.Tensor)

	trendH := e.SliceDim(st.trend, 1, nLags, st.window)
	comps["trend"] = trendH
	trendScale := e.Detach(trendH)

	if m.seasonality != nil {
		for _, name := range m.seasonality.Names() {
			sOut, ok := st.seasons[name]
			if !ok {
				continue
			}
			h := e.SliceDim(sOut, 1, nLags, st.window)
			if m.seasonality.Mode() == ModeMultiplicative {
				h = e.Mul(trendScale, h)
			}
			comps["season_"+name] = h
		}
	}

	m.decomposeEffects(st, comps, "additive_events", m.events.Additive, "event_", "events_additive", nil)
	m.decomposeEffects(st, comps, "multiplicative_events", m.events.Multiplicative, "event_", "events_multiplicative", trendScale)
	m.decomposeEffects(st, comps, "additive_regressors", m.regressors.Additive, "future_regressor_", "future_regressors_additive", nil)
	m.decomposeEffects(st, comps, "multiplicative_regressors", m.regressors.Multiplicative, "future_regressor_", "future_regressors_multiplicative", trendScale)

	if st.arOut != nil {
		comps["ar"] = st.arOut
	}
	if st.covOut != nil {
		m.apportionCovariates(st.covOut, comps)
	}
	return comps
}

// decomposeEffects emits one entry per event/regressor by re-applying the
// scalar-effects function restricted to the item's parameter columns,
// plus the aggregate entry for the whole mode block. trendScale, when
// non-nil, converts multiplicative fractions into contributions.
func (m *Model) decomposeEffects(st *forwardState, comps map[string]*tensor.Tensor,
	rangeName string, block *components.EffectBlock, prefix, aggregate string,
	trendScale *tensor.Tensor) {
	if block.Empty() || !m.stacker.Has(rangeName) {
		return
	}
	e := m.engine
	feats := m.stacker.Unstack(rangeName, st.batch)
	horizonFeats := tensor.SliceDim(feats, 1, m.cfg.NLags, st.window)

	scaled := func(t *tensor.Tensor) *tensor.Tensor {
		if trendScale == nil {
			return t
		}
		return e.Mul(trendScale, t)
	}
	comps[aggregate] = scaled(block.Effects(e, horizonFeats))
	for _, name := range block.Names() {
		comps[prefix+name] = scaled(block.EffectsFor(e, name, horizonFeats))
	}
}

// apportionCovariates splits the joint covariate-net output across the
// individual lagged regressors by each one's share of the injected (or
// derived) attribution magnitudes. A linear approximation, not an exact
// decomposition; a zero attribution total divides to NaN, which is left
// to propagate.
func (m *Model) apportionCovariates(covOut *tensor.Tensor, comps map[string]*tensor.Tensor) {
	attrs := m.covarWeights
	if attrs == nil {
		attrs = m.GetCovarWeights()
	}
	total := 0.0
	magnitudes := make(map[string]float64, len(m.covarOrder))
	for _, name := range m.covarOrder {
		mag := 0.0
		if attr, ok := attrs[name]; ok {
			for _, v := range attr.Data() {
				if v < 0 {
					v = -v
				}
				mag += v
			}
		}
		magnitudes[name] = mag
		total += mag
	}
	for _, name := range m.covarOrder {
		comps["lagged_regressor_"+name] = m.engine.Scale(covOut, magnitudes[name]/total)
	}
}

// GetEventWeights returns the learned per-quantile weights of one named
// event or holiday.
func (m *Model) GetEventWeights(name string) (*tensor.Tensor, error) {
	if w, ok := m.events.Weights(name); ok {
		return w, nil
	}
	return nil, fmt.Errorf("forecast: unknown event %q", name)
}

// GetCovarWeights derives a linear-approximation attribution per lagged
// regressor from the covariate net: the composed product of its layer
// weight matrices (ReLU ignored), column-sliced per regressor. An
// externally computed gradient-based attribution injected with
// SetCovarWeights takes precedence during decomposition.
func (m *Model) GetCovarWeights() map[string]*tensor.Tensor {
	if m.covarNet == nil {
		return nil
	}
	var composed *tensor.Tensor
	for _, mod := range m.covarNet.Modules() {
		l, ok := mod.(*nn.Linear)
		if !ok {
			continue
		}
		w := l.Weight().Tensor() // (out, in)
		if composed == nil {
			composed = w.Clone()
		} else {
			composed = tensor.MatMul(w, composed)
		}
	}
	out := make(map[string]*tensor.Tensor, len(m.covarOrder))
	offset := 0
	for _, name := range m.covarOrder {
		lags := m.covarLags[name]
		out[name] = tensor.SliceDim(composed, 1, offset, offset+lags)
		offset += lags
	}
	return out
}

// SetCovarWeights injects externally computed covariate attributions used
// to apportion the joint covariate output during decomposition.
func (m *Model) SetCovarWeights(weights map[string]*tensor.Tensor) {
	m.covarWeights = weights
}
