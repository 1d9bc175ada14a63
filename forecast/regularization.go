package forecast

import (
	"github.com/dashirov/neural-prophet/forecast/components"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// regularizationLoss assembles the regularization scalar for the current
// training progress.
//
// Two families of terms: the always-on local penalties tying per-series
// parameters to their shared counterpart, and the progress-gated sparsity
// terms, scaled by the delay weight and suppressed entirely during the
// learning-rate range test.
func (m *Model) regularizationLoss(progress float64) *tensor.Tensor {
	e := m.engine
	var total *tensor.Tensor

	for _, r := range m.regularized() {
		if t := r.LocalDeviationTerm(e); t != nil {
			total = accumulate(e, total, t)
		}
	}

	delay := regDelayWeight(progress, m.cfg.Train.RegStartPct, m.cfg.Train.RegFullPct)
	if delay > 0 && !m.cfg.Train.FindingLR {
		var gated *tensor.Tensor
		for _, r := range m.regularized() {
			if t := r.SparsityTerm(e); t != nil {
				gated = accumulate(e, gated, t)
			}
		}
		if t := m.arSparsity(); t != nil {
			gated = accumulate(e, gated, t)
		}
		if t := m.covarSparsity(); t != nil {
			gated = accumulate(e, gated, t)
		}
		if gated != nil {
			total = accumulate(e, total, e.Scale(gated, delay))
		}
	}

	if total == nil {
		total = e.Constant(tensor.Zeros(tensor.Shape{1}))
	}
	return total
}

func (m *Model) regularized() []components.Regularized {
	rs := []components.Regularized{m.trend, m.events, m.regressors}
	if m.seasonality != nil {
		rs = append(rs, m.seasonality)
	}
	return rs
}

// arSparsity penalizes the AR net's first-layer weight magnitudes,
// normalized by the horizon count.
func (m *Model) arSparsity() *tensor.Tensor {
	if m.arNet == nil || m.cfg.AR.Reg <= 0 {
		return nil
	}
	w := firstLinear(m.arNet).Weight().Tensor()
	e := m.engine
	return e.Scale(e.Mean(e.Abs(w)), m.cfg.AR.Reg/float64(m.cfg.NForecasts))
}

// covarSparsity penalizes each lagged regressor's columns of the shared
// covariate net's first-layer weights, per-regressor lambda.
func (m *Model) covarSparsity() *tensor.Tensor {
	if m.covarNet == nil {
		return nil
	}
	e := m.engine
	w := firstLinear(m.covarNet).Weight().Tensor()
	var term *tensor.Tensor
	offset := 0
	for i, name := range m.covarOrder {
		lags := m.covarLags[name]
		lambda := m.cfg.LaggedRegressors[i].Reg
		if lambda > 0 {
			cols := e.SliceDim(w, 1, offset, offset+lags)
			penalty := e.Scale(e.Mean(e.Abs(cols)), lambda/float64(m.cfg.NForecasts))
			term = accumulate(e, term, penalty)
		}
		offset += lags
	}
	return term
}

func firstLinear(net *nn.Sequential) *nn.Linear {
	for _, mod := range net.Modules() {
		if l, ok := mod.(*nn.Linear); ok {
			return l
		}
	}
	return nil
}
