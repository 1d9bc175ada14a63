package forecast

import "github.com/dashirov/neural-prophet/internal/tensor"

// reconcileQuantiles converts the network's raw quantile diffs into
// absolute quantile forecasts.
//
// The median channel is the literal point forecast and passes through
// unchanged; every other channel is a signed offset from the median.
// Outside training, offsets are first forced monotonically non-negative
// by a running max walked from the median outward, which prevents
// quantile crossing in user-facing predictions. During training the raw
// offsets pass straight through so gradients flow unconstrained.
func (m *Model) reconcileQuantiles(diffs *tensor.Tensor, mode RunMode) *tensor.Tensor {
	nq := len(m.cfg.Quantiles)
	if nq == 1 {
		return diffs
	}
	e := m.engine
	median := e.SliceDim(diffs, 2, m.medianIdx, m.medianIdx+1)
	detached := e.Detach(median)

	lower := make([]*tensor.Tensor, m.medianIdx)
	for i := 0; i < m.medianIdx; i++ {
		lower[i] = e.SliceDim(diffs, 2, i, i+1)
	}
	upper := make([]*tensor.Tensor, 0, nq-m.medianIdx-1)
	for i := m.medianIdx + 1; i < nq; i++ {
		upper = append(upper, e.SliceDim(diffs, 2, i, i+1))
	}

	if mode != RunTrain {
		// Lower offsets grow from the quantile nearest the median
		// outward, so the running max walks in reverse index order.
		lower = runningMaxClamp(lower, true)
		upper = runningMaxClamp(upper, false)
	}

	parts := make([]*tensor.Tensor, 0, nq)
	for _, off := range lower {
		parts = append(parts, e.Sub(detached, off))
	}
	parts = append(parts, median)
	for _, off := range upper {
		parts = append(parts, e.Add(detached, off))
	}
	return e.Concat(2, parts...)
}

// runningMaxClamp enforces offset monotonicity: each offset becomes
// max(previous clamped offset, offset, 0), walking forward or, for lower
// quantiles, from the end of the slice backward. Operates on raw values;
// this is a prediction-time correction, not part of the recorded graph.
func runningMaxClamp(offsets []*tensor.Tensor, reverse bool) []*tensor.Tensor {
	if len(offsets) == 0 {
		return offsets
	}
	out := make([]*tensor.Tensor, len(offsets))
	var prev []float64
	visit := func(i int) {
		c := offsets[i].Clone()
		data := c.Data()
		for j, v := range data {
			if v < 0 {
				v = 0
			}
			if prev != nil && prev[j] > v {
				v = prev[j]
			}
			data[j] = v
		}
		out[i] = c
		prev = data
	}
	if reverse {
		for i := len(offsets) - 1; i >= 0; i-- {
			visit(i)
		}
	} else {
		for i := range offsets {
			visit(i)
		}
	}
	return out
}
