package forecast

import (
	"math"

	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// PinballLoss builds the quantile (pinball) loss over every configured
// quantile. The median channel is the point forecast; each channel i is
// scored against the target with its own asymmetric weights:
//
//	loss_i = q_i * max(0, y - ŷ_i) + (1 - q_i) * max(0, ŷ_i - y)
//
// Elementwise with no reduction, like every loss in this model.
func PinballLoss(quantiles []float64, medianIdx int) nn.LossFunc {
	qs := make([]float64, len(quantiles))
	copy(qs, quantiles)
	return func(e *autodiff.Engine, predicted, targets *tensor.Tensor) *tensor.Tensor {
		parts := make([]*tensor.Tensor, len(qs))
		for i, q := range qs {
			pred := e.SliceDim(predicted, 2, i, i+1)
			under := e.ReLU(e.Sub(targets, pred)) // y above prediction
			over := e.ReLU(e.Sub(pred, targets))  // y below prediction
			parts[i] = e.Add(e.Scale(under, q), e.Scale(over, 1-q))
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return e.Concat(2, parts...)
	}
}

// dataLoss applies the configured elementwise loss, reweights per
// time-step by the recency-bias curve, sums across quantiles and averages
// across batch and horizon.
func (m *Model) dataLoss(predicted, targets, targetTime *tensor.Tensor) *tensor.Tensor {
	e := m.engine
	lossT := m.loss(e, predicted, targets)
	if m.cfg.Train.NewerSamplesWeight > 1 {
		w := recencyWeights(targetTime, m.cfg.Train.NewerSamplesWeight, m.cfg.Train.NewerSamplesStart)
		lossT = e.Mul(lossT, e.Constant(w))
	}
	return e.Mean(e.SumDim(lossT, 2, false))
}

// recencyWeights computes the time-based sample weight for the horizon
// time channel (batch, horizon): flat at 1 before the configured start of
// normalized time, then a half-cosine ramp up to endWeight at time 1. The
// same weight applies across quantiles; with endWeight 1 the curve is
// uniformly 1 and weighting is a no-op.
func recencyWeights(targetTime *tensor.Tensor, endWeight, start float64) *tensor.Tensor {
	shape := targetTime.Shape()
	w := tensor.New(tensor.Shape{shape[0], shape[1], 1})
	wData := w.Data()
	for i, t := range targetTime.Data() {
		p := 0.0
		if start < 1 {
			p = (t - start) / (1 - start)
		}
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		wData[i] = 1 + (endWeight-1)*(1-math.Cos(math.Pi*p))/2
	}
	return w
}

// regDelayWeight gates regularization by training progress: zero before
// startPct, full strength after fullPct, half-cosine ramp between.
func regDelayWeight(progress, startPct, fullPct float64) float64 {
	switch {
	case progress <= startPct:
		return 0
	case progress >= fullPct:
		return 1
	default:
		phase := (progress - startPct) / (fullPct - startPct)
		return (1 - math.Cos(math.Pi*phase)) / 2
	}
}
