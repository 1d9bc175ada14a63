package nn

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// LossFunc computes an element-wise loss between predictions and targets.
// No reduction is applied: the result has the broadcast shape of its inputs
// so the training loop can weight individual samples before averaging.
type LossFunc func(e *autodiff.Engine, predicted, targets *tensor.Tensor) *tensor.Tensor

// MSELoss returns the element-wise squared error (y_hat - y)^2.
func MSELoss(e *autodiff.Engine, predicted, targets *tensor.Tensor) *tensor.Tensor {
	d := e.Sub(predicted, targets)
	return e.Mul(d, d)
}

// HuberLoss builds an element-wise smooth-L1 loss with the given beta.
//
// For |d| <= beta the loss is 0.5*d^2/beta, above that it grows linearly
// as |d| - 0.5*beta. Written as m*(|d| - 0.5*m)/beta with m = min(|d|, beta),
// which covers both branches without conditionals on tensor values.
func HuberLoss(beta float64) LossFunc {
	return func(e *autodiff.Engine, predicted, targets *tensor.Tensor) *tensor.Tensor {
		a := e.Abs(e.Sub(predicted, targets))
		m := e.Sub(a, e.ReLU(e.AddScalar(a, -beta)))
		return e.Scale(e.Mul(m, e.Sub(a, e.Scale(m, 0.5))), 1.0/beta)
	}
}
