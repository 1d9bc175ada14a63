package optim

import (
	"math"

	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// AdamW implements Adam with decoupled weight decay.
//
// Adam maintains exponential moving averages of gradients (first moment)
// and squared gradients (second moment), with bias correction for the
// zero initialization:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * (m_hat / (sqrt(v_hat) + eps) + weightDecay * param)
//
// Weight decay is applied directly to the parameter rather than folded
// into the gradient, so the decay is not rescaled by the adaptive moments.
//
// References: "Adam: A Method for Stochastic Optimization" (Kingma & Ba,
// 2014) and "Decoupled Weight Decay Regularization" (Loshchilov & Hutter,
// 2017).
type AdamW struct {
	params      []*nn.Parameter
	lr          float64
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	t           int // timestep for bias correction
	m           map[*nn.Parameter][]float64
	v           map[*nn.Parameter][]float64
}

// AdamWConfig holds configuration for the AdamW optimizer.
type AdamWConfig struct {
	LR          float64    // Learning rate (default: 0.001)
	Betas       [2]float64 // Moment decay coefficients (default: [0.9, 0.999])
	Eps         float64    // Numerical stability term (default: 1e-8)
	WeightDecay float64    // Decoupled weight decay factor (default: 0)
}

// NewAdamW creates an AdamW optimizer over the given parameters.
func NewAdamW(params []*nn.Parameter, config AdamWConfig) *AdamW {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &AdamW{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		m:           make(map[*nn.Parameter][]float64),
		v:           make(map[*nn.Parameter][]float64),
	}
}

// Step performs a single AdamW update over every parameter that has a
// gradient; parameters outside the recorded computation are skipped.
func (a *AdamW) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Data()
		gradData := grad.Data()

		m, ok := a.m[param]
		if !ok {
			m = make([]float64, len(paramData))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float64, len(paramData))
			a.v[param] = v
		}

		for i := range paramData {
			g := gradData[i]
			m[i] = a.beta1*m[i] + (1.0-a.beta1)*g
			v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g
			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2
			paramData[i] -= a.lr * (mHat/(math.Sqrt(vHat)+a.eps) + a.weightDecay*paramData[i])
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *AdamW) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *AdamW) GetLR() float64 { return a.lr }

// SetLR updates the learning rate.
func (a *AdamW) SetLR(lr float64) { a.lr = lr }

// GetTimestep returns the number of optimization steps taken so far.
func (a *AdamW) GetTimestep() int { return a.t }
