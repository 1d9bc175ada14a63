package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

func paramWithGrad(values, grad []float64) (*nn.Parameter, map[*tensor.Tensor]*tensor.Tensor) {
	p := nn.NewParameter("w", mustTensor(values))
	grads := map[*tensor.Tensor]*tensor.Tensor{
		p.Tensor(): mustTensor(grad),
	}
	return p, grads
}

func mustTensor(values []float64) *tensor.Tensor {
	t, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	if err != nil {
		panic(err)
	}
	return t
}

func TestSGDStep(t *testing.T) {
	p, grads := paramWithGrad([]float64{1, 2}, []float64{0.5, -1})
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	sgd.Step(grads)
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, p.Tensor().Data(), 1e-12)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	p, grads := paramWithGrad([]float64{0}, []float64{1})
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 1, Momentum: 0.5})

	sgd.Step(grads) // v=1, p=-1
	grads[p.Tensor()] = mustTensor([]float64{1})
	sgd.Step(grads) // v=1.5, p=-2.5
	assert.InDelta(t, -2.5, p.Tensor().Data()[0], 1e-12)
}

func TestSGDSkipsParamsWithoutGradient(t *testing.T) {
	p := nn.NewParameter("w", mustTensor([]float64{3}))
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	sgd.Step(map[*tensor.Tensor]*tensor.Tensor{})
	assert.Equal(t, []float64{3}, p.Tensor().Data())
}

func TestAdamWFirstStep(t *testing.T) {
	p, grads := paramWithGrad([]float64{1}, []float64{0.5})
	opt := NewAdamW([]*nn.Parameter{p}, AdamWConfig{LR: 0.1})

	opt.Step(grads)
	// After bias correction the first step moves by ~lr regardless of
	// gradient magnitude: m_hat = g, v_hat = g².
	expected := 1 - 0.1*0.5/(0.5+1e-8)
	assert.InDelta(t, expected, p.Tensor().Data()[0], 1e-9)
	assert.Equal(t, 1, opt.GetTimestep())
}

func TestAdamWDecoupledWeightDecay(t *testing.T) {
	p, grads := paramWithGrad([]float64{2}, []float64{0})
	// Zero gradient: only the decay term moves the parameter.
	opt := NewAdamW([]*nn.Parameter{p}, AdamWConfig{LR: 0.1, WeightDecay: 0.5})

	opt.Step(grads)
	assert.InDelta(t, 2-0.1*0.5*2, p.Tensor().Data()[0], 1e-9)
}

func TestOneCycleLREndpoints(t *testing.T) {
	opt := NewSGD(nil, SGDConfig{LR: 1})
	sched := NewOneCycleLR(opt, OneCycleConfig{MaxLR: 1.0})

	assert.InDelta(t, 1.0/100, sched.LRAt(0), 1e-12)
	assert.InDelta(t, 1.0, sched.LRAt(0.3), 1e-12)
	assert.InDelta(t, 1.0/5000, sched.LRAt(1), 1e-9)

	// Monotone up during warmup, down during annealing.
	assert.Less(t, sched.LRAt(0.1), sched.LRAt(0.2))
	assert.Greater(t, sched.LRAt(0.5), sched.LRAt(0.9))

	sched.Step(0.3)
	assert.InDelta(t, 1.0, opt.GetLR(), 1e-12)
}

func TestExponentialLRSweep(t *testing.T) {
	opt := NewSGD(nil, SGDConfig{LR: 1})
	sched := NewExponentialLR(opt, 1e-5, 2)

	assert.InDelta(t, 1e-5, opt.GetLR(), 1e-18)
	sched.Step(0) // progress is ignored
	sched.Step(0)
	assert.InDelta(t, 4e-5, opt.GetLR(), 1e-15)
}

func TestZeroGradClearsParameters(t *testing.T) {
	p := nn.NewParameter("w", mustTensor([]float64{1}))
	p.SetGrad(mustTensor([]float64{9}))
	opt := NewAdamW([]*nn.Parameter{p}, AdamWConfig{})

	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestAdamWConvergesOnQuadratic(t *testing.T) {
	// Minimize (w - 3)² by hand-fed gradients.
	p := nn.NewParameter("w", mustTensor([]float64{0}))
	opt := NewAdamW([]*nn.Parameter{p}, AdamWConfig{LR: 0.1})

	for i := 0; i < 500; i++ {
		w := p.Tensor().Data()[0]
		grads := map[*tensor.Tensor]*tensor.Tensor{
			p.Tensor(): mustTensor([]float64{2 * (w - 3)}),
		}
		opt.Step(grads)
	}
	require.False(t, math.IsNaN(p.Tensor().Data()[0]))
	assert.InDelta(t, 3.0, p.Tensor().Data()[0], 0.05)
}
