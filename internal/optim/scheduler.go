package optim

import "math"

// Scheduler adjusts an optimizer's learning rate over a training run.
//
// Step takes the fractional progress through training in [0, 1], computed
// as (epoch + batch/stepsPerEpoch) / totalEpochs, so the schedule advances
// smoothly within an epoch rather than in per-epoch jumps.
type Scheduler interface {
	Step(progress float64)
}

// OneCycleLR implements the one-cycle learning rate policy with cosine
// annealing: the rate warms up from maxLR/divFactor to maxLR over the
// first pctStart fraction of training, then anneals down to
// maxLR/finalDivFactor over the remainder.
//
// Reference: "Super-Convergence: Very Fast Training of Neural Networks
// Using Large Learning Rates" (Smith & Topin, 2018).
type OneCycleLR struct {
	optimizer Optimizer
	maxLR     float64
	pctStart  float64
	initialLR float64
	finalLR   float64
}

// OneCycleConfig holds configuration for the one-cycle policy.
type OneCycleConfig struct {
	MaxLR          float64 // Peak learning rate
	PctStart       float64 // Fraction of training spent warming up (default: 0.3)
	DivFactor      float64 // initialLR = MaxLR / DivFactor (default: 100)
	FinalDivFactor float64 // finalLR = MaxLR / FinalDivFactor (default: 5000)
}

// NewOneCycleLR creates a one-cycle scheduler driving the given optimizer.
func NewOneCycleLR(optimizer Optimizer, config OneCycleConfig) *OneCycleLR {
	if config.PctStart == 0 {
		config.PctStart = 0.3
	}
	if config.DivFactor == 0 {
		config.DivFactor = 100
	}
	if config.FinalDivFactor == 0 {
		config.FinalDivFactor = 5000
	}
	return &OneCycleLR{
		optimizer: optimizer,
		maxLR:     config.MaxLR,
		pctStart:  config.PctStart,
		initialLR: config.MaxLR / config.DivFactor,
		finalLR:   config.MaxLR / config.FinalDivFactor,
	}
}

// Step sets the learning rate for the given training progress in [0, 1].
func (o *OneCycleLR) Step(progress float64) {
	o.optimizer.SetLR(o.LRAt(progress))
}

// LRAt returns the learning rate the schedule prescribes at the given
// progress without touching the optimizer.
func (o *OneCycleLR) LRAt(progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if progress <= o.pctStart {
		phase := progress / o.pctStart
		return cosineAnneal(o.initialLR, o.maxLR, phase)
	}
	phase := (progress - o.pctStart) / (1 - o.pctStart)
	return cosineAnneal(o.maxLR, o.finalLR, phase)
}

// cosineAnneal interpolates from start to end along a half cosine as
// phase moves from 0 to 1.
func cosineAnneal(start, end, phase float64) float64 {
	return end + (start-end)*(1+math.Cos(math.Pi*phase))/2
}

// ExponentialLR multiplies the learning rate by gamma on every step,
// ignoring overall progress. Used by the learning-rate range test, which
// sweeps the rate geometrically while watching the loss.
type ExponentialLR struct {
	optimizer Optimizer
	startLR   float64
	gamma     float64
	steps     int
}

// NewExponentialLR creates an exponential scheduler starting from startLR.
func NewExponentialLR(optimizer Optimizer, startLR, gamma float64) *ExponentialLR {
	optimizer.SetLR(startLR)
	return &ExponentialLR{optimizer: optimizer, startLR: startLR, gamma: gamma}
}

// Step advances the sweep by one increment; progress is ignored.
func (e *ExponentialLR) Step(progress float64) {
	e.steps++
	e.optimizer.SetLR(e.startLR * math.Pow(e.gamma, float64(e.steps)))
}
