package forecast

import (
	"fmt"

	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/optim"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// The optimizer step sequence is load-bearing: gradient zeroing,
// backpropagation, the optimizer step and the scheduler step must happen
// in exactly that order within one training step. Reordering silently
// corrupts gradient accumulation (stale gradients or skipped updates), so
// the sequence is an explicit state machine that rejects out-of-order
// transitions instead of trusting call sites.

type seqState int

const (
	seqZero seqState = iota
	seqBackward
	seqApply
	seqAdvance
)

func (s seqState) String() string {
	switch s {
	case seqZero:
		return "zero_gradients"
	case seqBackward:
		return "backpropagate"
	case seqApply:
		return "apply_step"
	default:
		return "advance_schedule"
	}
}

type stepSequencer struct {
	state     seqState
	engine    *autodiff.Engine
	optimizer optim.Optimizer
	scheduler optim.Scheduler
	grads     map[*tensor.Tensor]*tensor.Tensor
}

func newStepSequencer(e *autodiff.Engine, o optim.Optimizer, s optim.Scheduler) *stepSequencer {
	return &stepSequencer{engine: e, optimizer: o, scheduler: s}
}

func (s *stepSequencer) transition(from seqState) error {
	if s.state != from {
		return fmt.Errorf("sequencer: %s called in state %s", from, s.state)
	}
	s.state = (from + 1) % 4
	return nil
}

// ZeroGradients clears stale gradients; the entry point of every step.
func (s *stepSequencer) ZeroGradients() error {
	if err := s.transition(seqZero); err != nil {
		return err
	}
	s.optimizer.ZeroGrad()
	s.grads = nil
	return nil
}

// Backpropagate computes gradients of the composite loss.
func (s *stepSequencer) Backpropagate(loss *tensor.Tensor) error {
	if err := s.transition(seqBackward); err != nil {
		return err
	}
	s.grads = s.engine.Backward(loss)
	return nil
}

// ApplyStep lets the optimizer consume the gradients.
func (s *stepSequencer) ApplyStep() error {
	if err := s.transition(seqApply); err != nil {
		return err
	}
	s.optimizer.Step(s.grads)
	return nil
}

// AdvanceSchedule moves the learning-rate schedule and completes the
// cycle.
func (s *stepSequencer) AdvanceSchedule(progress float64) error {
	if err := s.transition(seqAdvance); err != nil {
		return err
	}
	s.scheduler.Step(progress)
	s.grads = nil
	return nil
}
