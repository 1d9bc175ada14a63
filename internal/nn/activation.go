package nn

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// ReLU applies the rectified linear unit element-wise.
type ReLU struct{}

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU { return &ReLU{} }

// Forward computes max(0, x).
func (r *ReLU) Forward(e *autodiff.Engine, input *tensor.Tensor) *tensor.Tensor {
	return e.ReLU(input)
}

// Parameters returns nil; activations are parameter-free.
func (r *ReLU) Parameters() []*Parameter { return nil }
