package nn

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Sequential chains modules, feeding each module's output into the next.
type Sequential struct {
	modules []Module
}

// NewSequential creates a sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential) Forward(e *autodiff.Engine, input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, m := range s.modules {
		output = m.Forward(e, output)
	}
	return output
}

// Parameters returns the parameters of all contained modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Modules returns the contained modules in order.
func (s *Sequential) Modules() []Module { return s.modules }

// Add appends a module to the chain.
func (s *Sequential) Add(m Module) { s.modules = append(s.modules, m) }
