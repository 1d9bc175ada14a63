package nn

import (
	"fmt"

	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ Wᵀ + b.
//
// The weight matrix has shape [outFeatures, inFeatures] and is initialized
// with Kaiming-normal (fan-in); the bias, when present, starts at zero.
// The final layer of the autoregressive networks is built without bias.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter // nil when the layer has no bias
}

// NewLinear creates a Linear layer.
func NewLinear(inFeatures, outFeatures int, useBias bool) *Linear {
	weight := NewParameter("weight", KaimingNormal(inFeatures, tensor.Shape{outFeatures, inFeatures}))
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
	}
	if useBias {
		l.bias = NewParameter("bias", Zeros(tensor.Shape{outFeatures}))
	}
	return l
}

// Forward computes y = x @ Wᵀ + b for input of shape [batch, inFeatures].
func (l *Linear) Forward(e *autodiff.Engine, input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected %d input features, got %d", l.inFeatures, shape[1]))
	}

	wT := e.Transpose(l.weight.Tensor()) // [in, out]
	output := e.MatMul(input, wT)
	if l.bias != nil {
		b := e.Reshape(l.bias.Tensor(), tensor.Shape{1, l.outFeatures})
		output = e.Add(output, b)
	}
	return output
}

// Parameters returns [weight] or [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter { return l.weight }

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter { return l.bias }

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int { return l.outFeatures }
