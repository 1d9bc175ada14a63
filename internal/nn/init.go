package nn

import (
	"math"
	"math/rand"

	"github.com/dashirov/neural-prophet/internal/tensor"
)

// KaimingNormal initializes a tensor with values drawn from
// N(0, sqrt(2/fanIn)), the fan-in variant used for layers followed by ReLU.
func KaimingNormal(fanIn int, shape tensor.Shape) *tensor.Tensor {
	std := math.Sqrt(2.0 / float64(fanIn))
	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		data[i] = rand.NormFloat64() * std
	}
	return t
}

// XavierUniform initializes a tensor with values drawn from
// U(-b, b) where b = sqrt(6/(fanIn+fanOut)).
func XavierUniform(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		data[i] = (rand.Float64()*2 - 1) * bound
	}
	return t
}

// Zeros creates a zero-filled tensor, commonly used for biases and for
// scalar-effect coefficient blocks that should start contributing nothing.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn(shape tensor.Shape) *tensor.Tensor {
	return tensor.Randn(shape)
}
