package dataset

import "gonum.org/v1/gonum/floats"

// Normalizer holds the shift/scale of a min-max normalization. The same
// values are stored in the model configuration so metric reporting can
// map predictions back to original units.
type Normalizer struct {
	Shift float64
	Scale float64
}

// FitMinMax fits a min-max normalizer: shift is the minimum, scale the
// value range. A constant series gets scale 1 so normalization stays
// well-defined.
func FitMinMax(values []float64) Normalizer {
	if len(values) == 0 {
		return Normalizer{Scale: 1}
	}
	min := floats.Min(values)
	max := floats.Max(values)
	scale := max - min
	if scale == 0 {
		scale = 1
	}
	return Normalizer{Shift: min, Scale: scale}
}

// Apply maps values into normalized space.
func (n Normalizer) Apply(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - n.Shift) / n.Scale
	}
	return out
}

// Invert maps one normalized value back to original units.
func (n Normalizer) Invert(v float64) float64 {
	return n.Scale*v + n.Shift
}
