package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MAE returns the mean absolute error between two equal-length slices.
func MAE(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	return floats.Distance(predicted, actual, 1) / float64(len(predicted))
}

// RMSE returns the root mean squared error between two equal-length
// slices.
func RMSE(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	return floats.Distance(predicted, actual, 2) / math.Sqrt(float64(len(predicted)))
}
