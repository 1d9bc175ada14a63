package components

import (
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Trend models piecewise-linear growth over normalized time:
//
//	trend(t) = k0*t + m0 + Σ_j δ_j * max(0, t - cp_j)
//
// The hinge form keeps the curve continuous at every changepoint without
// separate offset corrections. Changepoints sit on an even grid over the
// first ChangepointsRange fraction of normalized time. With growth "off"
// only the constant offset m0 remains.
//
// Parameters are stored with a leading series dimension: one row when
// globally shared, one row per tracked series when local; Evaluate gathers
// rows by the meta index vector.
type Trend struct {
	growth       string
	changepoints []float64
	nQuantiles   int
	nSeries      int // parameter rows: 1 for global sharing
	local        bool
	reg          float64
	regThreshold float64
	localReg     float64

	k0     *nn.Parameter // (nSeries, q) base growth rate
	m0     *nn.Parameter // (nSeries, q) offset
	deltas *nn.Parameter // (nSeries, nChangepoints, q) slope changes
}

// TrendSpec carries the construction arguments for the trend component.
type TrendSpec struct {
	Growth            string
	NChangepoints     int
	ChangepointsRange float64
	NQuantiles        int
	NSeries           int
	Local             bool
	Reg               float64
	RegThreshold      float64
	LocalReg          float64
}

// NewTrend creates the trend component with zero-initialized growth so
// training starts from a flat line.
func NewTrend(spec TrendSpec) *Trend {
	rows := 1
	if spec.Local {
		rows = spec.NSeries
	}
	t := &Trend{
		growth:       spec.Growth,
		nQuantiles:   spec.NQuantiles,
		nSeries:      rows,
		local:        spec.Local,
		reg:          spec.Reg,
		regThreshold: spec.RegThreshold,
		localReg:     spec.LocalReg,
		k0:           nn.NewParameter("trend.k0", nn.Randn(tensor.Shape{rows, spec.NQuantiles})),
		m0:           nn.NewParameter("trend.m0", nn.Zeros(tensor.Shape{rows, spec.NQuantiles})),
	}
	if spec.Growth != "off" && spec.NChangepoints > 0 {
		t.changepoints = make([]float64, spec.NChangepoints)
		for j := range t.changepoints {
			t.changepoints[j] = spec.ChangepointsRange * float64(j+1) / float64(spec.NChangepoints+1)
		}
		t.deltas = nn.NewParameter("trend.deltas",
			nn.Zeros(tensor.Shape{rows, spec.NChangepoints, spec.NQuantiles}))
	}
	return t
}

// Evaluate computes the trend over the time channel (batch, window),
// returning (batch, window, quantiles).
func (t *Trend) Evaluate(e *autodiff.Engine, timeInput *tensor.Tensor, meta []int) *tensor.Tensor {
	shape := timeInput.Shape()
	batchSize, window := shape[0], shape[1]
	idx := t.paramRows(meta, batchSize)

	m0 := e.Reshape(e.IndexSelect(t.m0.Tensor(), idx), tensor.Shape{batchSize, 1, t.nQuantiles})
	if t.growth == "off" {
		zero := e.Constant(tensor.Zeros(tensor.Shape{batchSize, window, 1}))
		return e.Add(zero, m0)
	}

	tR := e.Constant(tensor.Reshape(timeInput, tensor.Shape{batchSize, window, 1}))
	k0 := e.Reshape(e.IndexSelect(t.k0.Tensor(), idx), tensor.Shape{batchSize, 1, t.nQuantiles})
	out := e.Add(e.Mul(tR, k0), m0)

	if t.deltas != nil {
		deltasSel := e.IndexSelect(t.deltas.Tensor(), idx) // (b, ncp, q)
		timeData := timeInput.Data()
		for j, cp := range t.changepoints {
			// hinge feature max(0, t - cp_j), a constant of the input
			hinge := tensor.New(tensor.Shape{batchSize, window, 1})
			hingeData := hinge.Data()
			for i, tv := range timeData {
				if d := tv - cp; d > 0 {
					hingeData[i] = d
				}
			}
			deltaJ := e.SliceDim(deltasSel, 1, j, j+1) // (b, 1, q)
			out = e.Add(out, e.Mul(e.Constant(hinge), deltaJ))
		}
	}
	return out
}

func (t *Trend) paramRows(meta []int, batchSize int) []int {
	if !t.local {
		return make([]int, batchSize)
	}
	return broadcastMeta(meta, batchSize)
}

// Parameters returns the trainable trend parameters.
func (t *Trend) Parameters() []*nn.Parameter {
	params := []*nn.Parameter{t.k0, t.m0}
	if t.deltas != nil {
		params = append(params, t.deltas)
	}
	return params
}

// Deltas returns the changepoint-delta parameter, or nil without
// changepoints.
func (t *Trend) Deltas() *nn.Parameter { return t.deltas }

// SparsityTerm penalizes changepoint-delta magnitudes above the soft
// threshold: reg * mean(max(0, |δ| - threshold)).
func (t *Trend) SparsityTerm(e *autodiff.Engine) *tensor.Tensor {
	if t.reg <= 0 || t.deltas == nil {
		return nil
	}
	excess := e.ReLU(e.AddScalar(e.Abs(t.deltas.Tensor()), -t.regThreshold))
	return e.Scale(e.Mean(excess), t.reg)
}

// LocalDeviationTerm penalizes per-series growth parameters deviating from
// their cross-series mean. Always zero for globally shared trend.
func (t *Trend) LocalDeviationTerm(e *autodiff.Engine) *tensor.Tensor {
	if !t.local || t.localReg <= 0 || t.nSeries < 2 {
		return nil
	}
	term := deviationFromMean(e, t.k0.Tensor())
	if t.deltas != nil {
		flat := e.Reshape(t.deltas.Tensor(),
			tensor.Shape{t.nSeries, t.deltas.Tensor().NumElements() / t.nSeries})
		term = e.Add(term, deviationFromMean(e, flat))
	}
	return e.Scale(term, t.localReg)
}

// deviationFromMean returns mean((p - mean_series(p))²) for a parameter
// with the series dimension leading.
func deviationFromMean(e *autodiff.Engine, p *tensor.Tensor) *tensor.Tensor {
	rows := p.Shape()[0]
	mean := e.Scale(e.SumDim(p, 0, true), 1.0/float64(rows))
	d := e.Sub(p, mean)
	return e.Mean(e.Mul(d, d))
}
