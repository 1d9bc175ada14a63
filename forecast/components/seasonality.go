package components

import (
	"fmt"
	"sort"

	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Seasonality models named periodic terms as linear combinations of
// precomputed Fourier features. Each named period owns a coefficient block
// of shape (seriesRows, 2K, quantiles) applied to a (batch, window, 2K)
// feature slice.
//
// Sharing policies: global keeps one coefficient row; local keeps one per
// series; glocal keeps a shared base plus per-series offsets that the
// always-on deviation penalty pulls toward zero.
type Seasonality struct {
	mode       string
	sharing    string
	nQuantiles int
	nSeries    int
	reg        float64
	localReg   float64

	names  []string
	coeffs map[string]*nn.Parameter // (rows, 2K, q)
	// glocal only: per-series offsets layered on the shared coeffs row
	offsets map[string]*nn.Parameter // (nSeries, 2K, q)
}

// SeasonalitySpec carries construction arguments for the seasonality
// component.
type SeasonalitySpec struct {
	// Harmonics maps period name to its Fourier harmonic count K.
	Harmonics  map[string]int
	Mode       string
	Sharing    string
	NQuantiles int
	NSeries    int
	Reg        float64
	LocalReg   float64
}

// NewSeasonality creates the seasonality component with zero-initialized
// coefficients.
func NewSeasonality(spec SeasonalitySpec) *Seasonality {
	rows := 1
	if spec.Sharing == "local" {
		rows = spec.NSeries
	}
	s := &Seasonality{
		mode:       spec.Mode,
		sharing:    spec.Sharing,
		nQuantiles: spec.NQuantiles,
		nSeries:    spec.NSeries,
		reg:        spec.Reg,
		localReg:   spec.LocalReg,
		coeffs:     make(map[string]*nn.Parameter),
	}
	for name := range spec.Harmonics {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	for _, name := range s.names {
		k := spec.Harmonics[name]
		s.coeffs[name] = nn.NewParameter(fmt.Sprintf("seasonality.%s", name),
			nn.Zeros(tensor.Shape{rows, 2 * k, spec.NQuantiles}))
	}
	if spec.Sharing == "glocal" {
		s.offsets = make(map[string]*nn.Parameter)
		for _, name := range s.names {
			k := spec.Harmonics[name]
			s.offsets[name] = nn.NewParameter(fmt.Sprintf("seasonality.%s.offsets", name),
				nn.Zeros(tensor.Shape{spec.NSeries, 2 * k, spec.NQuantiles}))
		}
	}
	return s
}

// Mode returns additive or multiplicative.
func (s *Seasonality) Mode() string { return s.mode }

// Names returns the configured period names in stable order.
func (s *Seasonality) Names() []string { return s.names }

// ComputeFourier evaluates one named period over its feature slice
// (batch, window, 2K), returning (batch, window, quantiles).
func (s *Seasonality) ComputeFourier(e *autodiff.Engine, name string, features *tensor.Tensor, meta []int) *tensor.Tensor {
	coeff, ok := s.coeffs[name]
	if !ok {
		panic(fmt.Sprintf("seasonality: unknown period %q", name))
	}
	shape := features.Shape()
	batchSize, window, nFeat := shape[0], shape[1], shape[2]

	idx := s.paramRows(meta, batchSize)
	sel := e.IndexSelect(coeff.Tensor(), idx) // (b, 2K, q)
	if s.offsets != nil {
		off := e.IndexSelect(s.offsets[name].Tensor(), broadcastMeta(meta, batchSize))
		sel = e.Add(sel, off)
	}

	var out *tensor.Tensor
	for f := 0; f < nFeat; f++ {
		feat := tensor.SliceDim(features, 2, f, f+1) // (b, w, 1), constant
		cf := e.SliceDim(sel, 1, f, f+1)             // (b, 1, q)
		term := e.Mul(e.Constant(feat), cf)
		if out == nil {
			out = term
		} else {
			out = e.Add(out, term)
		}
	}
	if out == nil {
		return e.Constant(tensor.Zeros(tensor.Shape{batchSize, window, s.nQuantiles}))
	}
	return out
}

func (s *Seasonality) paramRows(meta []int, batchSize int) []int {
	if s.sharing != "local" {
		return make([]int, batchSize)
	}
	return broadcastMeta(meta, batchSize)
}

// Parameters returns every period's coefficient blocks.
func (s *Seasonality) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, name := range s.names {
		params = append(params, s.coeffs[name])
		if s.offsets != nil {
			params = append(params, s.offsets[name])
		}
	}
	return params
}

// Coefficients returns the named period's shared coefficient parameter.
func (s *Seasonality) Coefficients(name string) *nn.Parameter { return s.coeffs[name] }

// SparsityTerm sums the per-period mean-square coefficient penalties.
func (s *Seasonality) SparsityTerm(e *autodiff.Engine) *tensor.Tensor {
	if s.reg <= 0 {
		return nil
	}
	var term *tensor.Tensor
	for _, name := range s.names {
		c := s.coeffs[name].Tensor()
		sq := e.Mean(e.Mul(c, c))
		if term == nil {
			term = sq
		} else {
			term = e.Add(term, sq)
		}
	}
	if term == nil {
		return nil
	}
	return e.Scale(term, s.reg)
}

// LocalDeviationTerm is the always-on penalty tying per-series parameters
// to their shared counterpart: deviation from the cross-series mean for
// local sharing, offset magnitude for glocal.
func (s *Seasonality) LocalDeviationTerm(e *autodiff.Engine) *tensor.Tensor {
	if s.localReg <= 0 || s.sharing == "global" {
		return nil
	}
	var term *tensor.Tensor
	switch s.sharing {
	case "local":
		if s.nSeries < 2 {
			return nil
		}
		for _, name := range s.names {
			c := s.coeffs[name].Tensor()
			flat := e.Reshape(c, tensor.Shape{s.nSeries, c.NumElements() / s.nSeries})
			d := deviationFromMean(e, flat)
			if term == nil {
				term = d
			} else {
				term = e.Add(term, d)
			}
		}
	case "glocal":
		for _, name := range s.names {
			off := s.offsets[name].Tensor()
			d := e.Mean(e.Mul(off, off))
			if term == nil {
				term = d
			} else {
				term = e.Add(term, d)
			}
		}
	}
	if term == nil {
		return nil
	}
	return e.Scale(term, s.localReg)
}
