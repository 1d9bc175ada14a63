package forecast

import (
	"fmt"

	"github.com/dashirov/neural-prophet/internal/tensor"
)

// FeatureSpan says which part of the time window a feature block covers.
type FeatureSpan int

const (
	// SpanFull covers the whole window: lags + forecasts.
	SpanFull FeatureSpan = iota
	// SpanLags covers only the lag window.
	SpanLags
	// SpanHorizon covers only the forecast horizon.
	SpanHorizon
)

// FeatureRange describes one named, contiguous block of feature columns
// inside the flat batch tensor.
type FeatureRange struct {
	Name  string
	Span  FeatureSpan
	Width int // channels per time step
	start int // first column in the flat layout
}

// ComponentStacker owns the feature schema: which named blocks exist, where
// each lives inside the flat (batch, columns) input tensor, and how to pack
// and unpack them. The schema is fixed at construction; components whose
// range is absent are skipped by the model, not errored on.
type ComponentStacker struct {
	nLags      int
	nForecasts int
	ranges     map[string]*FeatureRange
	order      []string
	total      int
}

// NewComponentStacker creates an empty schema for the given window split.
func NewComponentStacker(nLags, nForecasts int) *ComponentStacker {
	return &ComponentStacker{
		nLags:      nLags,
		nForecasts: nForecasts,
		ranges:     make(map[string]*FeatureRange),
	}
}

// AddRange registers a named feature block. Ranges are laid out in
// registration order and cannot be re-registered.
func (s *ComponentStacker) AddRange(name string, span FeatureSpan, width int) error {
	if _, ok := s.ranges[name]; ok {
		return fmt.Errorf("stacker: range %q already registered", name)
	}
	if width <= 0 {
		return fmt.Errorf("stacker: range %q has non-positive width %d", name, width)
	}
	r := &FeatureRange{Name: name, Span: span, Width: width, start: s.total}
	s.ranges[name] = r
	s.order = append(s.order, name)
	s.total += s.spanLen(span) * width
	return nil
}

// Has reports whether a named range is part of the schema.
func (s *ComponentStacker) Has(name string) bool {
	_, ok := s.ranges[name]
	return ok
}

// Range returns the registered range for name.
func (s *ComponentStacker) Range(name string) (FeatureRange, bool) {
	r, ok := s.ranges[name]
	if !ok {
		return FeatureRange{}, false
	}
	return *r, true
}

// Names returns the registered range names in layout order.
func (s *ComponentStacker) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// TotalColumns returns the width of the flat batch tensor.
func (s *ComponentStacker) TotalColumns() int { return s.total }

func (s *ComponentStacker) spanLen(span FeatureSpan) int {
	switch span {
	case SpanLags:
		return s.nLags
	case SpanHorizon:
		return s.nForecasts
	default:
		return s.nLags + s.nForecasts
	}
}

// Stack packs named blocks into one flat (batch, TotalColumns) tensor.
// Every registered range must be present; each block must have
// spanLen*width values per row.
func (s *ComponentStacker) Stack(blocks map[string]*tensor.Tensor) (*tensor.Tensor, error) {
	if len(s.order) == 0 {
		return nil, fmt.Errorf("stacker: empty schema")
	}
	batchSize := -1
	for _, name := range s.order {
		block, ok := blocks[name]
		if !ok {
			return nil, fmt.Errorf("stacker: missing block %q", name)
		}
		shape := block.Shape()
		if batchSize == -1 {
			batchSize = shape[0]
		} else if shape[0] != batchSize {
			return nil, fmt.Errorf("stacker: block %q batch size %d, want %d", name, shape[0], batchSize)
		}
		r := s.ranges[name]
		want := s.spanLen(r.Span) * r.Width
		if block.NumElements() != batchSize*want {
			return nil, fmt.Errorf("stacker: block %q has %d values per row, want %d",
				name, block.NumElements()/batchSize, want)
		}
	}

	out := tensor.Zeros(tensor.Shape{batchSize, s.total})
	outData := out.Data()
	for _, name := range s.order {
		r := s.ranges[name]
		width := s.spanLen(r.Span) * r.Width
		blockData := blocks[name].Data()
		for b := 0; b < batchSize; b++ {
			copy(outData[b*s.total+r.start:b*s.total+r.start+width], blockData[b*width:(b+1)*width])
		}
	}
	return out, nil
}

// Unstack extracts the named block from a flat batch tensor and restores
// its natural shape:
//
//	"time"            -> (batch, window)
//	"lags"            -> (batch, nLags)
//	"targets"         -> (batch, nForecasts, 1)
//	everything else   -> (batch, spanLen, width)
//
// Panics when the range is not in the schema; callers gate on Has.
func (s *ComponentStacker) Unstack(name string, batch *tensor.Tensor) *tensor.Tensor {
	r, ok := s.ranges[name]
	if !ok {
		panic(fmt.Sprintf("stacker: unstack of unregistered range %q", name))
	}
	span := s.spanLen(r.Span)
	width := span * r.Width
	flat := tensor.SliceDim(batch, 1, r.start, r.start+width)

	batchSize := batch.Shape()[0]
	switch name {
	case "time":
		return tensor.Reshape(flat, tensor.Shape{batchSize, span})
	case "lags":
		return tensor.Reshape(flat, tensor.Shape{batchSize, span})
	default:
		return tensor.Reshape(flat, tensor.Shape{batchSize, span, r.Width})
	}
}
