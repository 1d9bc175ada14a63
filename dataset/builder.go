package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dashirov/neural-prophet/forecast"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Event carries the occurrence dates of one configured event or holiday.
type Event struct {
	Name  string
	Dates []time.Time
}

// Builder precomputes per-row feature columns for one series against a
// model's feature schema and assembles sliding-window batches from them.
type Builder struct {
	model   *forecast.Model
	cfg     forecast.Config
	window  int
	rows    int
	times   []float64            // normalized to [0, 1] over the series span
	values  []float64            // normalized observations
	fourier map[string][]float64 // per period: rows × 2K, row-major
	events  map[string][]float64 // per event: indicator per row
	extras  map[string][]float64 // per regressor: normalized value per row
}

// NewBuilder derives every feature column the model's schema asks for.
// Regressor columns must exist in the series extras; event indicators are
// derived from the given occurrence dates at day granularity.
func NewBuilder(model *forecast.Model, series *Series, events []Event) (*Builder, error) {
	cfg := model.Config()
	b := &Builder{
		model:   model,
		cfg:     cfg,
		window:  cfg.NLags + cfg.NForecasts,
		rows:    series.Len(),
		fourier: make(map[string][]float64),
		events:  make(map[string][]float64),
		extras:  make(map[string][]float64),
	}
	if b.rows < b.window {
		return nil, fmt.Errorf("dataset: series of %d rows shorter than window %d", b.rows, b.window)
	}

	b.times = normalizedTimes(series.Times)
	if cfg.Normalization.Global {
		n := Normalizer{Shift: cfg.Normalization.Shift, Scale: cfg.Normalization.Scale}
		b.values = n.Apply(series.Values)
	} else {
		b.values = append([]float64(nil), series.Values...)
	}

	if cfg.Seasonality != nil {
		for name, p := range cfg.Seasonality.Periods {
			b.fourier[name] = fourierFeatures(series.Times, p.Period, p.K)
		}
	}

	eventDates := make(map[string]map[string]bool, len(events))
	for _, ev := range events {
		days := make(map[string]bool, len(ev.Dates))
		for _, d := range ev.Dates {
			days[d.Format("2006-01-02")] = true
		}
		eventDates[ev.Name] = days
	}
	for _, ev := range cfg.Events {
		col := make([]float64, b.rows)
		if days, ok := eventDates[ev.Name]; ok {
			for i, t := range series.Times {
				if days[t.Format("2006-01-02")] {
					col[i] = 1
				}
			}
		}
		b.events[ev.Name] = col
	}

	for _, name := range regressorColumns(model) {
		col, ok := series.Extra[name]
		if !ok {
			return nil, fmt.Errorf("dataset: series is missing regressor column %q", name)
		}
		b.extras[name] = FitMinMax(col).Apply(col)
	}

	return b, nil
}

// regressorColumns lists every series column the schema references:
// future regressors and lagged regressors.
func regressorColumns(model *forecast.Model) []string {
	var names []string
	names = append(names, model.EffectOrder("additive_regressors")...)
	names = append(names, model.EffectOrder("multiplicative_regressors")...)
	for _, rangeName := range model.Stacker().Names() {
		if n, ok := strings.CutPrefix(rangeName, "lagged_regressor_"); ok {
			names = append(names, n)
		}
	}
	return names
}

// Windows returns the number of sliding windows the series yields.
func (b *Builder) Windows() int {
	return b.rows - b.window + 1
}

// Batch assembles the stacked batch for windows [start, start+size).
func (b *Builder) Batch(start, size int) (forecast.Batch, error) {
	if start < 0 || start+size > b.Windows() {
		return forecast.Batch{}, fmt.Errorf("dataset: batch [%d, %d) outside %d windows",
			start, start+size, b.Windows())
	}
	cfg := b.cfg
	stacker := b.model.Stacker()
	blocks := make(map[string]*tensor.Tensor)

	for _, name := range stacker.Names() {
		r, _ := stacker.Range(name)
		var block *tensor.Tensor
		switch {
		case name == "time":
			block = b.gather(start, size, 0, b.window, b.times, 1)
		case name == "lags":
			block = b.gather(start, size, 0, cfg.NLags, b.values, 1)
		case name == "targets":
			block = b.gather(start, size, cfg.NLags, b.window, b.values, 1)
		case strings.HasPrefix(name, "seasonality_"):
			season := strings.TrimPrefix(name, "seasonality_")
			block = b.gather(start, size, 0, b.window, b.fourier[season], r.Width)
		case name == "additive_events" || name == "multiplicative_events":
			block = b.gatherChannels(start, size, 0, b.window, b.model.EffectOrder(name), b.events)
		case name == "additive_regressors" || name == "multiplicative_regressors":
			block = b.gatherChannels(start, size, 0, b.window, b.model.EffectOrder(name), b.extras)
		case strings.HasPrefix(name, "lagged_regressor_"):
			covar := strings.TrimPrefix(name, "lagged_regressor_")
			block = b.gather(start, size, 0, cfg.NLags, b.extras[covar], 1)
		default:
			return forecast.Batch{}, fmt.Errorf("dataset: unhandled feature range %q", name)
		}
		blocks[name] = block
	}

	input, err := stacker.Stack(blocks)
	if err != nil {
		return forecast.Batch{}, err
	}
	return forecast.Batch{Input: input}, nil
}

// Batches splits every window into batches of at most batchSize.
func (b *Builder) Batches(batchSize int) ([]forecast.Batch, error) {
	var out []forecast.Batch
	for start := 0; start < b.Windows(); start += batchSize {
		size := batchSize
		if start+size > b.Windows() {
			size = b.Windows() - start
		}
		batch, err := b.Batch(start, size)
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}
	return out, nil
}

// gather copies column values over window steps [from, to) into a
// (size, steps*width) block. The column is row-major with width values
// per series row.
func (b *Builder) gather(start, size, from, to int, column []float64, width int) *tensor.Tensor {
	steps := to - from
	block := tensor.New(tensor.Shape{size, steps * width})
	data := block.Data()
	for w := 0; w < size; w++ {
		base := (start + w + from) * width
		copy(data[w*steps*width:(w+1)*steps*width], column[base:base+steps*width])
	}
	return block
}

// gatherChannels interleaves several single-value columns into a
// (size, steps*channels) block, one channel per named column per step.
func (b *Builder) gatherChannels(start, size, from, to int, names []string, columns map[string][]float64) *tensor.Tensor {
	steps := to - from
	width := len(names)
	block := tensor.New(tensor.Shape{size, steps * width})
	data := block.Data()
	for w := 0; w < size; w++ {
		for s := 0; s < steps; s++ {
			row := start + w + from + s
			for c, name := range names {
				data[w*steps*width+s*width+c] = columns[name][row]
			}
		}
	}
	return block
}

func normalizedTimes(times []time.Time) []float64 {
	out := make([]float64, len(times))
	if len(times) < 2 {
		return out
	}
	t0 := times[0]
	span := times[len(times)-1].Sub(t0).Seconds()
	if span == 0 {
		span = 1
	}
	for i, t := range times {
		out[i] = t.Sub(t0).Seconds() / span
	}
	return out
}

// fourierFeatures computes the calendar Fourier features for one period:
// per row, sin and cos of each harmonic of the day-of-period angle.
func fourierFeatures(times []time.Time, periodDays float64, k int) []float64 {
	out := make([]float64, len(times)*2*k)
	for i, t := range times {
		days := float64(t.Unix()) / 86400.0
		for h := 0; h < k; h++ {
			angle := 2 * math.Pi * float64(h+1) * days / periodDays
			out[i*2*k+2*h] = math.Sin(angle)
			out[i*2*k+2*h+1] = math.Cos(angle)
		}
	}
	return out
}
