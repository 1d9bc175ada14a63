// Package forecast implements a decomposable neural time-series
// forecasting model: trend, seasonality, autoregression, lagged
// covariates, future regressors and calendar events, each a small learned
// sub-model, composed additively or multiplicatively into per-quantile
// forecasts and trained jointly by gradient descent with per-component
// regularization.
package forecast

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dashirov/neural-prophet/forecast/components"
	"github.com/dashirov/neural-prophet/internal/autodiff"
	"github.com/dashirov/neural-prophet/internal/nn"
	"github.com/dashirov/neural-prophet/internal/optim"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// RunMode selects the execution mode of a forward pass. Quantile-crossing
// correction is active in every mode except training.
type RunMode int

const (
	RunTrain RunMode = iota
	RunValidate
	RunTest
	RunPredict
)

func (m RunMode) String() string {
	switch m {
	case RunTrain:
		return "train"
	case RunValidate:
		return "validate"
	case RunTest:
		return "test"
	default:
		return "predict"
	}
}

// Model is the forecaster: configuration, feature schema, component
// sub-models and the training machinery, assembled once by New.
type Model struct {
	cfg     Config
	log     zerolog.Logger
	engine  *autodiff.Engine
	stacker *ComponentStacker

	idToIndex map[string]int
	needsMeta bool

	trend       *components.Trend
	seasonality *components.Seasonality
	events      *components.ScalarEffectsGroup
	regressors  *components.ScalarEffectsGroup

	arNet      *nn.Sequential
	covarNet   *nn.Sequential
	covarOrder []string
	covarLags  map[string]int
	covarTotal int

	// injected gradient-based covariate attributions for decomposition
	covarWeights map[string]*tensor.Tensor

	loss      nn.LossFunc
	medianIdx int

	optimizer     optim.Optimizer
	scheduler     optim.Scheduler
	sequencer     *stepSequencer
	stepsPerEpoch int
}

// New validates the configuration and assembles the model. Structural
// misconfiguration (multiplicative terms without trend, unknown mode
// strings) fails here and never later.
func New(cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Model{
		cfg:       cfg,
		log:       log.With().Str("component", "forecast").Logger(),
		engine:    autodiff.NewEngine(),
		idToIndex: make(map[string]int, len(cfg.IDList)),
		loss:      cfg.Train.Loss,
		medianIdx: medianIndex(cfg.Quantiles),
		covarLags: make(map[string]int),
	}
	for i, id := range cfg.IDList {
		m.idToIndex[id] = i
	}
	if len(cfg.Quantiles) > 1 {
		m.loss = PinballLoss(cfg.Quantiles, m.medianIdx)
	}

	// Degraded-but-logged: unknown event modes are coerced to additive.
	events := make([]EventConfig, len(cfg.Events))
	copy(events, cfg.Events)
	for i := range events {
		switch events[i].Mode {
		case ModeAdditive, ModeMultiplicative:
		default:
			m.log.Warn().
				Str("event", events[i].Name).
				Str("mode", events[i].Mode).
				Msg("unknown event mode, coercing to additive")
			events[i].Mode = ModeAdditive
		}
	}
	m.cfg.Events = events

	m.buildComponents(events)
	if err := m.buildSchema(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) buildComponents(events []EventConfig) {
	cfg := m.cfg
	nq := len(cfg.Quantiles)
	nSeries := len(cfg.IDList)

	m.trend = components.NewTrend(components.TrendSpec{
		Growth:            cfg.Trend.Growth,
		NChangepoints:     cfg.Trend.NChangepoints,
		ChangepointsRange: cfg.Trend.ChangepointsRange,
		NQuantiles:        nq,
		NSeries:           nSeries,
		Local:             cfg.Trend.GlobalLocal == ShareLocal,
		Reg:               cfg.Trend.Reg,
		RegThreshold:      cfg.Trend.RegThreshold,
		LocalReg:          cfg.Trend.LocalReg,
	})
	m.needsMeta = cfg.Trend.GlobalLocal == ShareLocal

	if cfg.Seasonality != nil && len(cfg.Seasonality.Periods) > 0 {
		harmonics := make(map[string]int, len(cfg.Seasonality.Periods))
		for name, p := range cfg.Seasonality.Periods {
			harmonics[name] = p.K
		}
		m.seasonality = components.NewSeasonality(components.SeasonalitySpec{
			Harmonics:  harmonics,
			Mode:       cfg.Seasonality.Mode,
			Sharing:    cfg.Seasonality.GlobalLocal,
			NQuantiles: nq,
			NSeries:    nSeries,
			Reg:        cfg.Seasonality.Reg,
			LocalReg:   cfg.Seasonality.LocalReg,
		})
		if cfg.Seasonality.GlobalLocal != ShareGlobal {
			m.needsMeta = true
		}
	}

	eventItems := make([]components.ScalarItem, len(events))
	for i, ev := range events {
		eventItems[i] = components.ScalarItem{Name: ev.Name, Mode: ev.Mode, Reg: ev.Reg}
	}
	m.events = components.NewScalarEffectsGroup("events", nq, eventItems)

	regItems := make([]components.ScalarItem, len(cfg.Regressors))
	for i, r := range cfg.Regressors {
		regItems[i] = components.ScalarItem{Name: r.Name, Mode: r.Mode, Reg: r.Reg}
	}
	m.regressors = components.NewScalarEffectsGroup("regressors", nq, regItems)

	if cfg.NLags > 0 {
		m.arNet = buildNet(cfg.NLags, cfg.AR.HiddenLayers, cfg.NForecasts*nq)
	}
	if len(cfg.LaggedRegressors) > 0 {
		for _, lr := range cfg.LaggedRegressors {
			lags := lr.NLags
			if lags == 0 || lags > cfg.NLags {
				lags = cfg.NLags
			}
			m.covarOrder = append(m.covarOrder, lr.Name)
			m.covarLags[lr.Name] = lags
			m.covarTotal += lags
		}
		m.covarNet = buildNet(m.covarTotal, cfg.CovarHiddenLayers, cfg.NForecasts*nq)
	}
}

// buildNet assembles a feed-forward net: Linear+ReLU hidden layers and a
// final Linear without bias.
func buildNet(in int, hidden []int, out int) *nn.Sequential {
	net := nn.NewSequential()
	prev := in
	for _, h := range hidden {
		net.Add(nn.NewLinear(prev, h, true))
		net.Add(nn.NewReLU())
		prev = h
	}
	net.Add(nn.NewLinear(prev, out, false))
	return net
}

// buildSchema registers every feature range the enabled components need.
// Batches built against this schema may still omit ranges by carrying
// zeros; absence from the schema itself means the component is skipped.
func (m *Model) buildSchema() error {
	cfg := m.cfg
	s := NewComponentStacker(cfg.NLags, cfg.NForecasts)
	if err := s.AddRange("time", SpanFull, 1); err != nil {
		return err
	}
	if cfg.NLags > 0 {
		if err := s.AddRange("lags", SpanLags, 1); err != nil {
			return err
		}
	}
	if err := s.AddRange("targets", SpanHorizon, 1); err != nil {
		return err
	}
	if m.seasonality != nil {
		for _, name := range m.seasonality.Names() {
			k := cfg.Seasonality.Periods[name].K
			if err := s.AddRange("seasonality_"+name, SpanFull, 2*k); err != nil {
				return err
			}
		}
	}
	if !m.events.Additive.Empty() {
		if err := s.AddRange("additive_events", SpanFull, m.events.Additive.TotalFeatures()); err != nil {
			return err
		}
	}
	if !m.events.Multiplicative.Empty() {
		if err := s.AddRange("multiplicative_events", SpanFull, m.events.Multiplicative.TotalFeatures()); err != nil {
			return err
		}
	}
	if !m.regressors.Additive.Empty() {
		if err := s.AddRange("additive_regressors", SpanFull, m.regressors.Additive.TotalFeatures()); err != nil {
			return err
		}
	}
	if !m.regressors.Multiplicative.Empty() {
		if err := s.AddRange("multiplicative_regressors", SpanFull, m.regressors.Multiplicative.TotalFeatures()); err != nil {
			return err
		}
	}
	for _, name := range m.covarOrder {
		if err := s.AddRange("lagged_regressor_"+name, SpanLags, 1); err != nil {
			return err
		}
	}
	m.stacker = s
	return nil
}

// Config returns the immutable model configuration.
func (m *Model) Config() Config { return m.cfg }

// Stacker returns the feature schema shared with batch builders.
func (m *Model) Stacker() *ComponentStacker { return m.stacker }

// Engine returns the autodiff engine driving this model.
func (m *Model) Engine() *autodiff.Engine { return m.engine }

// SeriesIndex maps a series identifier to its dense index.
func (m *Model) SeriesIndex(id string) (int, error) {
	idx, ok := m.idToIndex[id]
	if !ok {
		return 0, fmt.Errorf("forecast: unknown series id %q", id)
	}
	return idx, nil
}

// EffectOrder returns the item layout order inside one scalar-effect
// feature range, so batch builders lay indicator channels out in the same
// order as the learned weight columns.
func (m *Model) EffectOrder(rangeName string) []string {
	switch rangeName {
	case "additive_events":
		return m.events.Additive.Names()
	case "multiplicative_events":
		return m.events.Multiplicative.Names()
	case "additive_regressors":
		return m.regressors.Additive.Names()
	case "multiplicative_regressors":
		return m.regressors.Multiplicative.Names()
	}
	return nil
}

// Parameters returns every trainable parameter of the model.
func (m *Model) Parameters() []*nn.Parameter {
	params := m.trend.Parameters()
	if m.seasonality != nil {
		params = append(params, m.seasonality.Parameters()...)
	}
	params = append(params, m.events.Parameters()...)
	params = append(params, m.regressors.Parameters()...)
	if m.arNet != nil {
		params = append(params, m.arNet.Parameters()...)
	}
	if m.covarNet != nil {
		params = append(params, m.covarNet.Parameters()...)
	}
	return params
}

// forwardState retains the per-component intermediates one forward pass
// produced, for decomposition and loss assembly.
type forwardState struct {
	batch   *tensor.Tensor
	meta    []int
	window  int
	trend   *tensor.Tensor            // (b, window, q)
	seasons map[string]*tensor.Tensor // raw per-name outputs over the window
	arOut   *tensor.Tensor            // (b, horizon, q)
	covOut  *tensor.Tensor            // (b, horizon, q)
}

// Forward runs one composition pass.
//
// batch is the flat stacked input; meta optionally carries per-row series
// indices (a series-0 broadcast is derived when a local component needs
// identity and none is given). The returned prediction has shape
// (batch, horizon, quantiles); the component map is populated only when
// includeComponents is set.
func (m *Model) Forward(batch *tensor.Tensor, mode RunMode, meta []int, includeComponents bool) (*tensor.Tensor, map[string]*tensor.Tensor) {
	e := m.engine
	cfg := m.cfg
	timeCh := m.stacker.Unstack("time", batch)
	batchSize := timeCh.Shape()[0]
	window := cfg.NLags + cfg.NForecasts

	if m.needsMeta && meta == nil {
		meta = make([]int, batchSize)
	}
	st := &forwardState{batch: batch, meta: meta, window: window}

	// Trend anchors the composition and is always evaluated over the
	// full window.
	st.trend = m.trend.Evaluate(e, timeCh, meta)

	var addNS, mulNS *tensor.Tensor

	if m.seasonality != nil {
		st.seasons = make(map[string]*tensor.Tensor)
		for _, name := range m.seasonality.Names() {
			rangeName := "seasonality_" + name
			if !m.stacker.Has(rangeName) {
				continue
			}
			feats := m.stacker.Unstack(rangeName, batch)
			sOut := m.seasonality.ComputeFourier(e, name, feats, meta)
			st.seasons[name] = sOut
			if m.seasonality.Mode() == ModeMultiplicative {
				mulNS = accumulate(e, mulNS, sOut)
			} else {
				addNS = accumulate(e, addNS, sOut)
			}
		}
	}
	if !m.events.Additive.Empty() && m.stacker.Has("additive_events") {
		addNS = accumulate(e, addNS,
			m.events.Additive.Effects(e, m.stacker.Unstack("additive_events", batch)))
	}
	if !m.events.Multiplicative.Empty() && m.stacker.Has("multiplicative_events") {
		mulNS = accumulate(e, mulNS,
			m.events.Multiplicative.Effects(e, m.stacker.Unstack("multiplicative_events", batch)))
	}
	if !m.regressors.Additive.Empty() && m.stacker.Has("additive_regressors") {
		addNS = accumulate(e, addNS,
			m.regressors.Additive.Effects(e, m.stacker.Unstack("additive_regressors", batch)))
	}
	if !m.regressors.Multiplicative.Empty() && m.stacker.Has("multiplicative_regressors") {
		mulNS = accumulate(e, mulNS,
			m.regressors.Multiplicative.Effects(e, m.stacker.Unstack("multiplicative_regressors", batch)))
	}

	// Full-window nonstationary sum: trend + additive + trend.detach *
	// multiplicative. Detaching trend keeps multiplicative scaling from
	// training the trend weights through this path.
	nonstationary := st.trend
	if addNS != nil {
		nonstationary = e.Add(nonstationary, addNS)
	}
	if mulNS != nil {
		nonstationary = e.Add(nonstationary, e.Mul(e.Detach(st.trend), mulNS))
	}

	var stationary *tensor.Tensor
	if m.arNet != nil && m.stacker.Has("lags") {
		lags := m.stacker.Unstack("lags", batch) // (b, nLags)
		// Stationarize the lag window: remove the nonstationary signal
		// at the lag positions so the AR net sees residuals.
		nsLag := e.SliceDim(nonstationary, 1, 0, cfg.NLags)
		nsMed := e.SliceDim(nsLag, 2, m.medianIdx, m.medianIdx+1)
		nsFlat := e.Reshape(nsMed, tensor.Shape{batchSize, cfg.NLags})
		resid := e.Sub(e.Constant(lags), nsFlat)
		st.arOut = e.Reshape(m.arNet.Forward(e, resid),
			tensor.Shape{batchSize, cfg.NForecasts, len(cfg.Quantiles)})
		stationary = accumulate(e, stationary, st.arOut)
	}
	if m.covarNet != nil {
		if in := m.covarInput(batch); in != nil {
			st.covOut = e.Reshape(m.covarNet.Forward(e, e.Constant(in)),
				tensor.Shape{batchSize, cfg.NForecasts, len(cfg.Quantiles)})
			stationary = accumulate(e, stationary, st.covOut)
		}
	}

	horizon := e.SliceDim(nonstationary, 1, cfg.NLags, window)
	prediction := horizon
	if stationary != nil {
		prediction = e.Add(horizon, stationary)
	}

	prediction = m.reconcileQuantiles(prediction, mode)

	if !includeComponents {
		return prediction, nil
	}
	return prediction, m.decompose(st)
}

// covarInput concatenates the lagged-regressor windows into the joint
// covariate-net input, or returns nil when any window is missing from the
// schema (the whole covariate component is then skipped).
func (m *Model) covarInput(batch *tensor.Tensor) *tensor.Tensor {
	blocks := make([]*tensor.Tensor, 0, len(m.covarOrder))
	batchSize := batch.Shape()[0]
	for _, name := range m.covarOrder {
		rangeName := "lagged_regressor_" + name
		if !m.stacker.Has(rangeName) {
			return nil
		}
		block := m.stacker.Unstack(rangeName, batch) // (b, nLags, 1)
		lags := m.covarLags[name]
		if lags < m.cfg.NLags {
			block = tensor.SliceDim(block, 1, m.cfg.NLags-lags, m.cfg.NLags)
		}
		blocks = append(blocks, block)
	}
	joint := blocks[0]
	if len(blocks) > 1 {
		joint = tensor.Concat(1, blocks...)
	}
	return tensor.Reshape(joint, tensor.Shape{batchSize, m.covarTotal})
}

func accumulate(e *autodiff.Engine, acc, t *tensor.Tensor) *tensor.Tensor {
	if acc == nil {
		return t
	}
	return e.Add(acc, t)
}

// medianIndex locates the median channel: the quantile closest to but not
// exceeding 0.5, or the sole quantile.
func medianIndex(quantiles []float64) int {
	idx := 0
	for i, q := range quantiles {
		if q <= 0.5 {
			idx = i
		}
	}
	return idx
}
