package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashirov/neural-prophet/internal/tensor"
)

// newTrendModel builds a minimal model: trend only, no lags, horizon 3.
func newTrendModel(t *testing.T, quantiles []float64) *Model {
	t.Helper()
	m, err := New(Config{
		NForecasts: 3,
		Quantiles:  quantiles,
		Train:      TrainConfig{Epochs: 1, BatchSize: 4},
	})
	require.NoError(t, err)
	return m
}

// trendBatch stacks a deterministic time/target batch for a trend-only
// schema.
func trendBatch(t *testing.T, m *Model, batchSize int) Batch {
	t.Helper()
	window := m.Config().NLags + m.Config().NForecasts
	timeBlock := tensor.New(tensor.Shape{batchSize, window})
	targetBlock := tensor.New(tensor.Shape{batchSize, m.Config().NForecasts})
	for b := 0; b < batchSize; b++ {
		for s := 0; s < window; s++ {
			timeBlock.Set(float64(b*window+s)/float64(batchSize*window), b, s)
		}
		for s := 0; s < m.Config().NForecasts; s++ {
			targetBlock.Set(0.5, b, s)
		}
	}
	input, err := m.Stacker().Stack(map[string]*tensor.Tensor{
		"time":    timeBlock,
		"targets": targetBlock,
	})
	require.NoError(t, err)
	return Batch{Input: input}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "multiplicative seasonality without trend",
			cfg: Config{
				NForecasts: 1,
				Trend:      TrendConfig{Growth: "off"},
				Seasonality: &SeasonalityConfig{
					Mode:    ModeMultiplicative,
					Periods: map[string]SeasonalPeriod{"weekly": {Period: 7, K: 3}},
				},
			},
		},
		{
			name: "unknown seasonality mode",
			cfg: Config{
				NForecasts: 1,
				Seasonality: &SeasonalityConfig{
					Mode:    "divisive",
					Periods: map[string]SeasonalPeriod{"weekly": {Period: 7, K: 3}},
				},
			},
		},
		{
			name: "multiplicative event without trend",
			cfg: Config{
				NForecasts: 1,
				Trend:      TrendConfig{Growth: "off"},
				Events:     []EventConfig{{Name: "playoffs", Mode: ModeMultiplicative}},
			},
		},
		{
			name: "unknown regressor mode",
			cfg: Config{
				NForecasts: 1,
				Regressors: []RegressorConfig{{Name: "temperature", Mode: "divisive"}},
			},
		},
		{
			name: "unsorted quantiles",
			cfg:  Config{NForecasts: 1, Quantiles: []float64{0.9, 0.5, 0.1}},
		},
		{
			name: "multi-quantile list without median",
			cfg:  Config{NForecasts: 1, Quantiles: []float64{0.1, 0.9}},
		},
		{
			name: "zero horizon",
			cfg:  Config{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestUnknownEventModeCoercedToAdditive(t *testing.T) {
	m, err := New(Config{
		NForecasts: 1,
		Events:     []EventConfig{{Name: "superbowl", Mode: "divisive"}},
	})
	require.NoError(t, err, "unknown event mode must degrade, not fail")
	assert.Equal(t, []string{"superbowl"}, m.EffectOrder("additive_events"))
	assert.Empty(t, m.EffectOrder("multiplicative_events"))
}

func TestTrendOnlyForecastEqualsTrendComponent(t *testing.T) {
	// With every optional component disabled, the forecast reduces to
	// the trend evaluated over the horizon.
	m := newTrendModel(t, []float64{0.5})
	batch := trendBatch(t, m, 4)

	prediction, comps := m.Forward(batch.Input, RunPredict, nil, true)
	require.Equal(t, tensor.Shape{4, 3, 1}, prediction.Shape())
	require.Contains(t, comps, "trend")
	assert.InDeltaSlice(t, comps["trend"].Data(), prediction.Data(), 1e-12)
}

func TestForwardShapesWithQuantiles(t *testing.T) {
	m := newTrendModel(t, []float64{0.1, 0.5, 0.9})
	batch := trendBatch(t, m, 4)

	prediction, comps := m.Forward(batch.Input, RunPredict, nil, false)
	assert.Nil(t, comps, "components only on request")
	assert.Equal(t, tensor.Shape{4, 3, 3}, prediction.Shape())
}

func TestMissingSchemaRangeIsSkipped(t *testing.T) {
	// Seasonality enabled but its feature range absent from the schema
	// would be a builder bug; absence of an optional component's range in
	// the schema itself must not error. A trend-only model simply has no
	// seasonality range registered.
	m := newTrendModel(t, []float64{0.5})
	assert.False(t, m.Stacker().Has("seasonality_weekly"))
	batch := trendBatch(t, m, 2)
	prediction, _ := m.Forward(batch.Input, RunPredict, nil, false)
	assert.Equal(t, tensor.Shape{2, 3, 1}, prediction.Shape())
}

func TestSeriesIndexLookup(t *testing.T) {
	m, err := New(Config{
		NForecasts: 1,
		IDList:     []string{"store_a", "store_b"},
	})
	require.NoError(t, err)

	idx, err := m.SeriesIndex("store_b")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = m.SeriesIndex("store_c")
	assert.Error(t, err)
}

func TestMedianIndex(t *testing.T) {
	assert.Equal(t, 0, medianIndex([]float64{0.5}))
	assert.Equal(t, 1, medianIndex([]float64{0.1, 0.5, 0.9}))
	assert.Equal(t, 2, medianIndex([]float64{0.05, 0.25, 0.5, 0.75, 0.95}))
	assert.Equal(t, 0, medianIndex([]float64{0.8}))
}

func TestLocalTrendUsesSeriesIdentity(t *testing.T) {
	m, err := New(Config{
		NForecasts: 2,
		Quantiles:  []float64{0.5},
		IDList:     []string{"a", "b"},
		Trend:      TrendConfig{GlobalLocal: ShareLocal},
	})
	require.NoError(t, err)

	// Give the two series distinct offsets.
	m.trend.Parameters()[1].Tensor().Data()[0] = 1 // m0 series a
	m.trend.Parameters()[1].Tensor().Data()[1] = 2 // m0 series b

	batch := trendBatch(t, m, 2)
	withMeta, _ := m.Forward(batch.Input, RunPredict, []int{0, 1}, false)
	assert.NotEqual(t, withMeta.At(0, 0, 0), withMeta.At(1, 0, 0),
		"distinct series parameters must produce distinct forecasts")

	// Missing meta falls back to a series-0 broadcast instead of erroring.
	fallback, _ := m.Forward(batch.Input, RunPredict, nil, false)
	require.Equal(t, tensor.Shape{2, 2, 1}, fallback.Shape())
}
