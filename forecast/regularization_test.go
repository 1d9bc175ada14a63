package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalModeLocalRegIsExactlyZero(t *testing.T) {
	// A configured local-regularization weight must have no effect while
	// the component is globally shared.
	m, err := New(Config{
		NForecasts: 2,
		Trend: TrendConfig{
			GlobalLocal:   ShareGlobal,
			NChangepoints: 4,
			LocalReg:      100,
		},
		Seasonality: &SeasonalityConfig{
			Periods:     map[string]SeasonalPeriod{"weekly": {Period: 7, K: 3}},
			GlobalLocal: ShareGlobal,
			LocalReg:    100,
		},
	})
	require.NoError(t, err)

	reg := m.regularizationLoss(0)
	assert.Equal(t, 0.0, reg.Data()[0])
}

func TestDelayWeightGatesSparsityTerms(t *testing.T) {
	m, err := New(Config{
		NForecasts: 2,
		Trend: TrendConfig{
			NChangepoints: 4,
			Reg:           1.0,
		},
		Train: TrainConfig{RegStartPct: 0.5, RegFullPct: 0.8},
	})
	require.NoError(t, err)

	// Deltas start at zero; give them magnitude so the gated term is
	// visibly nonzero at full strength.
	deltas := m.trend.Deltas().Tensor().Data()
	for i := range deltas {
		deltas[i] = 2.0
	}

	before := m.regularizationLoss(0.3)
	assert.Equal(t, 0.0, before.Data()[0], "gated terms contribute nothing before reg_start_pct")

	full := m.regularizationLoss(1.0)
	assert.InDelta(t, 2.0, full.Data()[0], 1e-12, "mean |delta| at full delay weight")

	halfway := m.regularizationLoss(0.65)
	assert.InDelta(t, 1.0, halfway.Data()[0], 1e-12, "half-cosine ramp midpoint")
}

func TestLocalDeviationTermIsAlwaysOn(t *testing.T) {
	m, err := New(Config{
		NForecasts: 2,
		IDList:     []string{"a", "b"},
		Trend: TrendConfig{
			GlobalLocal: ShareLocal,
			LocalReg:    1.0,
		},
		Train: TrainConfig{RegStartPct: 0.5, RegFullPct: 0.8},
	})
	require.NoError(t, err)

	// Make per-series base growth diverge.
	k0 := m.trend.Parameters()[0].Tensor().Data()
	k0[0], k0[1] = 1.0, 3.0

	reg := m.regularizationLoss(0)
	// Squared deviation from the cross-series mean (2.0) is 1 for both
	// rows.
	assert.InDelta(t, 1.0, reg.Data()[0], 1e-12,
		"local terms are not gated by the delay weight")
}

func TestFindingLRSuppressesGatedRegularization(t *testing.T) {
	m, err := New(Config{
		NForecasts: 2,
		Trend: TrendConfig{
			NChangepoints: 4,
			Reg:           1.0,
		},
		Train: TrainConfig{FindingLR: true},
	})
	require.NoError(t, err)

	deltas := m.trend.Deltas().Tensor().Data()
	for i := range deltas {
		deltas[i] = 2.0
	}
	reg := m.regularizationLoss(1.0)
	assert.Equal(t, 0.0, reg.Data()[0])
}

func TestEventSparsityRegularization(t *testing.T) {
	m, err := New(Config{
		NForecasts: 2,
		Events: []EventConfig{
			{Name: "superbowl", Mode: ModeAdditive, Reg: 2.0},
			{Name: "playoffs", Mode: ModeAdditive}, // no lambda, not penalized
		},
	})
	require.NoError(t, err)

	w, err := m.GetEventWeights("superbowl")
	require.NoError(t, err)
	require.Equal(t, 1, w.NumElements())

	// Set both event weights; only superbowl's lambda applies.
	params := m.events.Additive.Parameter().Tensor().Data()
	params[0], params[1] = 3.0, 100.0

	reg := m.regularizationLoss(1.0)
	assert.InDelta(t, 6.0, reg.Data()[0], 1e-12, "lambda * mean |w| over the item's columns")
}
