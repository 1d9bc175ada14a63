package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashirov/neural-prophet/forecast"
)

func testSeries(t *testing.T, n int) *Series {
	t.Helper()
	s := &Series{Extra: map[string][]float64{}}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Times = append(s.Times, start.AddDate(0, 0, i))
		s.Values = append(s.Values, float64(i))
	}
	return s
}

func newBuilderModel(t *testing.T, cfg forecast.Config) *forecast.Model {
	t.Helper()
	m, err := forecast.New(cfg)
	require.NoError(t, err)
	return m
}

func TestBuilderWindowCount(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{NForecasts: 2, NLags: 3})
	b, err := NewBuilder(m, testSeries(t, 10), nil)
	require.NoError(t, err)
	// 10 rows, window 5.
	assert.Equal(t, 6, b.Windows())
}

func TestBuilderRejectsShortSeries(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{NForecasts: 3, NLags: 4})
	_, err := NewBuilder(m, testSeries(t, 6), nil)
	assert.Error(t, err)
}

func TestBuilderBatchLagsAndTargets(t *testing.T) {
	// Without global normalization the lag and target columns carry raw
	// observations, so window contents are directly checkable.
	m := newBuilderModel(t, forecast.Config{NForecasts: 2, NLags: 3})
	b, err := NewBuilder(m, testSeries(t, 10), nil)
	require.NoError(t, err)

	batch, err := b.Batch(1, 2)
	require.NoError(t, err)

	lags := m.Stacker().Unstack("lags", batch.Input)
	assert.Equal(t, []float64{1, 2, 3, 2, 3, 4}, lags.Data())

	targets := m.Stacker().Unstack("targets", batch.Input)
	assert.Equal(t, []float64{4, 5, 5, 6}, targets.Data())

	timeCh := m.Stacker().Unstack("time", batch.Input)
	// Normalized time is monotone within each window.
	for w := 0; w < 2; w++ {
		for s := 1; s < 5; s++ {
			assert.Greater(t, timeCh.At(w, s), timeCh.At(w, s-1))
		}
	}
}

func TestBuilderBatchBounds(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{NForecasts: 2, NLags: 3})
	b, err := NewBuilder(m, testSeries(t, 10), nil)
	require.NoError(t, err)

	_, err = b.Batch(-1, 2)
	assert.Error(t, err)
	_, err = b.Batch(5, 2)
	assert.Error(t, err, "extends past the last window")
}

func TestBuilderBatchesPartialTail(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{NForecasts: 2, NLags: 3})
	b, err := NewBuilder(m, testSeries(t, 10), nil)
	require.NoError(t, err)

	batches, err := b.Batches(4)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, 4, batches[0].Input.Shape()[0])
	assert.Equal(t, 2, batches[1].Input.Shape()[0], "6 windows leave a partial last batch")
}

func TestBuilderEventIndicator(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{
		NForecasts: 2,
		Events:     []forecast.EventConfig{{Name: "promo", Mode: forecast.ModeAdditive}},
	})
	series := testSeries(t, 6)
	b, err := NewBuilder(m, series, []Event{
		{Name: "promo", Dates: []time.Time{series.Times[3]}},
	})
	require.NoError(t, err)

	batch, err := b.Batch(0, b.Windows())
	require.NoError(t, err)
	block := m.Stacker().Unstack("additive_events", batch.Input)
	// Window w covers rows [w, w+2); the indicator lights up wherever a
	// window step lands on row 3.
	for w := 0; w < b.Windows(); w++ {
		for s := 0; s < 2; s++ {
			want := 0.0
			if w+s == 3 {
				want = 1.0
			}
			assert.Equal(t, want, block.At(w, s, 0), "window %d step %d", w, s)
		}
	}
}

func TestBuilderMissingRegressorColumn(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{
		NForecasts: 2,
		Regressors: []forecast.RegressorConfig{{Name: "temperature", Mode: forecast.ModeAdditive}},
	})
	_, err := NewBuilder(m, testSeries(t, 8), nil)
	assert.ErrorContains(t, err, "temperature")
}

func TestBuilderLaggedRegressorUsesNormalizedColumn(t *testing.T) {
	m := newBuilderModel(t, forecast.Config{
		NForecasts:       1,
		NLags:            2,
		LaggedRegressors: []forecast.LaggedRegressorConfig{{Name: "visits", NLags: 2}},
	})
	series := testSeries(t, 6)
	series.Extra["visits"] = []float64{0, 10, 20, 30, 40, 50}
	b, err := NewBuilder(m, series, nil)
	require.NoError(t, err)

	batch, err := b.Batch(0, 1)
	require.NoError(t, err)
	block := m.Stacker().Unstack("lagged_regressor_visits", batch.Input)
	// Min-max scaled to [0, 1]; the first window sees rows 0 and 1.
	assert.InDeltaSlice(t, []float64{0, 0.2}, block.Data(), 1e-12)
}

func TestFourierFeaturesPeriodicity(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), // one full week later
	}
	feats := fourierFeatures(times, 7, 2)
	require.Len(t, feats, 2*2*2)
	for h := 0; h < 4; h++ {
		assert.InDelta(t, feats[h], feats[4+h], 1e-9,
			"weekly features repeat after exactly one period")
	}
}

func TestNormalizedTimesSpanZeroToOne(t *testing.T) {
	ts := testSeries(t, 5).Times
	norm := normalizedTimes(ts)
	assert.Equal(t, 0.0, norm[0])
	assert.Equal(t, 1.0, norm[len(norm)-1])
	for i := 1; i < len(norm); i++ {
		assert.Greater(t, norm[i], norm[i-1])
	}
}

func TestNormalizerRoundTrip(t *testing.T) {
	values := []float64{3, 7, 11}
	n := FitMinMax(values)
	scaled := n.Apply(values)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, scaled, 1e-12)
	for i, v := range scaled {
		assert.InDelta(t, values[i], n.Invert(v), 1e-12)
	}
}

func TestNormalizerConstantSeries(t *testing.T) {
	n := FitMinMax([]float64{4, 4, 4})
	scaled := n.Apply([]float64{4, 4})
	assert.Equal(t, []float64{0, 0}, scaled, "constant series maps to zero, not NaN")
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	content := "ds,y,temperature\n2024-01-01,1.5,20\n2024-01-02,2.5,21\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{1.5, 2.5}, s.Values)
	assert.Equal(t, []float64{20, 21}, s.Extra["temperature"])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Times[1])
}

func TestLoadCSVRequiresColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("ds,value\n2024-01-01,1\n"), 0o644))
	_, err := LoadCSV(path)
	assert.Error(t, err)
}
