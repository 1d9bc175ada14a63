package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashirov/neural-prophet/internal/tensor"
)

func TestStackerRoundTrip(t *testing.T) {
	s := NewComponentStacker(2, 3) // window = 5
	require.NoError(t, s.AddRange("time", SpanFull, 1))
	require.NoError(t, s.AddRange("lags", SpanLags, 1))
	require.NoError(t, s.AddRange("targets", SpanHorizon, 1))
	require.NoError(t, s.AddRange("seasonality_weekly", SpanFull, 4))
	assert.Equal(t, 5+2+3+20, s.TotalColumns())

	timeBlock, err := tensor.FromSlice([]float64{
		0.1, 0.2, 0.3, 0.4, 0.5,
		0.6, 0.7, 0.8, 0.9, 1.0,
	}, tensor.Shape{2, 5})
	require.NoError(t, err)
	lagBlock, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	targetBlock, err := tensor.FromSlice([]float64{5, 6, 7, 8, 9, 10}, tensor.Shape{2, 3})
	require.NoError(t, err)
	season := tensor.Randn(tensor.Shape{2, 20})

	batch, err := s.Stack(map[string]*tensor.Tensor{
		"time":               timeBlock,
		"lags":               lagBlock,
		"targets":            targetBlock,
		"seasonality_weekly": season,
	})
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, 30}, batch.Shape())

	gotTime := s.Unstack("time", batch)
	require.Equal(t, tensor.Shape{2, 5}, gotTime.Shape())
	assert.Equal(t, timeBlock.Data(), gotTime.Data())

	gotLags := s.Unstack("lags", batch)
	require.Equal(t, tensor.Shape{2, 2}, gotLags.Shape())
	assert.Equal(t, lagBlock.Data(), gotLags.Data())

	gotTargets := s.Unstack("targets", batch)
	require.Equal(t, tensor.Shape{2, 3, 1}, gotTargets.Shape())
	assert.Equal(t, targetBlock.Data(), gotTargets.Data())

	gotSeason := s.Unstack("seasonality_weekly", batch)
	require.Equal(t, tensor.Shape{2, 5, 4}, gotSeason.Shape())
	assert.Equal(t, season.Data(), gotSeason.Data())
}

func TestStackerRejectsDuplicatesAndMissingBlocks(t *testing.T) {
	s := NewComponentStacker(0, 2)
	require.NoError(t, s.AddRange("time", SpanFull, 1))
	assert.Error(t, s.AddRange("time", SpanFull, 1))

	_, err := s.Stack(map[string]*tensor.Tensor{})
	assert.Error(t, err)
}

func TestStackerRejectsWrongBlockSize(t *testing.T) {
	s := NewComponentStacker(0, 2)
	require.NoError(t, s.AddRange("time", SpanFull, 1))
	require.NoError(t, s.AddRange("targets", SpanHorizon, 1))

	badTime, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{1, 3})
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	_, err = s.Stack(map[string]*tensor.Tensor{"time": badTime, "targets": targets})
	assert.Error(t, err)
}

func TestStackerHasMembership(t *testing.T) {
	s := NewComponentStacker(2, 1)
	require.NoError(t, s.AddRange("time", SpanFull, 1))
	assert.True(t, s.Has("time"))
	assert.False(t, s.Has("additive_events"))
	assert.Panics(t, func() { s.Unstack("additive_events", tensor.Ones(tensor.Shape{1, 3})) })
}
