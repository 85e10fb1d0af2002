package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

func items(amounts ...float64) []sampling.PopulationItem {
	out := make([]sampling.PopulationItem, len(amounts))
	for i, a := range amounts {
		out[i] = sampling.PopulationItem{RowIndex: i + 1, RecordedAmount: a}
	}
	return out
}

func TestProfile_FlagsExtremeItems(t *testing.T) {
	amounts := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, -100, 5000, 9000}

	profile, err := NewPopulationAnalyzer().Profile(items(amounts...))
	require.NoError(t, err)

	assert.Equal(t, 12, profile.Count)
	assert.Equal(t, 1, profile.NegativeCount)
	assert.Equal(t, 15000.0, profile.Total)
	assert.Equal(t, 1250.0, profile.Mean)
	assert.Equal(t, 100.0, profile.Min)
	assert.Equal(t, 9000.0, profile.Max)
	assert.Equal(t, 100.0, profile.Median)
	assert.Equal(t, 100.0, profile.Q25)
	assert.Equal(t, 100.0, profile.Q75)
	assert.Equal(t, 100.0, profile.UpperFence)
	assert.Equal(t, 2, profile.OutlierCount)
	assert.Equal(t, 5000.0, profile.SuggestedThreshold)
	assert.InDelta(t, 14000.0/15000.0, profile.OutlierShare, 1e-12)
	assert.Greater(t, profile.Skewness, 0.0)
}

func TestProfile_NoOutliers(t *testing.T) {
	profile, err := NewPopulationAnalyzer().Profile(items(50, 80))
	require.NoError(t, err)
	assert.Equal(t, 50.0, profile.Q25)
	assert.Equal(t, 80.0, profile.Q75)
	assert.Equal(t, 0, profile.OutlierCount)
	assert.Equal(t, 0.0, profile.SuggestedThreshold)
	assert.Equal(t, 0.0, profile.Skewness)

	uniform, err := NewPopulationAnalyzer().Profile(items(100, 100, 100, 100, 100))
	require.NoError(t, err)
	assert.Equal(t, 0.0, uniform.StdDev)
	assert.Equal(t, 0.0, uniform.Skewness)
	assert.Equal(t, 0, uniform.OutlierCount)
}

func TestProfile_Empty(t *testing.T) {
	_, err := NewPopulationAnalyzer().Profile(nil)
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))
}

func TestCalculateSkewness(t *testing.T) {
	assert.Equal(t, 0.0, calculateSkewness([]float64{1, 2}, 1.5, 0.5))
	assert.InDelta(t, 0.0, calculateSkewness([]float64{1, 2, 3}, 2, 0.816496580927726), 1e-12)
	assert.Less(t, calculateSkewness([]float64{1, 9, 10}, 20.0/3, 4.0276819911981905), 0.0)
}
