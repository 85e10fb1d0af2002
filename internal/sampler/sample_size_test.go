package sampler

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

func TestCalculateMUSSampleSize_Scenario(t *testing.T) {
	plan, err := CalculateMUSSampleSize(0.95, 50000, 0, 1000000)
	require.NoError(t, err)

	assert.InDelta(t, 16666.67, plan.SamplingInterval, 0.01)
	assert.Equal(t, 60, plan.SampleSize)
	assert.Equal(t, 3.00, plan.ConfidenceFactor)
	assert.Equal(t, 1.0, plan.ExpansionFactor)
	assert.Equal(t, 50000.0, plan.NetTolerable)
}

func TestCalculateMUSSampleSize_WithExpectedMisstatement(t *testing.T) {
	plan, err := CalculateMUSSampleSize(0.95, 50000, 10000, 1000000)
	require.NoError(t, err)

	// net 40,000; expansion 1.2; adjusted 3.6; interval 11,111.11; size ceil(90.0) = 90
	assert.InDelta(t, 1.2, plan.ExpansionFactor, 1e-12)
	assert.InDelta(t, 3.6, plan.AdjustedFactor, 1e-12)
	assert.InDelta(t, 11111.11, plan.SamplingInterval, 0.01)
	assert.Equal(t, 90, plan.SampleSize)
}

func TestCalculateMUSSampleSize_FlooredAtOne(t *testing.T) {
	plan, err := CalculateMUSSampleSize(0.90, 1000000, 0, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.SampleSize)
}

func TestCalculateMUSSampleSize_Preconditions(t *testing.T) {
	tests := []struct {
		name       string
		tolerable  float64
		expected   float64
		population float64
		message    string
	}{
		{"zero tolerable", 0, 0, 1000, "tolerable misstatement must be greater than zero"},
		{"negative tolerable", -5, 0, 1000, "tolerable misstatement must be greater than zero"},
		{"negative expected", 100, -1, 1000, "expected misstatement cannot be negative"},
		{"expected equals tolerable", 100, 100, 1000, "must be less than tolerable"},
		{"expected above tolerable", 100, 150, 1000, "must be less than tolerable"},
		{"zero population", 100, 0, 0, "population value must be greater than zero"},
		{"negative population", 100, 0, -10, "population value must be greater than zero"},
		{"NaN tolerable", math.NaN(), 0, 1000, "tolerable misstatement must be a finite number"},
		{"infinite tolerable", math.Inf(1), 0, 1000, "tolerable misstatement must be a finite number"},
		{"NaN expected", 100, math.NaN(), 1000, "expected misstatement must be a finite number"},
		{"infinite population", 100, 0, math.Inf(1), "population value must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateMUSSampleSize(0.95, tt.tolerable, tt.expected, tt.population)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCalculateMUSSampleSize_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("higher confidence never lowers sample size", prop.ForAll(
		func(c1, c2, tolerable, expectedShare, population float64) bool {
			lo, hi := c1, c2
			if lo > hi {
				lo, hi = hi, lo
			}
			expected := tolerable * expectedShare
			a, errA := CalculateMUSSampleSize(lo, tolerable, expected, population)
			b, errB := CalculateMUSSampleSize(hi, tolerable, expected, population)
			return errA == nil && errB == nil && a.SampleSize <= b.SampleSize
		},
		gen.Float64Range(0.5, 0.999),
		gen.Float64Range(0.5, 0.999),
		gen.Float64Range(1000, 1e6),
		gen.Float64Range(0, 0.9),
		gen.Float64Range(1, 1e9),
	))

	properties.Property("higher expected misstatement never lowers sample size", prop.ForAll(
		func(s1, s2, tolerable, population float64) bool {
			lo, hi := s1, s2
			if lo > hi {
				lo, hi = hi, lo
			}
			a, errA := CalculateMUSSampleSize(0.95, tolerable, tolerable*lo, population)
			b, errB := CalculateMUSSampleSize(0.95, tolerable, tolerable*hi, population)
			return errA == nil && errB == nil && a.SampleSize <= b.SampleSize
		},
		gen.Float64Range(0, 0.95),
		gen.Float64Range(0, 0.95),
		gen.Float64Range(1000, 1e6),
		gen.Float64Range(1, 1e9),
	))

	properties.Property("sample size is at least one", prop.ForAll(
		func(confidence, tolerable, population float64) bool {
			plan, err := CalculateMUSSampleSize(confidence, tolerable, 0, population)
			return err == nil && plan.SampleSize >= 1
		},
		gen.Float64Range(0.01, 0.999),
		gen.Float64Range(0.01, 1e9),
		gen.Float64Range(0.01, 1e9),
	))

	properties.TestingRun(t)
}

func TestCalculateMUSSampleSize_UsesNearestFactor(t *testing.T) {
	plan, err := CalculateMUSSampleSize(0.93, 30000, 0, 300000)
	require.NoError(t, err)
	assert.Equal(t, sampling.ConfidenceFactor(0.95), plan.ConfidenceFactor)
	assert.Equal(t, 30, plan.SampleSize)
}
