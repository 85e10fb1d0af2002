package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// fenceMultiplier sets the extreme-outlier fence at Q75 + 3 * IQR
const fenceMultiplier = 3.0

// PopulationAnalyzer handles distribution shape analysis of recorded amounts
type PopulationAnalyzer struct{}

// NewPopulationAnalyzer creates a new population analyzer
func NewPopulationAnalyzer() *PopulationAnalyzer {
	return &PopulationAnalyzer{}
}

// Profile summarises the absolute amounts of a population and suggests a
// high-value threshold that isolates its extreme items
func (pa *PopulationAnalyzer) Profile(items []sampling.PopulationItem) (sampling.PopulationProfile, error) {
	profile := sampling.PopulationProfile{Count: len(items)}
	if len(items) == 0 {
		return profile, errors.DataInvalid("cannot profile an empty population")
	}

	data := make(stats.Float64Data, len(items))
	for i, item := range items {
		data[i] = item.AbsAmount()
		if item.RecordedAmount < 0 {
			profile.NegativeCount++
		}
	}

	var err error
	if profile.Total, err = data.Sum(); err != nil {
		return profile, errors.Wrap(err, "failed to sum amounts")
	}
	if profile.Mean, err = data.Mean(); err != nil {
		return profile, errors.Wrap(err, "failed to compute mean")
	}
	if profile.StdDev, err = data.StandardDeviation(); err != nil {
		return profile, errors.Wrap(err, "failed to compute standard deviation")
	}
	if profile.Min, err = data.Min(); err != nil {
		return profile, errors.Wrap(err, "failed to compute minimum")
	}
	if profile.Max, err = data.Max(); err != nil {
		return profile, errors.Wrap(err, "failed to compute maximum")
	}
	if profile.Median, err = data.Median(); err != nil {
		return profile, errors.Wrap(err, "failed to compute median")
	}

	// Quartiles need a few points; tiny populations fence at the maximum
	profile.Q25, profile.Q75 = profile.Min, profile.Max
	if len(data) >= 4 {
		if profile.Q25, err = data.Percentile(25); err != nil {
			return profile, errors.Wrap(err, "failed to compute 25th percentile")
		}
		if profile.Q75, err = data.Percentile(75); err != nil {
			return profile, errors.Wrap(err, "failed to compute 75th percentile")
		}
	}

	profile.Skewness = calculateSkewness(data, profile.Mean, profile.StdDev)
	profile.UpperFence = profile.Q75 + fenceMultiplier*(profile.Q75-profile.Q25)

	outlierValue := 0.0
	for _, x := range data {
		if x <= profile.UpperFence {
			continue
		}
		profile.OutlierCount++
		outlierValue += x
		if profile.SuggestedThreshold == 0 || x < profile.SuggestedThreshold {
			profile.SuggestedThreshold = x
		}
	}
	if profile.Total > 0 {
		profile.OutlierShare = outlierValue / profile.Total
	}

	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}
