package sampler

import (
	"github.com/montanaflynn/stats"

	"gosample/domain/sampling"
)

// Stratify splits items into the high-value stratum (|amount| >= threshold, tested
// 100%) and the remainder, tagging each item's Stratum in place. A threshold of
// zero or less disables stratification and every item is remainder.
func Stratify(items []sampling.PopulationItem, threshold float64) (high, remainder []sampling.PopulationItem) {
	for i := range items {
		if threshold > 0 && items[i].AbsAmount() >= threshold {
			items[i].Stratum = sampling.StratumHighValue
			high = append(high, items[i])
		} else {
			items[i].Stratum = sampling.StratumRemainder
			remainder = append(remainder, items[i])
		}
	}
	return high, remainder
}

// TotalValue sums absolute recorded amounts
func TotalValue(items []sampling.PopulationItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.AbsAmount()
	}
	return total
}

// Summarize computes descriptive statistics of a stratum's absolute amounts
func Summarize(items []sampling.PopulationItem) sampling.StratumSummary {
	summary := sampling.StratumSummary{Count: len(items)}
	if len(items) == 0 {
		return summary
	}

	amounts := make(stats.Float64Data, len(items))
	for i, item := range items {
		amounts[i] = item.AbsAmount()
	}

	summary.Total, _ = amounts.Sum()
	summary.Mean, _ = amounts.Mean()
	summary.Median, _ = amounts.Median()
	summary.MaxAmount, _ = amounts.Max()
	return summary
}
