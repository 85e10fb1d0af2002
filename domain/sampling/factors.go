package sampling

import "math"

// confidencePoint pairs a confidence level with its zero-error Poisson risk factor
type confidencePoint struct {
	level  float64
	factor float64
}

// confidenceTable holds the AICPA zero-expected-error reliability factors, ascending by level
var confidenceTable = [...]confidencePoint{
	{0.80, 1.61},
	{0.85, 1.90},
	{0.90, 2.31},
	{0.95, 3.00},
	{0.97, 3.51},
	{0.99, 4.61},
}

// Stringer incremental factors indexed by error rank (0 = largest tainting)
var (
	incrementalFactors95 = [...]float64{1.58, 1.44, 1.36, 1.31, 1.28, 1.26, 1.24, 1.22, 1.21, 1.20}
	incrementalFactors90 = [...]float64{1.39, 1.29, 1.24, 1.21, 1.19, 1.17, 1.16, 1.15, 1.14, 1.13}
)

// TabulatedConfidenceLevels returns the levels with an exact factor, ascending
func TabulatedConfidenceLevels() []float64 {
	levels := make([]float64, len(confidenceTable))
	for i, p := range confidenceTable {
		levels[i] = p.level
	}
	return levels
}

// ConfidenceFactor returns the Poisson risk factor for a confidence level.
// Untabulated levels take the factor of the nearest tabulated level; on an exact
// tie the lower level wins. The result is always > 0.
func ConfidenceFactor(level float64) float64 {
	best := confidenceTable[0]
	bestDist := math.Abs(level - best.level)
	for _, p := range confidenceTable[1:] {
		if d := math.Abs(level - p.level); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.factor
}

// IncrementalFactors returns the Stringer incremental factor table for a confidence
// level. Only the 90% and 95% tables exist; any other level uses the closer of the two.
func IncrementalFactors(level float64) []float64 {
	return append([]float64(nil), incrementalTable(level)...)
}

func incrementalTable(level float64) []float64 {
	if math.Abs(level-0.95) < math.Abs(level-0.90) {
		return incrementalFactors95[:]
	}
	return incrementalFactors90[:]
}

// IncrementalFactor returns the factor for the given error rank, reusing the last
// tabulated factor beyond the end of the table
func IncrementalFactor(level float64, rank int) float64 {
	table := incrementalTable(level)
	if rank < 0 {
		rank = 0
	}
	if rank >= len(table) {
		return table[len(table)-1]
	}
	return table[rank]
}
