package sampler

import (
	"math"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// ceilTolerance absorbs floating-point noise so 59.999999999 and 60.000000001 both size to 60
const ceilTolerance = 1e-9

// SampleSizePlan is the worked MUS sample-size computation
type SampleSizePlan struct {
	ConfidenceFactor float64 `json:"confidence_factor"`
	ExpansionFactor  float64 `json:"expansion_factor"`
	AdjustedFactor   float64 `json:"adjusted_factor"`
	NetTolerable     float64 `json:"net_tolerable"`
	SamplingInterval float64 `json:"sampling_interval"`
	SampleSize       int     `json:"sample_size"`
}

// CalculateMUSSampleSize applies the MUS formula:
//
//	interval = (tolerable - expected) / (factor * (1 + expected/tolerable))
//	size     = max(1, ceil(populationValue / interval))
//
// All preconditions are checked before anything is computed.
func CalculateMUSSampleSize(confidenceLevel, tolerable, expected, populationValue float64) (SampleSizePlan, error) {
	if !(confidenceLevel > 0 && confidenceLevel < 1) {
		return SampleSizePlan{}, errors.ConfigInvalidf("confidence level must be between 0 and 1 exclusive (got %v)", confidenceLevel)
	}
	for _, check := range []struct {
		field string
		value float64
	}{
		{"tolerable misstatement", tolerable},
		{"expected misstatement", expected},
		{"population value", populationValue},
	} {
		if err := requireFinite(check.field, check.value); err != nil {
			return SampleSizePlan{}, err
		}
	}
	if tolerable <= 0 {
		return SampleSizePlan{}, errors.ConfigInvalidf("tolerable misstatement must be greater than zero (got %.2f)", tolerable)
	}
	if expected < 0 {
		return SampleSizePlan{}, errors.ConfigInvalidf("expected misstatement cannot be negative (got %.2f)", expected)
	}
	if expected >= tolerable {
		return SampleSizePlan{}, errors.ConfigInvalidf(
			"expected misstatement (%.2f) must be less than tolerable misstatement (%.2f)", expected, tolerable)
	}
	if populationValue <= 0 {
		return SampleSizePlan{}, errors.ConfigInvalidf("population value must be greater than zero (got %.2f)", populationValue)
	}

	plan := SampleSizePlan{
		ConfidenceFactor: sampling.ConfidenceFactor(confidenceLevel),
		ExpansionFactor:  1.0,
		NetTolerable:     tolerable - expected,
	}
	if expected > 0 {
		plan.ExpansionFactor = 1 + expected/tolerable
	}
	plan.AdjustedFactor = plan.ConfidenceFactor * plan.ExpansionFactor
	plan.SamplingInterval = plan.NetTolerable / plan.AdjustedFactor

	size := int(math.Ceil(populationValue/plan.SamplingInterval - ceilTolerance))
	if size < 1 {
		size = 1
	}
	plan.SampleSize = size
	return plan, nil
}
