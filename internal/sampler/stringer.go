package sampler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// StringerInput carries an MUS evaluation's inputs
type StringerInput struct {
	Errors                []sampling.SampleError
	SamplingInterval      float64
	ConfidenceLevel       float64
	TolerableMisstatement float64
	PopulationValue       float64
	SampleSize            int
}

// StringerBound is the upper error limit and its components
type StringerBound struct {
	ConfidenceFactor      float64
	BasicPrecision        float64
	ProjectedMisstatement float64
	IncrementalAllowance  float64
	UpperErrorLimit       float64
	TotalMisstatement     float64
	Taintings             []float64              // Ranked descending
	RankedErrors          []sampling.SampleError // Same order as Taintings
	Conclusion            sampling.Conclusion
	ConclusionDetail      string
}

// EvaluateStringer computes the Stringer upper error limit:
//
//	UEL = interval*factor + sum(t_i*interval) + sum(t_i*interval*max(f_i-1, 0))
//
// where t_i are the taintings ranked descending and f_i the incremental factor
// for rank i at the confidence level.
func EvaluateStringer(in StringerInput) (StringerBound, error) {
	if err := requireFinite("sampling interval", in.SamplingInterval); err != nil {
		return StringerBound{}, err
	}
	if err := requireFinite("tolerable misstatement", in.TolerableMisstatement); err != nil {
		return StringerBound{}, err
	}
	if in.SamplingInterval <= 0 {
		return StringerBound{}, errors.ConfigInvalidf("sampling interval must be greater than zero (got %.2f)", in.SamplingInterval)
	}
	if in.TolerableMisstatement <= 0 {
		return StringerBound{}, errors.ConfigInvalidf("tolerable misstatement must be greater than zero (got %.2f)", in.TolerableMisstatement)
	}

	ranked := rankErrors(in.Errors)

	taintings := make([]float64, len(ranked))
	increments := make([]float64, len(ranked))
	misstatements := make([]float64, len(ranked))
	for i, e := range ranked {
		taintings[i] = e.Tainting
		increments[i] = math.Max(sampling.IncrementalFactor(in.ConfidenceLevel, i)-1, 0)
		misstatements[i] = e.Misstatement
	}

	bound := StringerBound{
		ConfidenceFactor:  sampling.ConfidenceFactor(in.ConfidenceLevel),
		TotalMisstatement: floats.Sum(misstatements),
		Taintings:         taintings,
		RankedErrors:      ranked,
	}
	bound.BasicPrecision = in.SamplingInterval * bound.ConfidenceFactor
	bound.ProjectedMisstatement = in.SamplingInterval * floats.Sum(taintings)
	bound.IncrementalAllowance = in.SamplingInterval * floats.Dot(taintings, increments)
	bound.UpperErrorLimit = bound.BasicPrecision + bound.ProjectedMisstatement + bound.IncrementalAllowance
	bound.Conclusion, bound.ConclusionDetail = conclude(bound.UpperErrorLimit, in.TolerableMisstatement, in.ConfidenceLevel)

	return bound, nil
}

// rankErrors orders errors by tainting, largest first; equal taintings keep input order
func rankErrors(errs []sampling.SampleError) []sampling.SampleError {
	ranked := make([]sampling.SampleError, len(errs))
	copy(ranked, errs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Tainting > ranked[j].Tainting
	})
	return ranked
}

// conclude accepts the population when the upper error limit does not exceed tolerable misstatement
func conclude(uel, tolerable, confidence float64) (sampling.Conclusion, string) {
	if uel <= tolerable {
		return sampling.ConclusionPass, "Upper error limit of " + formatMoney(uel) +
			" does not exceed tolerable misstatement of " + formatMoney(tolerable) +
			" at " + formatConfidence(confidence) + " confidence. The population is accepted as not materially misstated."
	}
	return sampling.ConclusionFail, "Upper error limit of " + formatMoney(uel) +
		" exceeds tolerable misstatement of " + formatMoney(tolerable) +
		" at " + formatConfidence(confidence) + " confidence. The population cannot be accepted without further audit work."
}
