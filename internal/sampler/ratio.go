package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// RatioInput carries a random-sample evaluation's inputs
type RatioInput struct {
	Errors                []sampling.SampleError
	SampleValue           float64 // Sum of absolute recorded amounts of the audited items
	PopulationValue       float64
	SampleSize            int
	ConfidenceLevel       float64
	TolerableMisstatement float64
}

// RatioBound is the ratio-projection upper error limit and its components
type RatioBound struct {
	ConfidenceFactor      float64
	ProjectedMisstatement float64
	BasicPrecision        float64
	UpperErrorLimit       float64
	TotalMisstatement     float64
	Taintings             []float64
	RankedErrors          []sampling.SampleError
	Conclusion            sampling.Conclusion
	ConclusionDetail      string
}

// EvaluateRatio projects the sample misstatement rate onto the population:
//
//	projected = |sum(misstatement)| / sampleValue * populationValue
//	precision = projected * factor / sqrt(sampleSize)
//	UEL       = projected + precision
func EvaluateRatio(in RatioInput) (RatioBound, error) {
	if err := requireFinite("tolerable misstatement", in.TolerableMisstatement); err != nil {
		return RatioBound{}, err
	}
	if err := requireFinite("population value", in.PopulationValue); err != nil {
		return RatioBound{}, err
	}
	if in.TolerableMisstatement <= 0 {
		return RatioBound{}, errors.ConfigInvalidf("tolerable misstatement must be greater than zero (got %.2f)", in.TolerableMisstatement)
	}
	if in.PopulationValue <= 0 {
		return RatioBound{}, errors.ConfigInvalidf("population value must be greater than zero (got %.2f)", in.PopulationValue)
	}
	if in.SampleSize <= 0 {
		return RatioBound{}, errors.ConfigInvalidf("sample size must be greater than zero (got %d)", in.SampleSize)
	}
	if in.SampleValue <= 0 {
		return RatioBound{}, errors.DataInvalid("sampled recorded amounts total zero; nothing to project from")
	}

	ranked := rankErrors(in.Errors)
	taintings := make([]float64, len(ranked))
	misstatements := make([]float64, len(ranked))
	for i, e := range ranked {
		taintings[i] = e.Tainting
		misstatements[i] = e.Misstatement
	}

	bound := RatioBound{
		ConfidenceFactor:  sampling.ConfidenceFactor(in.ConfidenceLevel),
		TotalMisstatement: floats.Sum(misstatements),
		Taintings:         taintings,
		RankedErrors:      ranked,
	}
	bound.ProjectedMisstatement = math.Abs(bound.TotalMisstatement) / in.SampleValue * in.PopulationValue
	bound.BasicPrecision = bound.ProjectedMisstatement * bound.ConfidenceFactor / math.Sqrt(float64(in.SampleSize))
	bound.UpperErrorLimit = bound.ProjectedMisstatement + bound.BasicPrecision
	bound.Conclusion, bound.ConclusionDetail = conclude(bound.UpperErrorLimit, in.TolerableMisstatement, in.ConfidenceLevel)

	return bound, nil
}
