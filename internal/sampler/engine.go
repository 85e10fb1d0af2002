package sampler

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"gosample/adapters/rng"
	"gosample/domain/sampling"
	"gosample/internal/errors"
	"gosample/internal/profiling"
	"gosample/ports"
)

// Random stream names; a pinned seed keys each one independently
const (
	streamMUSStart        = "mus_start"
	streamRandomSelection = "random_selection"
)

// How a random-method sample size was derived
const (
	SizeFromOverride   = "override"
	SizeFromMUSFormula = "mus_formula"
	SizeFromDefault    = "default_size"
)

// EngineOptions tunes the engine
type EngineOptions struct {
	RoundingTolerance       float64 // Misstatements below this are rounding, not errors
	DefaultRandomSampleSize int     // Random sample size when neither an override nor MUS sizing applies
}

// DefaultEngineOptions returns the standard options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		RoundingTolerance:       0.005,
		DefaultRandomSampleSize: 25,
	}
}

// SourceFactory builds the random source for one named stream of one call
type SourceFactory func(seed *uint64, stream string) ports.RandomSource

// DefaultSourceFactory uses the OS CSPRNG unless a seed pins the stream
func DefaultSourceFactory(seed *uint64, stream string) ports.RandomSource {
	if seed != nil {
		return rng.NewSeeded(*seed, stream)
	}
	return rng.NewCrypto()
}

// Engine designs and evaluates statistical samples. It holds no per-call state,
// so one Engine may serve concurrent calls.
type Engine struct {
	opts      EngineOptions
	newSource SourceFactory
	analyzer  *profiling.PopulationAnalyzer
}

// NewEngine creates an engine
func NewEngine(opts EngineOptions) *Engine {
	if opts.RoundingTolerance < 0 {
		opts.RoundingTolerance = 0
	}
	if opts.DefaultRandomSampleSize < 1 {
		opts.DefaultRandomSampleSize = DefaultEngineOptions().DefaultRandomSampleSize
	}
	return &Engine{opts: opts, newSource: DefaultSourceFactory, analyzer: profiling.NewPopulationAnalyzer()}
}

// WithSourceFactory returns a copy of the engine drawing randomness from factory
func (e *Engine) WithSourceFactory(factory SourceFactory) *Engine {
	return &Engine{opts: e.opts, newSource: factory, analyzer: e.analyzer}
}

// Options returns the engine's options
func (e *Engine) Options() EngineOptions {
	return e.opts
}

// Design stratifies the population, takes every high-value item, sizes the
// remainder sample and selects it. Items are tagged with their stratum.
func (e *Engine) Design(population []sampling.PopulationItem, cfg sampling.SamplingConfig) (*sampling.SampleDesignResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(population) == 0 {
		return nil, errors.DataInvalid("population is empty after excluding non-numeric and zero amounts")
	}
	for _, item := range population {
		if item.RecordedAmount == 0 {
			return nil, errors.DataInvalidf("row %d has a zero recorded amount; zero amounts must be excluded", item.RowIndex)
		}
	}

	profile, err := e.analyzer.Profile(population)
	if err != nil {
		return nil, err
	}

	threshold := 0.0
	if cfg.StratificationThreshold != nil {
		threshold = *cfg.StratificationThreshold
	}
	if threshold <= 0 && profile.OutlierCount > 0 {
		log.Printf("[Sampler] No stratification threshold; %d items (%.1f%% of value) exceed the outlier fence, suggested threshold %.2f",
			profile.OutlierCount, profile.OutlierShare*100, profile.SuggestedThreshold)
	}
	high, remainder := Stratify(population, threshold)

	result := &sampling.SampleDesignResult{
		DesignID:              uuid.NewString(),
		CreatedAt:             time.Now().UTC(),
		Method:                cfg.Method,
		ConfidenceLevel:       cfg.ConfidenceLevel,
		ConfidenceFactor:      sampling.ConfidenceFactor(cfg.ConfidenceLevel),
		TolerableMisstatement: cfg.TolerableMisstatement,
		ExpectedMisstatement:  cfg.ExpectedMisstatement,
		PopulationCount:       len(population),
		PopulationValue:       TotalValue(population),
		HighValueSummary:      Summarize(high),
		RemainderSummary:      Summarize(remainder),
		PopulationProfile:     profile,
		RandomSeed:            cfg.RandomSeed,
	}
	if threshold > 0 {
		result.HighValueThreshold = &threshold
	}
	result.HighValueCount = result.HighValueSummary.Count
	result.HighValueTotal = result.HighValueSummary.Total
	result.RemainderCount = result.RemainderSummary.Count
	result.RemainderTotal = result.RemainderSummary.Total

	log.Printf("[Sampler] Stratified %d items at threshold %.2f: %d high value (%.2f), %d remainder (%.2f)",
		len(population), threshold, result.HighValueCount, result.HighValueTotal, result.RemainderCount, result.RemainderTotal)

	selected := make([]sampling.SelectedSample, 0, len(high))
	for _, item := range high {
		selected = append(selected, sampling.SelectedSample{
			Item:            item,
			SelectionMethod: sampling.SelectionHighValue,
		})
	}

	var remainderSample []sampling.SelectedSample
	switch cfg.Method {
	case sampling.MethodMUS:
		remainderSample, err = e.designMUS(result, remainder, cfg)
	case sampling.MethodRandom:
		remainderSample, err = e.designRandom(result, remainder, cfg)
	}
	if err != nil {
		return nil, err
	}

	result.SelectedItems = append(selected, remainderSample...)
	result.RemainderSampleSize = len(remainderSample)
	result.ActualSampleSize = len(result.SelectedItems)

	log.Printf("[Sampler] Design %s (%s): interval %.2f, calculated %d, selected %d (%d high value + %d remainder)",
		result.DesignID, result.Method, result.SamplingInterval, result.CalculatedSampleSize,
		result.ActualSampleSize, result.HighValueCount, result.RemainderSampleSize)

	return result, nil
}

func (e *Engine) designMUS(result *sampling.SampleDesignResult, remainder []sampling.PopulationItem, cfg sampling.SamplingConfig) ([]sampling.SelectedSample, error) {
	if result.RemainderTotal == 0 {
		log.Printf("[Sampler] Remainder stratum is empty; every item is tested 100%%")
		return nil, nil
	}

	plan, err := CalculateMUSSampleSize(cfg.ConfidenceLevel, cfg.TolerableMisstatement, cfg.ExpectedMisstatement, result.RemainderTotal)
	if err != nil {
		return nil, err
	}
	result.SamplingInterval = plan.SamplingInterval
	result.CalculatedSampleSize = plan.SampleSize

	selection, err := SelectMUS(remainder, plan.SamplingInterval, cfg.RandomStart, e.newSource(cfg.RandomSeed, streamMUSStart))
	if err != nil {
		return nil, err
	}
	start := selection.RandomStart
	result.RandomStart = &start

	return selection.Selected, nil
}

func (e *Engine) designRandom(result *sampling.SampleDesignResult, remainder []sampling.PopulationItem, cfg sampling.SamplingConfig) ([]sampling.SelectedSample, error) {
	switch {
	case cfg.SampleSizeOverride != nil:
		result.CalculatedSampleSize = *cfg.SampleSizeOverride
		result.RandomFallback = SizeFromOverride
	case cfg.TolerableMisstatement > 0 && result.RemainderTotal > 0:
		plan, err := CalculateMUSSampleSize(cfg.ConfidenceLevel, cfg.TolerableMisstatement, cfg.ExpectedMisstatement, result.RemainderTotal)
		if err != nil {
			return nil, err
		}
		result.SamplingInterval = plan.SamplingInterval
		result.CalculatedSampleSize = plan.SampleSize
		result.RandomFallback = SizeFromMUSFormula
	default:
		result.CalculatedSampleSize = e.opts.DefaultRandomSampleSize
		result.RandomFallback = SizeFromDefault
	}

	if len(remainder) == 0 {
		return nil, nil
	}
	return SelectRandom(remainder, result.CalculatedSampleSize, e.newSource(cfg.RandomSeed, streamRandomSelection))
}

// BuildSampleErrors turns audited rows into sample errors. Rows without an audited
// amount and rows whose misstatement is within the rounding tolerance are skipped.
func BuildSampleErrors(items []sampling.AuditedItem, roundingTolerance float64) []sampling.SampleError {
	var errs []sampling.SampleError
	for _, item := range items {
		if item.AuditedAmount == nil {
			continue
		}
		if math.Abs(item.RecordedAmount-*item.AuditedAmount) < roundingTolerance {
			continue
		}
		errs = append(errs, sampling.NewSampleError(item.RowIndex, item.ItemID, item.RecordedAmount, *item.AuditedAmount))
	}
	return errs
}

// Evaluate projects the misstatements found in a completed sample onto the
// population: Stringer bound for MUS, ratio projection for random samples.
func (e *Engine) Evaluate(items []sampling.AuditedItem, cfg sampling.SamplingConfig, params sampling.EvaluationParams) (*sampling.SampleEvaluationResult, error) {
	if err := ValidateEvaluation(cfg, params); err != nil {
		return nil, err
	}

	audited := 0
	sampleValue := 0.0
	for _, item := range items {
		if item.AuditedAmount == nil {
			continue
		}
		audited++
		sampleValue += math.Abs(item.RecordedAmount)
	}
	if audited == 0 {
		return nil, errors.DataInvalid("the sample file has no audited amounts filled in")
	}

	sampleErrors := BuildSampleErrors(items, e.opts.RoundingTolerance)

	result := &sampling.SampleEvaluationResult{
		EvaluationID:          uuid.NewString(),
		CreatedAt:             time.Now().UTC(),
		Method:                cfg.Method,
		ConfidenceLevel:       cfg.ConfidenceLevel,
		SampleSize:            params.SampleSize,
		SampleValue:           sampleValue,
		PopulationValue:       params.PopulationValue,
		SkippedRows:           len(items) - audited,
		ErrorCount:            len(sampleErrors),
		TolerableMisstatement: cfg.TolerableMisstatement,
	}

	switch cfg.Method {
	case sampling.MethodMUS:
		interval := params.PopulationValue / float64(params.SampleSize)
		if params.SamplingInterval != nil {
			interval = *params.SamplingInterval
		}
		bound, err := EvaluateStringer(StringerInput{
			Errors:                sampleErrors,
			SamplingInterval:      interval,
			ConfidenceLevel:       cfg.ConfidenceLevel,
			TolerableMisstatement: cfg.TolerableMisstatement,
			PopulationValue:       params.PopulationValue,
			SampleSize:            params.SampleSize,
		})
		if err != nil {
			return nil, err
		}
		result.SamplingInterval = interval
		result.ConfidenceFactor = bound.ConfidenceFactor
		result.TotalMisstatement = bound.TotalMisstatement
		result.ProjectedMisstatement = bound.ProjectedMisstatement
		result.BasicPrecision = bound.BasicPrecision
		result.IncrementalAllowance = bound.IncrementalAllowance
		result.UpperErrorLimit = bound.UpperErrorLimit
		result.Conclusion = bound.Conclusion
		result.ConclusionDetail = bound.ConclusionDetail
		result.Taintings = bound.Taintings
		result.Errors = bound.RankedErrors

	case sampling.MethodRandom:
		bound, err := EvaluateRatio(RatioInput{
			Errors:                sampleErrors,
			SampleValue:           sampleValue,
			PopulationValue:       params.PopulationValue,
			SampleSize:            params.SampleSize,
			ConfidenceLevel:       cfg.ConfidenceLevel,
			TolerableMisstatement: cfg.TolerableMisstatement,
		})
		if err != nil {
			return nil, err
		}
		result.ConfidenceFactor = bound.ConfidenceFactor
		result.TotalMisstatement = bound.TotalMisstatement
		result.ProjectedMisstatement = bound.ProjectedMisstatement
		result.BasicPrecision = bound.BasicPrecision
		result.UpperErrorLimit = bound.UpperErrorLimit
		result.Conclusion = bound.Conclusion
		result.ConclusionDetail = bound.ConclusionDetail
		result.Taintings = bound.Taintings
		result.Errors = bound.RankedErrors
	}

	log.Printf("[Sampler] Evaluation %s (%s): %d errors, projected %.2f, UEL %.2f vs tolerable %.2f -> %s",
		result.EvaluationID, result.Method, result.ErrorCount, result.ProjectedMisstatement,
		result.UpperErrorLimit, result.TolerableMisstatement, result.Conclusion)

	return result, nil
}
