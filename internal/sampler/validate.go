package sampler

import (
	"math"

	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// ValidateConfig checks a sampling configuration before any selection or
// evaluation work. Every violation is a distinct configuration error.
func ValidateConfig(cfg sampling.SamplingConfig) error {
	if _, ok := sampling.ParseMethod(string(cfg.Method)); !ok {
		return errors.ConfigInvalidf("unsupported sampling method %q: expected %q or %q",
			cfg.Method, sampling.MethodMUS, sampling.MethodRandom)
	}
	if !(cfg.ConfidenceLevel > 0 && cfg.ConfidenceLevel < 1) {
		return errors.ConfigInvalidf("confidence level must be between 0 and 1 exclusive (got %v)", cfg.ConfidenceLevel)
	}
	if err := requireFinite("tolerable misstatement", cfg.TolerableMisstatement); err != nil {
		return err
	}
	if err := requireFinite("expected misstatement", cfg.ExpectedMisstatement); err != nil {
		return err
	}
	if cfg.StratificationThreshold != nil {
		if err := requireFinite("stratification threshold", *cfg.StratificationThreshold); err != nil {
			return err
		}
	}
	if cfg.RandomStart != nil {
		if err := requireFinite("random start", *cfg.RandomStart); err != nil {
			return err
		}
	}

	switch cfg.Method {
	case sampling.MethodMUS:
		if cfg.TolerableMisstatement <= 0 {
			return errors.ConfigInvalidf("tolerable misstatement must be greater than zero (got %.2f)", cfg.TolerableMisstatement)
		}
		if cfg.SampleSizeOverride != nil {
			return errors.ConfigInvalid("a sample size override is only supported for random sampling")
		}
	case sampling.MethodRandom:
		if cfg.TolerableMisstatement < 0 {
			return errors.ConfigInvalidf("tolerable misstatement cannot be negative (got %.2f)", cfg.TolerableMisstatement)
		}
		if cfg.SampleSizeOverride != nil && *cfg.SampleSizeOverride < 1 {
			return errors.ConfigInvalidf("sample size override must be at least 1 (got %d)", *cfg.SampleSizeOverride)
		}
	}

	if cfg.ExpectedMisstatement < 0 {
		return errors.ConfigInvalidf("expected misstatement cannot be negative (got %.2f)", cfg.ExpectedMisstatement)
	}
	if cfg.TolerableMisstatement > 0 && cfg.ExpectedMisstatement >= cfg.TolerableMisstatement {
		return errors.ConfigInvalidf("expected misstatement (%.2f) must be less than tolerable misstatement (%.2f)",
			cfg.ExpectedMisstatement, cfg.TolerableMisstatement)
	}
	if cfg.StratificationThreshold != nil && *cfg.StratificationThreshold < 0 {
		return errors.ConfigInvalidf("stratification threshold cannot be negative (got %.2f)", *cfg.StratificationThreshold)
	}
	if cfg.RandomStart != nil && *cfg.RandomStart < 0 {
		return errors.ConfigInvalidf("random start cannot be negative (got %.2f)", *cfg.RandomStart)
	}
	return nil
}

// ValidateEvaluation checks the configuration and design parameters an evaluation needs
func ValidateEvaluation(cfg sampling.SamplingConfig, params sampling.EvaluationParams) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := requireFinite("population value", params.PopulationValue); err != nil {
		return err
	}
	if params.SamplingInterval != nil {
		if err := requireFinite("sampling interval", *params.SamplingInterval); err != nil {
			return err
		}
	}
	if cfg.TolerableMisstatement <= 0 {
		return errors.ConfigInvalidf("tolerable misstatement must be greater than zero to reach a conclusion (got %.2f)", cfg.TolerableMisstatement)
	}
	if params.PopulationValue <= 0 {
		return errors.ConfigInvalidf("population value must be greater than zero (got %.2f)", params.PopulationValue)
	}
	if params.SampleSize <= 0 {
		return errors.ConfigInvalidf("sample size must be greater than zero (got %d)", params.SampleSize)
	}
	if params.SamplingInterval != nil && *params.SamplingInterval <= 0 {
		return errors.ConfigInvalidf("sampling interval must be greater than zero (got %.2f)", *params.SamplingInterval)
	}
	return nil
}

// requireFinite rejects NaN and infinities, which slip past ordered comparisons
func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.ConfigInvalidf("%s must be a finite number (got %v)", field, v)
	}
	return nil
}
