package sampling

import "time"

// Method selects the statistical sampling approach
type Method string

const (
	MethodMUS    Method = "mus"    // Monetary-unit sampling (probability proportional to size)
	MethodRandom Method = "random" // Unrestricted random sampling
)

// ParseMethod converts a caller-supplied method string into a Method
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodMUS, MethodRandom:
		return Method(s), true
	}
	return "", false
}

// Stratum tags which selection rule applies to an item
type Stratum string

const (
	StratumHighValue Stratum = "high_value" // Tested 100%
	StratumRemainder Stratum = "remainder"  // Statistically sampled
)

// SelectionMethod records why an item landed in the sample
type SelectionMethod string

const (
	SelectionHighValue SelectionMethod = "high_value_100pct"
	SelectionMUS       SelectionMethod = "mus_interval"
	SelectionRandom    SelectionMethod = "random"
)

// Conclusion is the accept/reject outcome of an evaluation
type Conclusion string

const (
	ConclusionPass Conclusion = "pass"
	ConclusionFail Conclusion = "fail"
)

// PopulationItem is one row of the population under test.
// RecordedAmount is never zero; zero-amount rows are dropped at parse time.
type PopulationItem struct {
	RowIndex       int     `json:"row_index"` // 1-based position in the source
	ItemID         string  `json:"item_id"`   // Not guaranteed unique
	Description    string  `json:"description,omitempty"`
	RecordedAmount float64 `json:"recorded_amount"`
	Stratum        Stratum `json:"stratum"`
}

// AbsAmount returns the absolute recorded amount
func (p PopulationItem) AbsAmount() float64 {
	if p.RecordedAmount < 0 {
		return -p.RecordedAmount
	}
	return p.RecordedAmount
}

// SelectedSample wraps an item picked for testing
type SelectedSample struct {
	Item             PopulationItem  `json:"item"`
	SelectionMethod  SelectionMethod `json:"selection_method"`
	IntervalPosition *float64        `json:"interval_position,omitempty"` // Cumulative-dollar point that hit the item (MUS only)
}

// SampleError is one audited discrepancy
type SampleError struct {
	RowIndex       int     `json:"row_index"`
	ItemID         string  `json:"item_id"`
	RecordedAmount float64 `json:"recorded_amount"`
	AuditedAmount  float64 `json:"audited_amount"`
	Misstatement   float64 `json:"misstatement"` // recorded - audited
	Tainting       float64 `json:"tainting"`     // In [0, 1]
}

// NewSampleError builds a SampleError, deriving misstatement and tainting
func NewSampleError(rowIndex int, itemID string, recorded, audited float64) SampleError {
	misstatement := recorded - audited
	return SampleError{
		RowIndex:       rowIndex,
		ItemID:         itemID,
		RecordedAmount: recorded,
		AuditedAmount:  audited,
		Misstatement:   misstatement,
		Tainting:       Tainting(recorded, misstatement),
	}
}

// Tainting returns |misstatement| / |recorded| capped at 1.0; a zero recorded amount taints fully
func Tainting(recorded, misstatement float64) float64 {
	if recorded == 0 {
		return 1.0
	}
	t := abs(misstatement) / abs(recorded)
	if t > 1.0 {
		return 1.0
	}
	return t
}

// SamplingConfig carries the auditor's sampling parameters
type SamplingConfig struct {
	Method                  Method   `json:"method"`
	ConfidenceLevel         float64  `json:"confidence_level"`                   // 0 < c < 1
	TolerableMisstatement   float64  `json:"tolerable_misstatement"`             // > 0 for MUS
	ExpectedMisstatement    float64  `json:"expected_misstatement"`              // >= 0, < tolerable
	StratificationThreshold *float64 `json:"stratification_threshold,omitempty"` // nil or 0 disables stratification
	SampleSizeOverride      *int     `json:"sample_size_override,omitempty"`     // Random method only
	RandomStart             *float64 `json:"random_start,omitempty"`             // Pinned MUS start, for re-performance
	RandomSeed              *uint64  `json:"random_seed,omitempty"`              // Pinned seed for the random stream
}

// StratumSummary describes one stratum of the population
type StratumSummary struct {
	Count     int     `json:"count"`
	Total     float64 `json:"total"` // Sum of absolute amounts
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	MaxAmount float64 `json:"max_amount"`
}

// PopulationProfile describes the distribution of a population's absolute amounts
type PopulationProfile struct {
	Count              int     `json:"count"`
	NegativeCount      int     `json:"negative_count"` // Credit balances
	Total              float64 `json:"total"`
	Mean               float64 `json:"mean"`
	StdDev             float64 `json:"std_dev"`
	Min                float64 `json:"min"`
	Max                float64 `json:"max"`
	Median             float64 `json:"median"`
	Q25                float64 `json:"q25"`
	Q75                float64 `json:"q75"`
	Skewness           float64 `json:"skewness"`
	UpperFence         float64 `json:"upper_fence"`         // Q75 + 3 * IQR
	OutlierCount       int     `json:"outlier_count"`       // Items above the fence
	OutlierShare       float64 `json:"outlier_share"`       // Share of total value above the fence
	SuggestedThreshold float64 `json:"suggested_threshold"` // Smallest amount above the fence; 0 if none
}

// ColumnMapping names the source column playing each semantic role
type ColumnMapping struct {
	ItemID         string `json:"item_id,omitempty" yaml:"item_id"`
	Description    string `json:"description,omitempty" yaml:"description"`
	RecordedAmount string `json:"recorded_amount,omitempty" yaml:"recorded_amount"`
	AuditedAmount  string `json:"audited_amount,omitempty" yaml:"audited_amount"`
}

// SampleDesignResult is the full output of the design phase.
// INVARIANT: ActualSampleSize == len(SelectedItems) == HighValueCount + RemainderSampleSize
type SampleDesignResult struct {
	DesignID              string            `json:"design_id"`
	CreatedAt             time.Time         `json:"created_at"`
	Method                Method            `json:"method"`
	ConfidenceLevel       float64           `json:"confidence_level"`
	ConfidenceFactor      float64           `json:"confidence_factor"`
	TolerableMisstatement float64           `json:"tolerable_misstatement"`
	ExpectedMisstatement  float64           `json:"expected_misstatement"`
	PopulationCount       int               `json:"population_count"`
	PopulationValue       float64           `json:"population_value"` // Sum of absolute amounts
	SkippedRows           int               `json:"skipped_rows"`     // Non-numeric or zero amounts
	SamplingInterval      float64           `json:"sampling_interval"`
	CalculatedSampleSize  int               `json:"calculated_sample_size"`
	ActualSampleSize      int               `json:"actual_sample_size"`
	HighValueThreshold    *float64          `json:"high_value_threshold,omitempty"`
	HighValueCount        int               `json:"high_value_count"`
	HighValueTotal        float64           `json:"high_value_total"`
	RemainderCount        int               `json:"remainder_count"`
	RemainderTotal        float64           `json:"remainder_total"`
	RemainderSampleSize   int               `json:"remainder_sample_size"`
	HighValueSummary      StratumSummary    `json:"high_value_summary"`
	RemainderSummary      StratumSummary    `json:"remainder_summary"`
	PopulationProfile     PopulationProfile `json:"population_profile"`
	RandomStart           *float64          `json:"random_start,omitempty"`
	RandomSeed            *uint64           `json:"random_seed,omitempty"`
	RandomFallback        string            `json:"random_fallback,omitempty"` // How a random sample size was derived
	ColumnMapping         ColumnMapping     `json:"column_mapping"`
	SelectedItems         []SelectedSample  `json:"selected_items"`
}

// SampleEvaluationResult is the full output of the evaluation phase
type SampleEvaluationResult struct {
	EvaluationID          string        `json:"evaluation_id"`
	CreatedAt             time.Time     `json:"created_at"`
	Method                Method        `json:"method"`
	ConfidenceLevel       float64       `json:"confidence_level"`
	ConfidenceFactor      float64       `json:"confidence_factor"`
	SamplingInterval      float64       `json:"sampling_interval,omitempty"`
	SampleSize            int           `json:"sample_size"`
	SampleValue           float64       `json:"sample_value"` // Sum of absolute sampled recorded amounts
	PopulationValue       float64       `json:"population_value"`
	SkippedRows           int           `json:"skipped_rows"`
	ErrorCount            int           `json:"error_count"`
	TotalMisstatement     float64       `json:"total_misstatement"`
	ProjectedMisstatement float64       `json:"projected_misstatement"`
	BasicPrecision        float64       `json:"basic_precision"`
	IncrementalAllowance  float64       `json:"incremental_allowance"`
	UpperErrorLimit       float64       `json:"upper_error_limit"`
	TolerableMisstatement float64       `json:"tolerable_misstatement"`
	Conclusion            Conclusion    `json:"conclusion"`
	ConclusionDetail      string        `json:"conclusion_detail"`
	Taintings             []float64     `json:"taintings"` // Ranked descending
	Errors                []SampleError `json:"errors"`    // Same order as Taintings
	ColumnMapping         ColumnMapping `json:"column_mapping"`
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// EvaluationParams carries the design figures an evaluation projects against
type EvaluationParams struct {
	PopulationValue  float64  `json:"population_value"`
	SampleSize       int      `json:"sample_size"`
	SamplingInterval *float64 `json:"sampling_interval,omitempty"` // MUS; defaults to PopulationValue / SampleSize
}

// AuditedItem is one row of a completed sample file
type AuditedItem struct {
	RowIndex       int      `json:"row_index"`
	ItemID         string   `json:"item_id"`
	RecordedAmount float64  `json:"recorded_amount"`
	AuditedAmount  *float64 `json:"audited_amount,omitempty"` // nil when the auditor left the cell blank
}
