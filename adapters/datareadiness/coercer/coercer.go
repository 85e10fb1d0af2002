package coercer

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// AmountCoercer converts spreadsheet cell text into monetary amounts with deterministic rules
type AmountCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64 `json:"numeric_threshold"` // % of non-empty values that must parse as amounts
	AllowPercent     bool    `json:"allow_percent"`     // Whether a trailing % is tolerated
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8, // 80% must parse as amounts
		AllowPercent:     false,
	}
}

// NewAmountCoercer creates a coercer with the given config
func NewAmountCoercer(config CoercionConfig) *AmountCoercer {
	return &AmountCoercer{config: config}
}

var defaultCoercer = NewAmountCoercer(DefaultCoercionConfig())

// ParseAmount parses a monetary value using the default rules
func ParseAmount(s string) (float64, bool) {
	return defaultCoercer.ParseAmount(s)
}

// currencySymbols are stripped before parsing
var currencySymbols = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "$", "€", "£", "¥"}

// ParseAmount attempts to parse an amount with strict rules.
// Handles parentheses and trailing-minus negatives, currency symbols, thousands
// separators and European decimal commas.
func (c *AmountCoercer) ParseAmount(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	// Accounting exports sometimes carry a trailing minus: 123- -> -123
	if strings.HasSuffix(cleanVal, "-") && len(cleanVal) > 1 {
		cleanVal = strings.TrimSuffix(cleanVal, "-")
		isNegative = !isNegative
	}

	upper := strings.ToUpper(cleanVal)
	for _, symbol := range currencySymbols {
		upper = strings.ReplaceAll(upper, symbol, "")
	}
	cleanVal = strings.TrimSpace(upper)

	if strings.HasSuffix(cleanVal, "%") {
		if !c.config.AllowPercent {
			return 0, false
		}
		cleanVal = strings.TrimSuffix(cleanVal, "%")
	}

	cleanVal = normalizeSeparators(cleanVal)
	if cleanVal == "" {
		return 0, false
	}

	if isNegative {
		if strings.HasPrefix(cleanVal, "-") {
			cleanVal = strings.TrimPrefix(cleanVal, "-")
		} else {
			cleanVal = "-" + cleanVal
		}
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// normalizeSeparators rewrites thousands and decimal separators into Go float syntax
func normalizeSeparators(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '_' {
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(s, ",")
	lastPeriod := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastPeriod >= 0:
		if lastComma > lastPeriod {
			// European: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// US: 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		afterComma := s[lastComma+1:]
		if strings.Count(s, ",") == 1 && len(afterComma) != 3 && allDigits(afterComma) {
			// Single decimal comma: 12,5 or 1234,56
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AnalyzeAmounts reports how well a column's values parse as amounts
func (c *AmountCoercer) AnalyzeAmounts(values []string) AmountAnalysis {
	analysis := AmountAnalysis{TotalCount: len(values)}

	for _, val := range values {
		if strings.TrimSpace(val) == "" {
			continue
		}
		analysis.ValidCount++
		if amount, ok := c.ParseAmount(val); ok {
			analysis.NumericCount++
			if amount != 0 {
				analysis.NonZeroCount++
			}
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.IsAmountColumn = analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold

	return analysis
}

// AmountAnalysis contains the results of amount distribution analysis
type AmountAnalysis struct {
	TotalCount     int     `json:"total_count"`
	ValidCount     int     `json:"valid_count"` // Non-empty values
	NumericCount   int     `json:"numeric_count"`
	NonZeroCount   int     `json:"non_zero_count"`
	NumericRatio   float64 `json:"numeric_ratio"`
	IsAmountColumn bool    `json:"is_amount_column"`
}
