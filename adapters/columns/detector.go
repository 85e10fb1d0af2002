package columns

import (
	"log"
	"strings"
	"unicode"

	"gosample/adapters/datareadiness/coercer"
	"gosample/adapters/excel"
	"gosample/domain/sampling"
	"gosample/internal/errors"
)

// Detector resolves which column plays which role from header names and cell contents
type Detector struct {
	patterns FieldPatterns
	coercer  *coercer.AmountCoercer
}

// NewDetector creates a detector over the given patterns
func NewDetector(patterns FieldPatterns) *Detector {
	if patterns == nil {
		patterns = DefaultFieldPatterns()
	}
	return &Detector{
		patterns: patterns,
		coercer:  coercer.NewAmountCoercer(coercer.DefaultCoercionConfig()),
	}
}

// Detect resolves a column mapping. Columns named in override win and must exist;
// remaining roles are detected by exact header match, then by token match, and
// amount roles only accept columns whose values parse as amounts. Every role in
// required must resolve or a data error is returned.
func (d *Detector) Detect(data *excel.TabularData, required []Role, override *sampling.ColumnMapping) (sampling.ColumnMapping, error) {
	resolved := make(map[Role]string)
	claimed := make(map[string]bool)

	if override != nil {
		for role, column := range mappingRoles(*override) {
			if column == "" {
				continue
			}
			if !data.HasHeader(column) {
				return sampling.ColumnMapping{}, errors.DataInvalidf(
					"column mapping names %q for %s, but the file has no such column (columns: %s)",
					column, role, strings.Join(data.Headers, ", "))
			}
			resolved[role] = column
			claimed[column] = true
		}
	}

	normalized := make([]string, len(data.Headers))
	for i, h := range data.Headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, match := range []func(header, pattern string) bool{exactMatch, tokenMatch} {
		for _, role := range detectionOrder {
			if _, ok := resolved[role]; ok {
				continue
			}
			if column := d.matchRole(data, role, normalized, claimed, match); column != "" {
				resolved[role] = column
				claimed[column] = true
			}
		}
	}

	// Fall back to the first unclaimed amount-like column for the recorded amount
	if _, ok := resolved[RoleRecordedAmount]; !ok && requires(required, RoleRecordedAmount) {
		for _, header := range data.Headers {
			if !claimed[header] && d.isAmountColumn(data, header) {
				log.Printf("[ColumnDetector] No recorded amount header matched; using amount-like column %q", header)
				resolved[RoleRecordedAmount] = header
				claimed[header] = true
				break
			}
		}
	}

	for _, role := range required {
		if resolved[role] != "" {
			continue
		}
		switch role {
		case RoleRecordedAmount:
			return sampling.ColumnMapping{}, errors.DataInvalidf(
				"no amount column could be identified among columns [%s]; supply a column mapping for recorded_amount",
				strings.Join(data.Headers, ", "))
		case RoleAuditedAmount:
			return sampling.ColumnMapping{}, errors.DataInvalidf(
				"the sample file has no audited amount column among [%s]; add an audited amount column or map it explicitly",
				strings.Join(data.Headers, ", "))
		default:
			return sampling.ColumnMapping{}, errors.DataInvalidf("no %s column could be identified", role)
		}
	}

	mapping := sampling.ColumnMapping{
		ItemID:         resolved[RoleItemID],
		Description:    resolved[RoleDescription],
		RecordedAmount: resolved[RoleRecordedAmount],
		AuditedAmount:  resolved[RoleAuditedAmount],
	}
	log.Printf("[ColumnDetector] Resolved columns: item_id=%q description=%q recorded=%q audited=%q",
		mapping.ItemID, mapping.Description, mapping.RecordedAmount, mapping.AuditedAmount)
	return mapping, nil
}

// matchRole returns the first unclaimed header matching the role's patterns in priority order
func (d *Detector) matchRole(data *excel.TabularData, role Role, normalized []string, claimed map[string]bool, match func(string, string) bool) string {
	for _, pattern := range d.patterns[role] {
		pattern = normalizeHeader(pattern)
		for i, header := range data.Headers {
			if claimed[header] || !match(normalized[i], pattern) {
				continue
			}
			if isAmountRole(role) && !d.isAmountColumn(data, header) {
				continue
			}
			return header
		}
	}
	return ""
}

func (d *Detector) isAmountColumn(data *excel.TabularData, header string) bool {
	return d.coercer.AnalyzeAmounts(data.Column(header)).IsAmountColumn
}

func isAmountRole(role Role) bool {
	return role == RoleRecordedAmount || role == RoleAuditedAmount
}

func requires(required []Role, role Role) bool {
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

func mappingRoles(m sampling.ColumnMapping) map[Role]string {
	return map[Role]string{
		RoleItemID:         m.ItemID,
		RoleDescription:    m.Description,
		RoleRecordedAmount: m.RecordedAmount,
		RoleAuditedAmount:  m.AuditedAmount,
	}
}

// normalizeHeader lowercases and joins alphanumeric runs with underscores: "Invoice No." -> "invoice_no"
func normalizeHeader(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "_")
}

func exactMatch(header, pattern string) bool {
	return header == pattern
}

// tokenMatch reports whether every token of the pattern appears in the header
func tokenMatch(header, pattern string) bool {
	if pattern == "" {
		return false
	}
	tokens := make(map[string]bool)
	for _, t := range strings.Split(header, "_") {
		tokens[t] = true
	}
	for _, t := range strings.Split(pattern, "_") {
		if !tokens[t] {
			return false
		}
	}
	return true
}
