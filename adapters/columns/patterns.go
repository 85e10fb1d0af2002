package columns

import (
	"os"

	"gopkg.in/yaml.v3"

	"gosample/internal/errors"
)

// Role is the semantic part a column plays in a sampling file
type Role string

const (
	RoleItemID         Role = "item_id"
	RoleDescription    Role = "description"
	RoleRecordedAmount Role = "recorded_amount"
	RoleAuditedAmount  Role = "audited_amount"
)

// detectionOrder claims the most specific roles first so "Audited Amount"
// is never taken as the recorded amount
var detectionOrder = []Role{RoleAuditedAmount, RoleRecordedAmount, RoleItemID, RoleDescription}

// FieldPatterns lists candidate header names per role, highest priority first
type FieldPatterns map[Role][]string

// DefaultFieldPatterns returns the built-in header vocabulary
func DefaultFieldPatterns() FieldPatterns {
	return FieldPatterns{
		RoleItemID: {
			"item_id", "id", "invoice_number", "invoice_no", "invoice", "document_number", "document_no",
			"document", "transaction_id", "reference", "ref", "voucher", "entry_id", "account_number", "account",
		},
		RoleDescription: {
			"description", "desc", "memo", "narrative", "details", "account_name", "customer", "vendor", "name",
		},
		RoleRecordedAmount: {
			"recorded_amount", "book_value", "book_amount", "recorded", "amount", "balance", "net_amount",
			"gross_amount", "value", "total", "debit",
		},
		RoleAuditedAmount: {
			"audited_amount", "audited_value", "audit_amount", "audited_balance", "audited", "verified_amount",
			"confirmed_amount", "audit_value",
		},
	}
}

// LoadFieldPatterns reads a YAML file of role -> patterns; roles it names
// replace the defaults, the rest keep the built-in vocabulary
func LoadFieldPatterns(path string) (FieldPatterns, error) {
	patterns := DefaultFieldPatterns()
	if path == "" {
		return patterns, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read column patterns file %s", path))
	}

	var overrides map[Role][]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "invalid column patterns file %s", path))
	}

	for role, list := range overrides {
		if !knownRole(role) {
			return nil, errors.ConfigInvalidf("column patterns file %s names unknown role %q", path, role)
		}
		if len(list) > 0 {
			patterns[role] = list
		}
	}
	return patterns, nil
}

func knownRole(role Role) bool {
	for _, r := range detectionOrder {
		if r == role {
			return true
		}
	}
	return false
}
