package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// TermMatrixRule looks up the maximum financeable term from a range table
// keyed by equipment mileage, age, or hours.
//
// Three passing tiers reflect lookup confidence: a matched entry whose term
// accommodates the request scores 85; a missing lookup value (application
// never reported mileage) scores 80 because the tier could not be assessed;
// a value outside every configured range scores 70. An entry with a zero
// max term is a sentinel for "this risk tier is not financed", failing with
// the entry's own rejection wording.
type TermMatrixRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *TermMatrixRule) Type() policy.CriterionType { return policy.CriterionTermMatrix }

// Evaluate looks up the application's equipment in the matrix.
func (r *TermMatrixRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.TermMatrixCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	field := cfg.LookupField
	if field == "" {
		field = policy.LookupMileage
	}

	value, present := lookupValue(appCtx, field)
	if !present {
		return match.Pass(r.Type(), 80, fmt.Sprintf(
			"equipment %s not provided, term tier not assessed", field)), nil
	}

	entry := matchEntry(cfg.Entries, value)
	if entry == nil {
		return match.Pass(r.Type(), 70, fmt.Sprintf(
			"equipment %s %d outside configured tiers", field, value)), nil
	}

	if entry.MaxTermMonths == 0 {
		reason := entry.RejectionReason
		if reason == "" {
			reason = fmt.Sprintf("equipment %s %d not financed", field, value)
		}
		res := match.Fail(r.Type(), reason)
		res.ActualValue = fmt.Sprintf("%d %s", value, field)
		return res, nil
	}

	if appCtx.RequestedTermMonths != nil && *appCtx.RequestedTermMonths > entry.MaxTermMonths {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"requested term %d months exceeds maximum %d for equipment %s %d",
			*appCtx.RequestedTermMonths, entry.MaxTermMonths, field, value))
		res.RequiredValue = fmt.Sprintf("%d months", entry.MaxTermMonths)
		res.ActualValue = fmt.Sprintf("%d months", *appCtx.RequestedTermMonths)
		return res, nil
	}

	res := match.Pass(r.Type(), 85, fmt.Sprintf(
		"maximum term %d months for equipment %s %d", entry.MaxTermMonths, field, value))
	res.Details = map[string]any{"max_term_months": entry.MaxTermMonths}
	return res, nil
}

// lookupValue reads the matrix key attribute from the application.
func lookupValue(appCtx *match.Context, field policy.LookupField) (int, bool) {
	switch field {
	case policy.LookupMileage:
		if appCtx.EquipmentMileage == nil {
			return 0, false
		}
		return *appCtx.EquipmentMileage, true
	case policy.LookupAge:
		return appCtx.EquipmentAgeYears, true
	case policy.LookupHours:
		if appCtx.EquipmentHours == nil {
			return 0, false
		}
		return *appCtx.EquipmentHours, true
	default:
		return 0, false
	}
}

// matchEntry returns the first entry containing value, or nil.
func matchEntry(entries []policy.TermMatrixEntry, value int) *policy.TermMatrixEntry {
	for i := range entries {
		if entries[i].Contains(value) {
			return &entries[i]
		}
	}
	return nil
}
