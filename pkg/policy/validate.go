package policy

import (
	"fmt"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks a parsed policy for structural and semantic problems:
// id formats, unique program ids, bureau score ranges, matrix entry
// ordering, and weight sanity. When checker is non-nil, every configured
// criterion tag is also verified against the rule registry, so a policy
// referencing an unregistered criterion type fails validation instead of
// failing at evaluation time.
//
// All problems found are returned as a single ValidationErrors value.
func Validate(p *LenderPolicy, checker TypeChecker) error {
	var errs ValidationErrors

	addErr := func(fieldPath, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{
			LenderID:  p.ID,
			FieldPath: fieldPath,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	if p.ID == "" {
		addErr("id", "lender id is required")
	} else if !idPattern.MatchString(p.ID) {
		addErr("id", "lender id %q must be lowercase alphanumeric with underscores/hyphens", p.ID)
	}
	if p.Name == "" {
		addErr("name", "lender name is required")
	}
	if p.Version < 1 {
		addErr("version", "version must be at least 1, got %d", p.Version)
	}
	if len(p.Programs) == 0 {
		addErr("programs", "at least one program is required")
	}

	seen := make(map[string]bool, len(p.Programs))
	for i := range p.Programs {
		prog := &p.Programs[i]
		path := fmt.Sprintf("programs[%d]", i)

		if prog.ID == "" {
			addErr(path+".id", "program id is required")
		} else if !idPattern.MatchString(prog.ID) {
			addErr(path+".id", "program id %q must be lowercase alphanumeric with underscores/hyphens", prog.ID)
		} else if seen[prog.ID] {
			addErr(path+".id", "duplicate program id %q", prog.ID)
		}
		seen[prog.ID] = true

		if prog.Name == "" {
			addErr(path+".name", "program name is required")
		}
		if prog.MinAmount != nil && *prog.MinAmount < 0 {
			addErr(path+".min_amount", "min amount must not be negative")
		}
		if prog.MinAmount != nil && prog.MaxAmount != nil && *prog.MinAmount > *prog.MaxAmount {
			addErr(path+".min_amount", "min amount %d exceeds max amount %d", *prog.MinAmount, *prog.MaxAmount)
		}
		if prog.MaxTermMonths != nil && *prog.MaxTermMonths < 1 {
			addErr(path+".max_term_months", "max term must be at least 1 month")
		}

		errs = append(errs, validateCriteria(p.ID, path+".criteria", &prog.Criteria, checker)...)
	}

	for i := range p.Matrices {
		matrix := &p.Matrices[i]
		path := fmt.Sprintf("equipment_matrices[%d]", i)
		if matrix.Category == "" {
			addErr(path+".category", "matrix category is required")
		}
		errs = append(errs, validateMatrixEntries(p.ID, path, matrix.LookupField, matrix.Entries)...)
	}

	for ct, weight := range p.Weights {
		if weight < 0 {
			addErr("scoring_weights", "weight for %q must not be negative, got %d", ct, weight)
		}
		if checker != nil && !checker.Has(ct) {
			addErr("scoring_weights", "weight references unregistered criterion type %q", ct)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateCriteria checks one program's criteria set.
func validateCriteria(lenderID, path string, set *CriteriaSet, checker TypeChecker) ValidationErrors {
	var errs ValidationErrors

	addErr := func(fieldPath, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{
			LenderID:  lenderID,
			FieldPath: fieldPath,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	if checker != nil {
		for _, cfg := range set.Configured() {
			if !checker.Has(cfg.CriterionType()) {
				addErr(path, "criterion type %q has no registered rule", cfg.CriterionType())
			}
		}
	}

	if cs := set.CreditScore; cs != nil {
		switch cs.Type {
		case "", ScoreFICO, ScoreTransUnion, ScoreExperian, ScoreEquifax:
			if cs.Min < 300 || cs.Min > 850 {
				addErr(path+".credit_score.min", "bureau score minimum %d outside 300-850", cs.Min)
			}
		case ScorePayNet, ScorePaydex:
			if cs.Min < 0 {
				addErr(path+".credit_score.min", "score minimum must not be negative")
			}
		default:
			addErr(path+".credit_score.type", "unknown score type %q", cs.Type)
		}
	}

	if b := set.Business; b != nil {
		if b.MinTimeInBusinessYears != nil && *b.MinTimeInBusinessYears < 0 {
			addErr(path+".business.min_time_in_business_years", "must not be negative")
		}
		if b.MinCDLYears != nil && *b.MinCDLYears < 0 {
			addErr(path+".business.min_cdl_years", "must not be negative")
		}
	}

	if la := set.LoanAmount; la != nil {
		if la.MinAmount != nil && la.MaxAmount != nil && *la.MinAmount > *la.MaxAmount {
			addErr(path+".loan_amount", "min amount %d exceeds max amount %d", *la.MinAmount, *la.MaxAmount)
		}
	}

	if tm := set.TermMatrix; tm != nil {
		errs = append(errs, validateMatrixEntries(lenderID, path+".term_matrix", tm.LookupField, tm.Entries)...)
	}

	if g := set.Geographic; g != nil {
		for _, s := range append(append([]string{}, g.AllowedStates...), g.ExcludedStates...) {
			if len(strings.TrimSpace(s)) != 2 {
				addErr(path+".geographic", "state code %q is not a 2-letter code", s)
			}
		}
	}

	return errs
}

// validateMatrixEntries checks a term matrix table: a known lookup field,
// at least one entry, sane bounds, and a rejection reason on sentinel rows
// only.
func validateMatrixEntries(lenderID, path string, field LookupField, entries []TermMatrixEntry) ValidationErrors {
	var errs ValidationErrors

	addErr := func(fieldPath, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{
			LenderID:  lenderID,
			FieldPath: fieldPath,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	switch field {
	case "", LookupMileage, LookupAge, LookupHours:
	default:
		addErr(path+".lookup_field", "unknown lookup field %q", field)
	}

	if len(entries) == 0 {
		addErr(path+".entries", "at least one entry is required")
	}

	for i, entry := range entries {
		entryPath := fmt.Sprintf("%s.entries[%d]", path, i)
		if entry.Min < 0 {
			addErr(entryPath, "min must not be negative")
		}
		if entry.Max != nil && *entry.Max < entry.Min {
			addErr(entryPath, "max %d is below min %d", *entry.Max, entry.Min)
		}
		if entry.MaxTermMonths < 0 {
			addErr(entryPath, "max term months must not be negative")
		}
		if entry.MaxTermMonths == 0 && entry.RejectionReason == "" {
			addErr(entryPath, "rejection entries (max_term_months: 0) require a rejection_reason")
		}
		if entry.MaxTermMonths > 0 && entry.RejectionReason != "" {
			addErr(entryPath, "rejection_reason is only valid on rejection entries (max_term_months: 0)")
		}
	}

	return errs
}
