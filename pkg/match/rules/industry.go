package rules

import (
	"fmt"
	"strings"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// IndustryRule checks the business industry against allow/exclude lists.
// Entries match as case-insensitive substrings of the application's industry
// code or name, so "trucking" matches "long_haul_trucking" and
// "Trucking & Freight" alike.
type IndustryRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *IndustryRule) Type() policy.CriterionType { return policy.CriterionIndustry }

// Evaluate checks industry restrictions. Exclusions win over allowances.
func (r *IndustryRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.IndustryCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	code := strings.ToLower(appCtx.IndustryCode)
	name := strings.ToLower(appCtx.IndustryName)

	for _, excluded := range cfg.ExcludedIndustries {
		if industryMatches(excluded, code, name) {
			return match.Fail(r.Type(), fmt.Sprintf("industry %q not accepted", excluded)), nil
		}
	}

	if len(cfg.AllowedIndustries) > 0 {
		for _, allowed := range cfg.AllowedIndustries {
			if industryMatches(allowed, code, name) {
				return match.Pass(r.Type(), 100, "industry accepted"), nil
			}
		}
		return match.Fail(r.Type(), fmt.Sprintf(
			"industry %q not in accepted industries", appCtx.IndustryName)), nil
	}

	return match.Pass(r.Type(), 100, "industry accepted"), nil
}

// industryMatches reports whether entry appears in the application's
// industry code or name.
func industryMatches(entry, code, name string) bool {
	e := strings.ToLower(strings.TrimSpace(entry))
	if e == "" {
		return false
	}
	return strings.Contains(code, e) || strings.Contains(name, e)
}
