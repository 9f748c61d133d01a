package rules

import (
	"fmt"
	"strings"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// GeographicRule checks the business state against allow/exclude lists.
// State codes are normalized to upper case before comparison.
type GeographicRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *GeographicRule) Type() policy.CriterionType { return policy.CriterionGeographic }

// Evaluate checks state restrictions. An exclusion list wins over an allow
// list when both name the same state.
func (r *GeographicRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.GeographicCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	state := strings.ToUpper(strings.TrimSpace(appCtx.State))
	if state == "" {
		return match.Fail(r.Type(), "business state not provided"), nil
	}

	for _, excluded := range cfg.ExcludedStates {
		if strings.ToUpper(excluded) == state {
			return match.Fail(r.Type(), fmt.Sprintf("state %s not served", state)), nil
		}
	}

	if len(cfg.AllowedStates) > 0 {
		for _, allowed := range cfg.AllowedStates {
			if strings.ToUpper(allowed) == state {
				return match.Pass(r.Type(), 100, fmt.Sprintf("state %s served", state)), nil
			}
		}
		return match.Fail(r.Type(), fmt.Sprintf("state %s not in served states", state)), nil
	}

	return match.Pass(r.Type(), 100, fmt.Sprintf("state %s served", state)), nil
}
