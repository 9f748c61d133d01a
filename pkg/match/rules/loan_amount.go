package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// LoanAmountRule bounds the requested amount. Amounts are in minor currency
// units throughout.
type LoanAmountRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *LoanAmountRule) Type() policy.CriterionType { return policy.CriterionLoanAmount }

// Evaluate checks the requested amount against the configured bounds.
func (r *LoanAmountRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.LoanAmountCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	amount := appCtx.LoanAmount

	if cfg.MinAmount != nil && amount < *cfg.MinAmount {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"loan amount %d below minimum %d", amount, *cfg.MinAmount))
		res.RequiredValue = fmt.Sprintf(">= %d", *cfg.MinAmount)
		res.ActualValue = fmt.Sprintf("%d", amount)
		return res, nil
	}

	if cfg.MaxAmount != nil && amount > *cfg.MaxAmount {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"loan amount %d exceeds maximum %d", amount, *cfg.MaxAmount))
		res.RequiredValue = fmt.Sprintf("<= %d", *cfg.MaxAmount)
		res.ActualValue = fmt.Sprintf("%d", amount)
		return res, nil
	}

	return match.Pass(r.Type(), 100, "loan amount within bounds"), nil
}
