package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// TransactionRule checks transaction type and private-party allowances.
// Unset allowances default to allowed.
type TransactionRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *TransactionRule) Type() policy.CriterionType { return policy.CriterionTransaction }

// Evaluate checks the transaction against the configured allowances.
func (r *TransactionRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.TransactionCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	switch appCtx.TransactionType {
	case policy.TransactionPurchase:
		if !allowed(cfg.AllowsPurchase) {
			return match.Fail(r.Type(), "purchase transactions not accepted"), nil
		}
	case policy.TransactionRefinance:
		if !allowed(cfg.AllowsRefinance) {
			return match.Fail(r.Type(), "refinance transactions not accepted"), nil
		}
	case policy.TransactionSaleLeaseback:
		if !allowed(cfg.AllowsSaleLeaseback) {
			return match.Fail(r.Type(), "sale-leaseback transactions not accepted"), nil
		}
	default:
		return match.Fail(r.Type(), fmt.Sprintf(
			"unknown transaction type %q", appCtx.TransactionType)), nil
	}

	if appCtx.IsPrivateParty && !allowed(cfg.AllowsPrivateParty) {
		return match.Fail(r.Type(), "private party sales not accepted"), nil
	}

	return match.Pass(r.Type(), 100, "transaction type accepted"), nil
}

// allowed treats a nil allowance flag as permitted.
func allowed(flag *bool) bool {
	return flag == nil || *flag
}
