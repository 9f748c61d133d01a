package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// CreditScoreRule checks a bureau score against a program minimum.
//
// A missing score is a distinct failure from a low score: lenders treat
// "no bureau file" differently from "thin credit", and the rejection
// message reflects which one happened.
type CreditScoreRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *CreditScoreRule) Type() policy.CriterionType { return policy.CriterionCreditScore }

// Evaluate checks the configured bureau score against the minimum. A
// passing score maps to [70, 100]: meeting the minimum exactly scores 70,
// and every point of headroom adds 0.3 up to the cap.
func (r *CreditScoreRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.CreditScoreCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	scoreType := cfg.Type
	if scoreType == "" {
		scoreType = policy.ScoreFICO
	}

	required := fmt.Sprintf("%d", cfg.Min)

	actual, present := appCtx.CreditScore(scoreType)
	if !present {
		res := match.Fail(r.Type(), fmt.Sprintf("no %s score available", scoreType))
		res.RequiredValue = required
		res.ActualValue = "not provided"
		return res, nil
	}

	if actual < cfg.Min {
		res := match.Fail(r.Type(),
			fmt.Sprintf("%s score %d below minimum %d", scoreType, actual, cfg.Min))
		res.RequiredValue = required
		res.ActualValue = fmt.Sprintf("%d", actual)
		return res, nil
	}

	headroom := float64(actual-cfg.Min) * 0.3
	if headroom > 30 {
		headroom = 30
	}
	res := match.Pass(r.Type(), 70+headroom,
		fmt.Sprintf("%s score %d meets minimum %d", scoreType, actual, cfg.Min))
	res.RequiredValue = required
	res.ActualValue = fmt.Sprintf("%d", actual)
	return res, nil
}
