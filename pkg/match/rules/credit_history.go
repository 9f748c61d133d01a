package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// CreditHistoryRule checks derogatory credit events: bankruptcy,
// judgements, tax liens, foreclosure, and repossession.
//
// A tolerated-but-present derogatory (a discharged bankruptcy a program
// allows) still reduces the pass score: discharge recency penalizes up to
// 30 points, fading by 3 points per year since discharge, and the score
// never drops below 60.
type CreditHistoryRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *CreditHistoryRule) Type() policy.CriterionType { return policy.CriterionCreditHistory }

// Evaluate runs the configured derogatory checks.
func (r *CreditHistoryRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.CreditHistoryCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	if appCtx.HasBankruptcy {
		if cfg.MaxBankruptcies != nil && *cfg.MaxBankruptcies == 0 {
			res := match.Fail(r.Type(), "bankruptcy history not accepted")
			res.RequiredValue = "no bankruptcies"
			res.ActualValue = bankruptcyActual(appCtx)
			return res, nil
		}
		// An active/undischarged bankruptcy always fails, whatever the
		// policy tolerates for discharged ones.
		if appCtx.BankruptcyDischargeYears == nil {
			res := match.Fail(r.Type(), "active bankruptcy not accepted")
			res.RequiredValue = "no active bankruptcy"
			res.ActualValue = bankruptcyActual(appCtx)
			return res, nil
		}
		if cfg.BankruptcyMinDischargeYears != nil &&
			*appCtx.BankruptcyDischargeYears < *cfg.BankruptcyMinDischargeYears {
			res := match.Fail(r.Type(), fmt.Sprintf(
				"bankruptcy discharged %.1f years ago, %g years required",
				*appCtx.BankruptcyDischargeYears, *cfg.BankruptcyMinDischargeYears))
			res.RequiredValue = fmt.Sprintf("%g years since discharge required", *cfg.BankruptcyMinDischargeYears)
			res.ActualValue = fmt.Sprintf("%.1f years", *appCtx.BankruptcyDischargeYears)
			return res, nil
		}
	}

	if appCtx.HasOpenJudgements {
		if cfg.MaxOpenJudgements != nil && *cfg.MaxOpenJudgements == 0 {
			return match.Fail(r.Type(), "open judgements not accepted"), nil
		}
		if cfg.MaxJudgementAmount != nil && appCtx.JudgementAmount != nil &&
			*appCtx.JudgementAmount > *cfg.MaxJudgementAmount {
			return match.Fail(r.Type(), fmt.Sprintf(
				"judgement amount %d exceeds maximum %d",
				*appCtx.JudgementAmount, *cfg.MaxJudgementAmount)), nil
		}
	}

	if appCtx.HasTaxLiens {
		if cfg.MaxTaxLiens != nil && *cfg.MaxTaxLiens == 0 {
			return match.Fail(r.Type(), "tax liens not accepted"), nil
		}
		if cfg.MaxTaxLienAmount != nil && appCtx.TaxLienAmount != nil &&
			*appCtx.TaxLienAmount > *cfg.MaxTaxLienAmount {
			return match.Fail(r.Type(), fmt.Sprintf(
				"tax lien amount %d exceeds maximum %d",
				*appCtx.TaxLienAmount, *cfg.MaxTaxLienAmount)), nil
		}
	}

	if appCtx.HasForeclosure && cfg.AllowsForeclosure != nil && !*cfg.AllowsForeclosure {
		return match.Fail(r.Type(), "foreclosure history not accepted"), nil
	}
	if appCtx.HasRepossession && cfg.AllowsRepossession != nil && !*cfg.AllowsRepossession {
		return match.Fail(r.Type(), "repossession history not accepted"), nil
	}

	score := 100.0
	if appCtx.HasBankruptcy && appCtx.BankruptcyDischargeYears != nil {
		penalty := 30 - *appCtx.BankruptcyDischargeYears*3
		if penalty < 0 {
			penalty = 0
		}
		score -= penalty
	}
	if score < 60 {
		score = 60
	}
	return match.Pass(r.Type(), score, "credit history acceptable"), nil
}

func bankruptcyActual(appCtx *match.Context) string {
	if appCtx.BankruptcyChapter != "" {
		return fmt.Sprintf("chapter %s bankruptcy", appCtx.BankruptcyChapter)
	}
	return "bankruptcy on file"
}
