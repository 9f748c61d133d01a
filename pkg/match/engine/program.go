package engine

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// evaluateProgram evaluates one program's amount gate and criteria.
func (e *Engine) evaluateProgram(appCtx *match.Context, pol *policy.LenderPolicy, prog *policy.Program) (match.ProgramEvaluation, error) {
	eval := match.ProgramEvaluation{
		ProgramID:     prog.ID,
		ProgramName:   prog.Name,
		IsAppOnly:     prog.IsAppOnly,
		MaxTermMonths: prog.MaxTermMonths,
	}

	// Amount bounds gate the program before any criteria run. The gate
	// records itself as a failed loan_amount result so the rejection
	// stays itemized.
	if prog.MinAmount != nil && appCtx.LoanAmount < *prog.MinAmount {
		e.failAmountGate(&eval, appCtx.LoanAmount, fmt.Sprintf(">= %d", *prog.MinAmount),
			fmt.Sprintf("loan amount %d below program minimum %d", appCtx.LoanAmount, *prog.MinAmount))
		return eval, nil
	}
	if prog.MaxAmount != nil && appCtx.LoanAmount > *prog.MaxAmount {
		e.failAmountGate(&eval, appCtx.LoanAmount, fmt.Sprintf("<= %d", *prog.MaxAmount),
			fmt.Sprintf("loan amount %d exceeds program maximum %d", appCtx.LoanAmount, *prog.MaxAmount))
		return eval, nil
	}

	configs := prog.Criteria.Configured()

	// Programs without their own term matrix inherit the lender-wide
	// matrix for the application's equipment category.
	if prog.Criteria.TermMatrix == nil {
		if matrix := pol.MatrixFor(appCtx.EquipmentCategory); matrix != nil {
			configs = append(configs, &policy.TermMatrixCriteria{
				LookupField: matrix.LookupField,
				Entries:     matrix.Entries,
			})
		}
	}

	if len(configs) == 0 {
		eval.Eligible = true
		eval.FitScore = 100
		return eval, nil
	}

	eval.CriteriaResults = make(map[policy.CriterionType]match.RuleResult, len(configs))
	eligible := true
	fit := 0.0

	for _, cfg := range configs {
		rule, err := e.registry.Lookup(cfg.CriterionType())
		if err != nil {
			return eval, &ConfigurationError{
				LenderID:  pol.ID,
				ProgramID: prog.ID,
				Message:   "criterion has no registered rule",
				Cause:     err,
			}
		}
		res, err := rule.Evaluate(appCtx, cfg)
		if err != nil {
			return eval, &ConfigurationError{
				LenderID:  pol.ID,
				ProgramID: prog.ID,
				Message:   "criterion evaluation failed",
				Cause:     err,
			}
		}
		e.metrics.RecordRuleOutcome(string(res.RuleName), res.Passed)
		eval.CriteriaResults[res.RuleName] = res

		if !res.Passed {
			eligible = false
			eval.RejectionReasons = append(eval.RejectionReasons, res.Message)
			continue
		}

		fit += res.Score * float64(e.weightFor(pol, res.RuleName)) / 100
	}

	if !eligible {
		return eval, nil
	}

	if fit > 100 {
		fit = 100
	}
	if fit < 0 {
		fit = 0
	}

	eval.Eligible = true
	eval.FitScore = fit
	eval.MaxTermMonths = effectiveMaxTerm(prog, eval.CriteriaResults)
	return eval, nil
}

// failAmountGate marks a program rejected by its amount bounds.
func (e *Engine) failAmountGate(eval *match.ProgramEvaluation, amount int64, required, message string) {
	res := match.Fail(policy.CriterionLoanAmount, message)
	res.RequiredValue = required
	res.ActualValue = fmt.Sprintf("%d", amount)

	e.metrics.RecordRuleOutcome(string(policy.CriterionLoanAmount), false)
	eval.CriteriaResults = map[policy.CriterionType]match.RuleResult{policy.CriterionLoanAmount: res}
	eval.RejectionReasons = []string{message}
}

// weightFor returns the policy's weight for a criterion, or the engine
// default. Weights are applied as configured, without re-normalization.
func (e *Engine) weightFor(pol *policy.LenderPolicy, ct policy.CriterionType) int {
	if w, ok := pol.Weights[ct]; ok {
		return w
	}
	return e.config.DefaultWeight
}

// effectiveMaxTerm returns the tighter of the program's declared term
// ceiling and the term the matrix lookup produced.
func effectiveMaxTerm(prog *policy.Program, results map[policy.CriterionType]match.RuleResult) *int {
	term := prog.MaxTermMonths
	res, ok := results[policy.CriterionTermMatrix]
	if !ok || !res.Passed || res.Details == nil {
		return term
	}
	matrixTerm, ok := res.Details["max_term_months"].(int)
	if !ok {
		return term
	}
	if term == nil || matrixTerm < *term {
		return &matrixTerm
	}
	return term
}
