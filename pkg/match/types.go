package match

import (
	"time"

	"lendstack-hq/atlas/pkg/policy"
)

// RuleResult is the outcome of evaluating one criterion against an
// application. A failed result always carries a zero score; a passing
// result carries a score in [0, 100] that ranking weights later.
type RuleResult struct {
	// RuleName is the criterion type that produced this result.
	RuleName policy.CriterionType `json:"rule_name"`

	// Passed reports whether the application satisfied the criterion.
	Passed bool `json:"passed"`

	// RequiredValue is a human-readable rendering of what the criterion
	// demanded (e.g. "650" or "5 years since discharge required").
	RequiredValue string `json:"required_value,omitempty"`

	// ActualValue is a human-readable rendering of what the application
	// provided (e.g. "720" or "4.0 years").
	ActualValue string `json:"actual_value,omitempty"`

	// Message explains the outcome. For failures it is the primary
	// rejection reason surfaced to callers.
	Message string `json:"message"`

	// Score is the quality score in [0, 100]. Always 0 when Passed is
	// false.
	Score float64 `json:"score"`

	// Details carries criterion-specific extras, such as per-sub-check
	// breakdowns for composite criteria. Nil for simple criteria.
	Details map[string]any `json:"details,omitempty"`
}

// Pass constructs a passing result with the given score.
func Pass(rule policy.CriterionType, score float64, message string) RuleResult {
	return RuleResult{RuleName: rule, Passed: true, Score: score, Message: message}
}

// Fail constructs a failing result. Score is forced to zero.
func Fail(rule policy.CriterionType, message string) RuleResult {
	return RuleResult{RuleName: rule, Passed: false, Score: 0, Message: message}
}

// ProgramEvaluation is the outcome of evaluating one lender program. A
// program is eligible only when every configured criterion passed.
type ProgramEvaluation struct {
	// ProgramID identifies the program within its lender policy.
	ProgramID string `json:"program_id"`

	// ProgramName is the display name from the policy.
	ProgramName string `json:"program_name"`

	// Eligible reports whether every configured criterion passed.
	Eligible bool `json:"eligible"`

	// FitScore is the weighted program fit in [0, 100]; 0 when the
	// program is ineligible.
	FitScore float64 `json:"fit_score"`

	// CriteriaResults holds the per-criterion outcomes keyed by
	// criterion type. Empty when the lender was rejected before program
	// evaluation (restriction failure or amount gate).
	CriteriaResults map[policy.CriterionType]RuleResult `json:"criteria_results,omitempty"`

	// RejectionReasons lists the failure messages, first failure first.
	RejectionReasons []string `json:"rejection_reasons,omitempty"`

	// MaxTermMonths is the term ceiling this program would offer, when
	// the policy declares one.
	MaxTermMonths *int `json:"max_term_months,omitempty"`

	// IsAppOnly reports whether the program is application-only (no
	// financial statements required).
	IsAppOnly bool `json:"is_app_only"`
}

// LenderMatch is the outcome of evaluating one lender against an
// application: the lender's best program, its fit score, and the full
// per-program detail.
type LenderMatch struct {
	// LenderID and LenderName identify the lender policy evaluated.
	LenderID   string `json:"lender_id"`
	LenderName string `json:"lender_name"`

	// PolicyVersion is the version of the policy that produced this
	// match.
	PolicyVersion int `json:"policy_version"`

	// Eligible reports whether at least one program accepted the
	// application.
	Eligible bool `json:"eligible"`

	// FitScore is the best eligible program's fit score; 0 when
	// ineligible.
	FitScore float64 `json:"fit_score"`

	// BestProgramID names the eligible program with the highest fit
	// score. Empty when ineligible.
	BestProgramID string `json:"best_program_id,omitempty"`

	// Rank is the 1-based position among eligible matches. Nil for
	// ineligible lenders.
	Rank *int `json:"rank,omitempty"`

	// Programs holds every program evaluation in policy order.
	Programs []ProgramEvaluation `json:"programs"`

	// RejectionReasons is the deduplicated union of all programs'
	// rejection reasons when no program was eligible.
	RejectionReasons []string `json:"rejection_reasons,omitempty"`

	// Error is set when this lender's evaluation failed (bad policy
	// configuration, panicked rule). An errored lender is always
	// ineligible and carries no program detail.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of matching one application against a policy set.
type Result struct {
	// ApplicationID echoes the evaluated application.
	ApplicationID string `json:"application_id"`

	// PolicySetVersion is the content-hash version of the policy set
	// this result was computed against.
	PolicySetVersion string `json:"policy_set_version,omitempty"`

	// Matches holds every lender outcome, eligible matches first in
	// rank order, then ineligible lenders in policy order.
	Matches []LenderMatch `json:"matches"`

	// BestMatch points at the top-ranked match, or nil when no lender
	// was eligible.
	BestMatch *LenderMatch `json:"best_match,omitempty"`

	// TotalEvaluated and TotalEligible summarize the run.
	TotalEvaluated int `json:"total_evaluated"`
	TotalEligible  int `json:"total_eligible"`

	// Duration is how long the evaluation took.
	Duration time.Duration `json:"duration_ns"`

	// EvaluatedAt is when the evaluation ran.
	EvaluatedAt time.Time `json:"evaluated_at"`
}
