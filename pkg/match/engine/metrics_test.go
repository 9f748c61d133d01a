package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
)

func TestEvaluateRecordsMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	e, err := New(nil, rules.NewRegistry(), m)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	policies := []*policy.LenderPolicy{
		{
			ID:      "open-arms",
			Name:    "Open Arms",
			Version: 1,
			Programs: []policy.Program{
				{ID: "any", Name: "Anything Goes"},
			},
		},
		{
			ID:      "closed-door",
			Name:    "Closed Door",
			Version: 1,
			Programs: []policy.Program{
				{
					ID:   "strict",
					Name: "Strict",
					Criteria: policy.CriteriaSet{
						CreditScore: &policy.CreditScoreCriteria{Min: 790},
					},
				},
			},
		},
	}

	if _, err := e.Evaluate(context.Background(), goodApplication(), policies); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if got := testutil.ToFloat64(m.evaluations); got != 1 {
		t.Errorf("evaluations counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lenderOutcomes.WithLabelValues("open-arms", "eligible")); got != 1 {
		t.Errorf("open-arms eligible outcome = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lenderOutcomes.WithLabelValues("closed-door", "ineligible")); got != 1 {
		t.Errorf("closed-door ineligible outcome = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ruleOutcomes.WithLabelValues(string(policy.CriterionCreditScore), "fail")); got != 1 {
		t.Errorf("credit_score fail outcome = %v, want 1", got)
	}
}

func TestAmountGateRecordsRuleOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	e, err := New(nil, rules.NewRegistry(), m)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pol := &policy.LenderPolicy{
		ID:      "small-only",
		Name:    "Small Only",
		Version: 1,
		Programs: []policy.Program{
			{ID: "micro", Name: "Micro", MaxAmount: int64Ptr(1_000_000)},
		},
	}

	if _, err := e.EvaluateLender(goodApplication(), pol); err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if got := testutil.ToFloat64(m.ruleOutcomes.WithLabelValues(string(policy.CriterionLoanAmount), "fail")); got != 1 {
		t.Errorf("loan_amount fail outcome = %v, want 1", got)
	}
}
