package engine

import (
	"reflect"
	"strings"
	"testing"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
)

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil, rules.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// goodApplication is eligible for most test policies: solid credit,
// established business, low mileage truck.
func goodApplication() *match.Context {
	return &match.Context{
		ApplicationID:     "app-1",
		FICOScore:         intPtr(720),
		YearsInBusiness:   6,
		IndustryName:      "Freight Hauling",
		State:             "TX",
		IsHomeowner:       true,
		LoanAmount:        10_000_000,
		TransactionType:   policy.TransactionPurchase,
		EquipmentCategory: "class_8_truck",
		EquipmentAgeYears: 3,
		EquipmentMileage:  intPtr(200_000),
	}
}

func TestEvaluateLenderRestrictionShortCircuit(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "western-capital",
		Name:    "Western Capital",
		Version: 1,
		Restrictions: &policy.Restrictions{
			Geographic: &policy.GeographicCriteria{ExcludedStates: []string{"CA"}},
		},
		Programs: []policy.Program{
			{ID: "standard", Name: "Standard"},
		},
	}

	appCtx := goodApplication()
	appCtx.State = "CA"

	m, err := e.EvaluateLender(appCtx, pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Error("expected restriction failure to make the lender ineligible")
	}
	if m.FitScore != 0 {
		t.Errorf("FitScore = %v, want 0", m.FitScore)
	}
	if len(m.Programs) != 0 {
		t.Errorf("expected no program evaluations, got %d", len(m.Programs))
	}
	if len(m.RejectionReasons) != 1 || !strings.Contains(m.RejectionReasons[0], "CA") {
		t.Errorf("RejectionReasons = %v, want one state rejection", m.RejectionReasons)
	}
}

func TestEvaluateLenderCollectsAllRestrictionFailures(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "picky-capital",
		Name:    "Picky Capital",
		Version: 1,
		Restrictions: &policy.Restrictions{
			Geographic: &policy.GeographicCriteria{ExcludedStates: []string{"TX"}},
			Industry:   &policy.IndustryCriteria{ExcludedIndustries: []string{"freight"}},
		},
		Programs: []policy.Program{
			{ID: "standard", Name: "Standard"},
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Fatal("expected restriction failures to make the lender ineligible")
	}
	if len(m.RejectionReasons) != 2 {
		t.Fatalf("RejectionReasons = %v, want both restriction failures", m.RejectionReasons)
	}
	if !strings.Contains(m.RejectionReasons[0], "TX") {
		t.Errorf("RejectionReasons[0] = %q, want the state failure", m.RejectionReasons[0])
	}
	if !strings.Contains(m.RejectionReasons[1], "freight") {
		t.Errorf("RejectionReasons[1] = %q, want the industry failure", m.RejectionReasons[1])
	}
}

func TestEvaluateLenderDeterministic(t *testing.T) {
	e := newTestEngine(t)

	// Several criteria, a partial weight map, and a failing program keep
	// map-backed state in play on every evaluation.
	pol := &policy.LenderPolicy{
		ID:      "steady-state-capital",
		Name:    "Steady State Capital",
		Version: 3,
		Programs: []policy.Program{
			{
				ID:   "prime",
				Name: "Prime",
				Criteria: policy.CriteriaSet{
					CreditScore:   &policy.CreditScoreCriteria{Min: 650},
					CreditHistory: &policy.CreditHistoryCriteria{MaxBankruptcies: intPtr(0)},
					Business:      &policy.BusinessCriteria{MinTimeInBusinessYears: floatPtr(2)},
					Geographic:    &policy.GeographicCriteria{AllowedStates: []string{"TX", "OK"}},
					LoanAmount:    &policy.LoanAmountCriteria{MaxAmount: int64Ptr(20_000_000)},
				},
			},
			{
				ID:   "super-prime",
				Name: "Super Prime",
				Criteria: policy.CriteriaSet{
					CreditScore: &policy.CreditScoreCriteria{Min: 780},
					Geographic:  &policy.GeographicCriteria{AllowedStates: []string{"FL"}},
				},
			},
		},
		Weights: map[policy.CriterionType]int{
			policy.CriterionCreditScore:   40,
			policy.CriterionCreditHistory: 20,
			policy.CriterionGeographic:    5,
		},
	}

	first, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !first.Eligible {
		t.Fatalf("expected eligibility, reasons: %v", first.RejectionReasons)
	}

	for i := 0; i < 20; i++ {
		again, err := e.EvaluateLender(goodApplication(), pol)
		if err != nil {
			t.Fatalf("EvaluateLender() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("evaluation %d differs:\nfirst = %+v\nagain = %+v", i, first, again)
		}
	}
}

func TestEvaluateLenderStartupProgramFallback(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "summit-finance",
		Name:    "Summit Finance",
		Version: 2,
		Programs: []policy.Program{
			{
				ID:   "established",
				Name: "Established Business",
				Criteria: policy.CriteriaSet{
					Business: &policy.BusinessCriteria{MinTimeInBusinessYears: floatPtr(2)},
				},
			},
			{
				ID:        "startup",
				Name:      "Startup",
				IsAppOnly: true,
				Criteria: policy.CriteriaSet{
					CreditScore: &policy.CreditScoreCriteria{Type: policy.ScoreFICO, Min: 700},
				},
			},
		},
	}

	appCtx := goodApplication()
	appCtx.YearsInBusiness = 0.5

	m, err := e.EvaluateLender(appCtx, pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !m.Eligible {
		t.Fatalf("expected startup program to qualify, reasons: %v", m.RejectionReasons)
	}
	if m.BestProgramID != "startup" {
		t.Errorf("BestProgramID = %q, want startup", m.BestProgramID)
	}
	if len(m.Programs) != 2 {
		t.Fatalf("got %d program evaluations, want 2", len(m.Programs))
	}
	if m.Programs[0].Eligible {
		t.Error("established program should have failed on time in business")
	}
	if m.Programs[0].FitScore != 0 {
		t.Errorf("ineligible program FitScore = %v, want 0", m.Programs[0].FitScore)
	}
}

func TestEvaluateLenderStaleBankruptcy(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "meridian-bank",
		Name:    "Meridian Bank",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:   "standard",
				Name: "Standard",
				Criteria: policy.CriteriaSet{
					CreditHistory: &policy.CreditHistoryCriteria{
						MaxBankruptcies:             intPtr(1),
						BankruptcyMinDischargeYears: floatPtr(5),
					},
				},
			},
		},
	}

	appCtx := goodApplication()
	appCtx.HasBankruptcy = true
	appCtx.BankruptcyDischargeYears = floatPtr(4.0)

	m, err := e.EvaluateLender(appCtx, pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Fatal("expected bankruptcy discharge check to reject")
	}
	if len(m.RejectionReasons) != 1 ||
		!strings.Contains(m.RejectionReasons[0], "4.0 years ago, 5 years required") {
		t.Errorf("RejectionReasons = %v, want the discharge gap message", m.RejectionReasons)
	}
}

func TestEvaluateLenderInheritedTermMatrixSentinel(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "haulage-credit",
		Name:    "Haulage Credit",
		Version: 1,
		Programs: []policy.Program{
			{ID: "standard", Name: "Standard"},
		},
		Matrices: []policy.EquipmentTermMatrix{
			{
				Category:    "class_8_truck",
				LookupField: policy.LookupMileage,
				Entries: []policy.TermMatrixEntry{
					{Min: 0, Max: intPtr(500_000), MaxTermMonths: 60},
					{Min: 500_001, MaxTermMonths: 0, RejectionReason: "mileage exceeds financeable range"},
				},
			},
		},
	}

	appCtx := goodApplication()
	appCtx.EquipmentMileage = intPtr(650_000)

	m, err := e.EvaluateLender(appCtx, pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Fatal("expected inherited matrix sentinel to reject")
	}
	if len(m.RejectionReasons) != 1 || m.RejectionReasons[0] != "mileage exceeds financeable range" {
		t.Errorf("RejectionReasons = %v, want the matrix rejection reason", m.RejectionReasons)
	}
}

func TestEvaluateProgramAmountGate(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "apex-leasing",
		Name:    "Apex Leasing",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:        "small-ticket",
				Name:      "Small Ticket",
				MinAmount: int64Ptr(1_000_000),
				MaxAmount: int64Ptr(5_000_000),
				Criteria: policy.CriteriaSet{
					CreditScore: &policy.CreditScoreCriteria{Min: 600},
				},
			},
		},
	}

	appCtx := goodApplication()
	appCtx.LoanAmount = 10_000_000

	m, err := e.EvaluateLender(appCtx, pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Fatal("expected amount gate to reject")
	}
	prog := m.Programs[0]
	if len(prog.CriteriaResults) != 1 {
		t.Errorf("amount-gated program carries %d criteria results, want only the amount result", len(prog.CriteriaResults))
	}
	res, ok := prog.CriteriaResults[policy.CriterionLoanAmount]
	if !ok {
		t.Fatalf("CriteriaResults = %v, want a loan_amount entry", prog.CriteriaResults)
	}
	if res.Passed || res.Score != 0 {
		t.Errorf("gate result passed=%v score=%v, want a zero-score failure", res.Passed, res.Score)
	}
	if !strings.Contains(res.Message, "exceeds program maximum") {
		t.Errorf("gate result message = %q, want the amount gate message", res.Message)
	}
	if len(prog.RejectionReasons) != 1 ||
		!strings.Contains(prog.RejectionReasons[0], "exceeds program maximum") {
		t.Errorf("RejectionReasons = %v, want the amount gate message", prog.RejectionReasons)
	}
}

func TestEvaluateProgramWeightedFit(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "pinnacle-funding",
		Name:    "Pinnacle Funding",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:   "standard",
				Name: "Standard",
				Criteria: policy.CriteriaSet{
					// 720 against min 650 scores 70 + 21 = 91.
					CreditScore: &policy.CreditScoreCriteria{Min: 650},
					// Clean history scores 100.
					CreditHistory: &policy.CreditHistoryCriteria{MaxBankruptcies: intPtr(0)},
				},
			},
		},
		Weights: map[policy.CriterionType]int{
			policy.CriterionCreditScore: 50,
			// credit_history falls back to the default weight of 10.
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !m.Eligible {
		t.Fatalf("expected eligibility, reasons: %v", m.RejectionReasons)
	}
	want := 91*0.5 + 100*0.1
	if m.FitScore != want {
		t.Errorf("FitScore = %v, want %v", m.FitScore, want)
	}
}

func TestEvaluateProgramFitClamped(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "overweight-lender",
		Name:    "Overweight Lender",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:   "standard",
				Name: "Standard",
				Criteria: policy.CriteriaSet{
					CreditScore:   &policy.CreditScoreCriteria{Min: 500},
					CreditHistory: &policy.CreditHistoryCriteria{},
				},
			},
		},
		Weights: map[policy.CriterionType]int{
			policy.CriterionCreditScore:   90,
			policy.CriterionCreditHistory: 90,
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !m.Eligible {
		t.Fatalf("expected eligibility, reasons: %v", m.RejectionReasons)
	}
	if m.FitScore != 100 {
		t.Errorf("FitScore = %v, want clamp to 100", m.FitScore)
	}
}

func TestEvaluateProgramEmptyCriteria(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "open-door-capital",
		Name:    "Open Door Capital",
		Version: 1,
		Programs: []policy.Program{
			{ID: "any", Name: "Anything Goes"},
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !m.Eligible || m.FitScore != 100 {
		t.Errorf("got eligible=%v fit=%v, want eligible with fit 100", m.Eligible, m.FitScore)
	}
}

func TestEvaluateLenderUnionRejectionReasons(t *testing.T) {
	e := newTestEngine(t)

	// Both programs fail the same credit check; the second also fails on
	// state. The union should carry each distinct reason once.
	pol := &policy.LenderPolicy{
		ID:      "gatekeeper-financial",
		Name:    "Gatekeeper Financial",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:   "a",
				Name: "A",
				Criteria: policy.CriteriaSet{
					CreditScore: &policy.CreditScoreCriteria{Min: 780},
				},
			},
			{
				ID:   "b",
				Name: "B",
				Criteria: policy.CriteriaSet{
					CreditScore: &policy.CreditScoreCriteria{Min: 780},
					Geographic:  &policy.GeographicCriteria{AllowedStates: []string{"FL"}},
				},
			},
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if m.Eligible {
		t.Fatal("expected ineligibility")
	}
	if len(m.RejectionReasons) != 2 {
		t.Errorf("RejectionReasons = %v, want 2 deduplicated reasons", m.RejectionReasons)
	}
}

func TestEvaluateProgramMatrixTightensTerm(t *testing.T) {
	e := newTestEngine(t)

	pol := &policy.LenderPolicy{
		ID:      "termwise-leasing",
		Name:    "Termwise Leasing",
		Version: 1,
		Programs: []policy.Program{
			{
				ID:            "standard",
				Name:          "Standard",
				MaxTermMonths: intPtr(72),
				Criteria: policy.CriteriaSet{
					TermMatrix: &policy.TermMatrixCriteria{
						LookupField: policy.LookupMileage,
						Entries: []policy.TermMatrixEntry{
							{Min: 0, Max: intPtr(300_000), MaxTermMonths: 48},
						},
					},
				},
			},
		},
	}

	m, err := e.EvaluateLender(goodApplication(), pol)
	if err != nil {
		t.Fatalf("EvaluateLender() error = %v", err)
	}
	if !m.Eligible {
		t.Fatalf("expected eligibility, reasons: %v", m.RejectionReasons)
	}
	prog := m.Programs[0]
	if prog.MaxTermMonths == nil || *prog.MaxTermMonths != 48 {
		t.Errorf("MaxTermMonths = %v, want the tighter matrix term 48", prog.MaxTermMonths)
	}
}
