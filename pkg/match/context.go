package match

import (
	"strings"
	"time"

	"lendstack-hq/atlas/pkg/policy"
)

// daysPerYear converts elapsed days to fractional years, accounting for
// leap years.
const daysPerYear = 365.25

// truckingCategories are the equipment categories that make conditional
// CDL requirements mandatory.
var truckingCategories = map[string]bool{
	"class_8_truck": true,
	"semi":          true,
	"trailer":       true,
	"truck":         true,
}

// Context is the immutable snapshot of a loan application that rules
// evaluate against. It is assembled upstream from persisted application,
// business, and guarantor records plus derived features (equipment age,
// bankruptcy discharge years); the engine performs no derivation of its
// own.
//
// Nil pointer fields mean "not provided", which rules treat as a normal
// application-data condition, not an error.
type Context struct {
	// ApplicationID identifies the application being evaluated.
	ApplicationID string `yaml:"application_id" json:"application_id"`

	// Personal bureau scores. Nil means the bureau was not pulled.
	FICOScore       *int `yaml:"fico_score" json:"fico_score,omitempty"`
	TransUnionScore *int `yaml:"transunion_score" json:"transunion_score,omitempty"`
	ExperianScore   *int `yaml:"experian_score" json:"experian_score,omitempty"`
	EquifaxScore    *int `yaml:"equifax_score" json:"equifax_score,omitempty"`

	// Business credit scores.
	PayNetScore *int `yaml:"paynet_score" json:"paynet_score,omitempty"`
	PaydexScore *int `yaml:"paydex_score" json:"paydex_score,omitempty"`

	// Business attributes.
	BusinessName    string  `yaml:"business_name" json:"business_name"`
	YearsInBusiness float64 `yaml:"years_in_business" json:"years_in_business"`
	IndustryCode    string  `yaml:"industry_code" json:"industry_code"`
	IndustryName    string  `yaml:"industry_name" json:"industry_name"`
	State           string  `yaml:"state" json:"state"`
	AnnualRevenue   *int64  `yaml:"annual_revenue" json:"annual_revenue,omitempty"`
	FleetSize       *int    `yaml:"fleet_size" json:"fleet_size,omitempty"`

	// Guarantor attributes.
	IsHomeowner             bool `yaml:"is_homeowner" json:"is_homeowner"`
	IsUSCitizen             bool `yaml:"is_us_citizen" json:"is_us_citizen"`
	HasCDL                  bool `yaml:"has_cdl" json:"has_cdl"`
	CDLYears                *int `yaml:"cdl_years" json:"cdl_years,omitempty"`
	IndustryExperienceYears *int `yaml:"industry_experience_years" json:"industry_experience_years,omitempty"`

	// Credit history. BankruptcyDischargeYears is derived upstream as
	// elapsed days since discharge divided by 365.25; nil with
	// HasBankruptcy set means the bankruptcy is active/undischarged.
	HasBankruptcy            bool     `yaml:"has_bankruptcy" json:"has_bankruptcy"`
	BankruptcyDischargeYears *float64 `yaml:"bankruptcy_discharge_years" json:"bankruptcy_discharge_years,omitempty"`
	BankruptcyChapter        string   `yaml:"bankruptcy_chapter" json:"bankruptcy_chapter,omitempty"`
	HasOpenJudgements        bool     `yaml:"has_open_judgements" json:"has_open_judgements"`
	JudgementAmount          *int64   `yaml:"judgement_amount" json:"judgement_amount,omitempty"`
	HasForeclosure           bool     `yaml:"has_foreclosure" json:"has_foreclosure"`
	HasRepossession          bool     `yaml:"has_repossession" json:"has_repossession"`
	HasTaxLiens              bool     `yaml:"has_tax_liens" json:"has_tax_liens"`
	TaxLienAmount            *int64   `yaml:"tax_lien_amount" json:"tax_lien_amount,omitempty"`

	// Loan request. LoanAmount is in minor currency units (cents).
	LoanAmount          int64                  `yaml:"loan_amount" json:"loan_amount"`
	RequestedTermMonths *int                   `yaml:"requested_term_months" json:"requested_term_months,omitempty"`
	DownPaymentPercent  *float64               `yaml:"down_payment_percent" json:"down_payment_percent,omitempty"`
	TransactionType     policy.TransactionType `yaml:"transaction_type" json:"transaction_type"`
	IsPrivateParty      bool                   `yaml:"is_private_party" json:"is_private_party"`

	// Equipment attributes. EquipmentAgeYears is derived upstream from
	// the model year.
	EquipmentCategory  string `yaml:"equipment_category" json:"equipment_category"`
	EquipmentType      string `yaml:"equipment_type" json:"equipment_type,omitempty"`
	EquipmentYear      int    `yaml:"equipment_year" json:"equipment_year"`
	EquipmentAgeYears  int    `yaml:"equipment_age_years" json:"equipment_age_years"`
	EquipmentMileage   *int   `yaml:"equipment_mileage" json:"equipment_mileage,omitempty"`
	EquipmentHours     *int   `yaml:"equipment_hours" json:"equipment_hours,omitempty"`
	EquipmentCondition string `yaml:"equipment_condition" json:"equipment_condition,omitempty"`
}

// CreditScore returns the score of the given type, or false when that
// bureau was not provided.
func (c *Context) CreditScore(scoreType policy.ScoreType) (int, bool) {
	var score *int
	switch policy.ScoreType(strings.ToLower(string(scoreType))) {
	case policy.ScoreFICO:
		score = c.FICOScore
	case policy.ScoreTransUnion:
		score = c.TransUnionScore
	case policy.ScoreExperian:
		score = c.ExperianScore
	case policy.ScoreEquifax:
		score = c.EquifaxScore
	case policy.ScorePayNet:
		score = c.PayNetScore
	case policy.ScorePaydex:
		score = c.PaydexScore
	}
	if score == nil {
		return 0, false
	}
	return *score, true
}

// IsTrucking reports whether the application's equipment is trucking-class,
// which activates conditional CDL requirements.
func (c *Context) IsTrucking() bool {
	return truckingCategories[strings.ToLower(c.EquipmentCategory)]
}

// IsStartup reports whether the business is under two years old.
func (c *Context) IsStartup() bool {
	return c.YearsInBusiness < 2.0
}

// DischargeYears converts a bankruptcy discharge date to fractional years
// before now, the derived form Context carries. Upstream context builders
// use this so every caller derives the value identically.
func DischargeYears(discharged, now time.Time) float64 {
	if discharged.After(now) {
		return 0
	}
	return now.Sub(discharged).Hours() / 24 / daysPerYear
}
