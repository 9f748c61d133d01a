package policy

import (
	"fmt"
	"strings"
)

// CriterionType identifies one kind of program criterion. The rule registry
// is keyed by these tags.
type CriterionType string

const (
	// CriterionCreditScore checks a personal or business bureau score
	// against a minimum.
	CriterionCreditScore CriterionType = "credit_score"

	// CriterionBusiness checks business requirements: time in business,
	// homeownership, CDL, industry experience, fleet size, revenue.
	CriterionBusiness CriterionType = "business"

	// CriterionCreditHistory checks derogatory credit events: bankruptcy,
	// judgements, tax liens, foreclosure, repossession.
	CriterionCreditHistory CriterionType = "credit_history"

	// CriterionEquipment checks equipment age, mileage, hours, and
	// category limits.
	CriterionEquipment CriterionType = "equipment"

	// CriterionTermMatrix looks up the maximum loan term from a range
	// table keyed by equipment mileage, age, or hours.
	CriterionTermMatrix CriterionType = "term_matrix"

	// CriterionGeographic checks state inclusion/exclusion lists.
	CriterionGeographic CriterionType = "geographic"

	// CriterionIndustry checks industry inclusion/exclusion lists.
	CriterionIndustry CriterionType = "industry"

	// CriterionTransaction checks transaction type and private-party
	// allowances.
	CriterionTransaction CriterionType = "transaction"

	// CriterionLoanAmount checks the requested amount against min/max
	// bounds.
	CriterionLoanAmount CriterionType = "loan_amount"
)

// ScoreType identifies which credit bureau score a credit score criterion
// reads from the evaluation context.
type ScoreType string

const (
	ScoreFICO       ScoreType = "fico"
	ScoreTransUnion ScoreType = "transunion"
	ScoreExperian   ScoreType = "experian"
	ScoreEquifax    ScoreType = "equifax"
	ScorePayNet     ScoreType = "paynet"
	ScorePaydex     ScoreType = "paydex"
)

// LookupField selects the equipment attribute a term matrix is keyed by.
type LookupField string

const (
	LookupMileage LookupField = "mileage"
	LookupAge     LookupField = "age"
	LookupHours   LookupField = "hours"
)

// CriterionConfig is implemented by every criterion configuration struct.
// The tag returned by CriterionType is used to look up the matching rule in
// the registry.
type CriterionConfig interface {
	CriterionType() CriterionType
}

// CreditScoreCriteria requires a bureau score at or above a minimum.
type CreditScoreCriteria struct {
	// Type selects which score to read (fico, transunion, experian,
	// equifax, paynet, paydex). Default: fico.
	Type ScoreType `yaml:"type" json:"type"`

	// Min is the minimum acceptable score.
	Min int `yaml:"min" json:"min"`
}

// CriterionType returns the registry tag for credit score criteria.
func (c *CreditScoreCriteria) CriterionType() CriterionType { return CriterionCreditScore }

// CDLRequirement expresses whether a commercial driver's license is
// required. It is either a plain boolean or "conditional", which makes the
// requirement apply only to trucking-class equipment.
type CDLRequirement string

const (
	CDLRequired    CDLRequirement = "true"
	CDLNotRequired CDLRequirement = "false"
	CDLConditional CDLRequirement = "conditional"
)

// UnmarshalYAML accepts either a YAML boolean or the string "conditional".
func (r *CDLRequirement) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		if b {
			*r = CDLRequired
		} else {
			*r = CDLNotRequired
		}
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		*r = CDLRequired
	case "false", "no":
		*r = CDLNotRequired
	case "conditional":
		*r = CDLConditional
	default:
		return fmt.Errorf("invalid cdl requirement %q (want true, false, or conditional)", s)
	}
	return nil
}

// BusinessCriteria describes business-side requirements for a program.
// Nil fields are not checked.
type BusinessCriteria struct {
	// MinTimeInBusinessYears is the minimum fractional years in business.
	MinTimeInBusinessYears *float64 `yaml:"min_time_in_business_years" json:"min_time_in_business_years,omitempty"`

	// RequiresHomeowner requires the guarantor to own a home.
	RequiresHomeowner *bool `yaml:"requires_homeowner" json:"requires_homeowner,omitempty"`

	// RequiresCDL requires a CDL; "conditional" applies only when the
	// equipment is trucking-class.
	RequiresCDL *CDLRequirement `yaml:"requires_cdl" json:"requires_cdl,omitempty"`

	// MinCDLYears is the minimum years the guarantor has held a CDL.
	MinCDLYears *int `yaml:"min_cdl_years" json:"min_cdl_years,omitempty"`

	// MinIndustryExperienceYears is the minimum years of industry
	// experience.
	MinIndustryExperienceYears *int `yaml:"min_industry_experience_years" json:"min_industry_experience_years,omitempty"`

	// MinFleetSize is the minimum fleet size (trucking programs).
	MinFleetSize *int `yaml:"min_fleet_size" json:"min_fleet_size,omitempty"`

	// MinAnnualRevenue is the minimum annual revenue in minor currency
	// units.
	MinAnnualRevenue *int64 `yaml:"min_annual_revenue" json:"min_annual_revenue,omitempty"`
}

// CriterionType returns the registry tag for business criteria.
func (c *BusinessCriteria) CriterionType() CriterionType { return CriterionBusiness }

// CreditHistoryCriteria describes derogatory credit event limits.
// Nil fields are not checked.
type CreditHistoryCriteria struct {
	// MaxBankruptcies is the maximum allowed bankruptcies (0 = none).
	MaxBankruptcies *int `yaml:"max_bankruptcies" json:"max_bankruptcies,omitempty"`

	// BankruptcyMinDischargeYears is the minimum years since a bankruptcy
	// was discharged.
	BankruptcyMinDischargeYears *float64 `yaml:"bankruptcy_min_discharge_years" json:"bankruptcy_min_discharge_years,omitempty"`

	// MaxOpenJudgements is the maximum open judgements (0 = none).
	MaxOpenJudgements *int `yaml:"max_open_judgements" json:"max_open_judgements,omitempty"`

	// MaxJudgementAmount caps the total open judgement amount in minor
	// currency units.
	MaxJudgementAmount *int64 `yaml:"max_judgement_amount" json:"max_judgement_amount,omitempty"`

	// AllowsForeclosure allows foreclosure history when true.
	AllowsForeclosure *bool `yaml:"allows_foreclosure" json:"allows_foreclosure,omitempty"`

	// AllowsRepossession allows repossession history when true.
	AllowsRepossession *bool `yaml:"allows_repossession" json:"allows_repossession,omitempty"`

	// MaxTaxLiens is the maximum tax liens (0 = none).
	MaxTaxLiens *int `yaml:"max_tax_liens" json:"max_tax_liens,omitempty"`

	// MaxTaxLienAmount caps the total tax lien amount in minor currency
	// units.
	MaxTaxLienAmount *int64 `yaml:"max_tax_lien_amount" json:"max_tax_lien_amount,omitempty"`
}

// CriterionType returns the registry tag for credit history criteria.
func (c *CreditHistoryCriteria) CriterionType() CriterionType { return CriterionCreditHistory }

// EquipmentCriteria describes equipment limits for a program.
type EquipmentCriteria struct {
	// MaxAgeYears is the maximum equipment age.
	MaxAgeYears *int `yaml:"max_age_years" json:"max_age_years,omitempty"`

	// MaxMileage is the maximum mileage for vehicles.
	MaxMileage *int `yaml:"max_mileage" json:"max_mileage,omitempty"`

	// MaxHours is the maximum operating hours for machinery.
	MaxHours *int `yaml:"max_hours" json:"max_hours,omitempty"`

	// AllowedCategories restricts equipment to the listed categories.
	AllowedCategories []string `yaml:"allowed_categories" json:"allowed_categories,omitempty"`

	// ExcludedCategories rejects equipment in the listed categories.
	ExcludedCategories []string `yaml:"excluded_categories" json:"excluded_categories,omitempty"`
}

// CriterionType returns the registry tag for equipment criteria.
func (c *EquipmentCriteria) CriterionType() CriterionType { return CriterionEquipment }

// TermMatrixEntry is one row of an equipment term matrix. The entry matches
// when the lookup value falls inside [Min, Max]; a nil Max is unbounded.
//
// MaxTermMonths of zero is a sentinel: the lender does not finance this risk
// tier at all, and RejectionReason carries the lender's wording for the
// decline.
type TermMatrixEntry struct {
	// Min is the inclusive lower bound of the range.
	Min int `yaml:"min" json:"min"`

	// Max is the inclusive upper bound; nil means unbounded.
	Max *int `yaml:"max" json:"max,omitempty"`

	// MaxTermMonths is the maximum financeable term for this range.
	// Zero means automatic rejection.
	MaxTermMonths int `yaml:"max_term_months" json:"max_term_months"`

	// RejectionReason is the message reported when MaxTermMonths is zero.
	RejectionReason string `yaml:"rejection_reason" json:"rejection_reason,omitempty"`
}

// Contains reports whether value falls inside the entry's range.
func (e *TermMatrixEntry) Contains(value int) bool {
	if value < e.Min {
		return false
	}
	return e.Max == nil || value <= *e.Max
}

// TermMatrixCriteria configures a term matrix lookup for a program.
type TermMatrixCriteria struct {
	// LookupField selects the equipment attribute the matrix is keyed by.
	// Default: mileage.
	LookupField LookupField `yaml:"lookup_field" json:"lookup_field"`

	// Entries is the ordered range table. Lookup returns the first entry
	// containing the value.
	Entries []TermMatrixEntry `yaml:"entries" json:"entries"`
}

// CriterionType returns the registry tag for term matrix criteria.
func (c *TermMatrixCriteria) CriterionType() CriterionType { return CriterionTermMatrix }

// GeographicCriteria describes state restrictions. State codes are compared
// case-insensitively (normalized to upper case).
type GeographicCriteria struct {
	// AllowedStates limits the program to the listed states when set.
	AllowedStates []string `yaml:"allowed_states" json:"allowed_states,omitempty"`

	// ExcludedStates rejects applications from the listed states.
	ExcludedStates []string `yaml:"excluded_states" json:"excluded_states,omitempty"`
}

// CriterionType returns the registry tag for geographic criteria.
func (c *GeographicCriteria) CriterionType() CriterionType { return CriterionGeographic }

// IndustryCriteria describes industry restrictions. Entries match against
// the application's industry code or name, case-insensitively.
type IndustryCriteria struct {
	// AllowedIndustries limits the program to the listed industries when
	// set.
	AllowedIndustries []string `yaml:"allowed_industries" json:"allowed_industries,omitempty"`

	// ExcludedIndustries rejects applications in the listed industries.
	ExcludedIndustries []string `yaml:"excluded_industries" json:"excluded_industries,omitempty"`
}

// CriterionType returns the registry tag for industry criteria.
func (c *IndustryCriteria) CriterionType() CriterionType { return CriterionIndustry }

// TransactionType identifies how the equipment is being acquired.
type TransactionType string

const (
	TransactionPurchase      TransactionType = "purchase"
	TransactionRefinance     TransactionType = "refinance"
	TransactionSaleLeaseback TransactionType = "sale_leaseback"
)

// TransactionCriteria describes transaction type allowances. Nil fields
// default to allowed.
type TransactionCriteria struct {
	// AllowsPurchase allows straight purchases. Default: true.
	AllowsPurchase *bool `yaml:"allows_purchase" json:"allows_purchase,omitempty"`

	// AllowsRefinance allows refinance transactions. Default: true.
	AllowsRefinance *bool `yaml:"allows_refinance" json:"allows_refinance,omitempty"`

	// AllowsSaleLeaseback allows sale-leaseback transactions.
	// Default: true.
	AllowsSaleLeaseback *bool `yaml:"allows_sale_leaseback" json:"allows_sale_leaseback,omitempty"`

	// AllowsPrivateParty allows private party (non-dealer) sales.
	// Default: true.
	AllowsPrivateParty *bool `yaml:"allows_private_party" json:"allows_private_party,omitempty"`
}

// CriterionType returns the registry tag for transaction criteria.
func (c *TransactionCriteria) CriterionType() CriterionType { return CriterionTransaction }

// LoanAmountCriteria bounds the requested amount, in minor currency units.
type LoanAmountCriteria struct {
	// MinAmount is the minimum loan amount; nil means no floor.
	MinAmount *int64 `yaml:"min_amount" json:"min_amount,omitempty"`

	// MaxAmount is the maximum loan amount; nil means no ceiling.
	MaxAmount *int64 `yaml:"max_amount" json:"max_amount,omitempty"`
}

// CriterionType returns the registry tag for loan amount criteria.
func (c *LoanAmountCriteria) CriterionType() CriterionType { return CriterionLoanAmount }

// CriteriaSet holds all criteria configured for a program. Nil members are
// not evaluated.
type CriteriaSet struct {
	CreditScore   *CreditScoreCriteria   `yaml:"credit_score" json:"credit_score,omitempty"`
	Business      *BusinessCriteria      `yaml:"business" json:"business,omitempty"`
	CreditHistory *CreditHistoryCriteria `yaml:"credit_history" json:"credit_history,omitempty"`
	Equipment     *EquipmentCriteria     `yaml:"equipment" json:"equipment,omitempty"`
	TermMatrix    *TermMatrixCriteria    `yaml:"term_matrix" json:"term_matrix,omitempty"`
	Geographic    *GeographicCriteria    `yaml:"geographic" json:"geographic,omitempty"`
	Industry      *IndustryCriteria      `yaml:"industry" json:"industry,omitempty"`
	Transaction   *TransactionCriteria   `yaml:"transaction" json:"transaction,omitempty"`
	LoanAmount    *LoanAmountCriteria    `yaml:"loan_amount" json:"loan_amount,omitempty"`
}

// Configured returns the non-nil criterion configurations in a fixed,
// deterministic order. Evaluation and validation both iterate this list so
// results are stable across runs.
func (s *CriteriaSet) Configured() []CriterionConfig {
	var configs []CriterionConfig
	if s.CreditScore != nil {
		configs = append(configs, s.CreditScore)
	}
	if s.Business != nil {
		configs = append(configs, s.Business)
	}
	if s.CreditHistory != nil {
		configs = append(configs, s.CreditHistory)
	}
	if s.Equipment != nil {
		configs = append(configs, s.Equipment)
	}
	if s.TermMatrix != nil {
		configs = append(configs, s.TermMatrix)
	}
	if s.Geographic != nil {
		configs = append(configs, s.Geographic)
	}
	if s.Industry != nil {
		configs = append(configs, s.Industry)
	}
	if s.Transaction != nil {
		configs = append(configs, s.Transaction)
	}
	if s.LoanAmount != nil {
		configs = append(configs, s.LoanAmount)
	}
	return configs
}

// IsEmpty reports whether no criteria are configured.
func (s *CriteriaSet) IsEmpty() bool {
	return len(s.Configured()) == 0
}

// Program is one lending tier offered by a lender.
type Program struct {
	// ID is the unique program identifier within the lender.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable program name.
	Name string `yaml:"name" json:"name"`

	// Description is optional display text.
	Description string `yaml:"description" json:"description,omitempty"`

	// IsAppOnly marks programs approvable from application data alone,
	// without full financial documentation.
	IsAppOnly bool `yaml:"is_app_only" json:"is_app_only"`

	// MinAmount is the program's minimum loan amount in minor currency
	// units; nil means no floor. Checked before any criteria.
	MinAmount *int64 `yaml:"min_amount" json:"min_amount,omitempty"`

	// MaxAmount is the program's maximum loan amount in minor currency
	// units; nil means no ceiling. Checked before any criteria.
	MaxAmount *int64 `yaml:"max_amount" json:"max_amount,omitempty"`

	// MaxTermMonths is the program's maximum term, independent of any
	// term matrix.
	MaxTermMonths *int `yaml:"max_term_months" json:"max_term_months,omitempty"`

	// Criteria is the program's criteria set.
	Criteria CriteriaSet `yaml:"criteria" json:"criteria"`
}

// EquipmentTermMatrix is a lender-wide term matrix for one equipment
// category. Programs without their own term_matrix criterion inherit the
// matrix matching the application's equipment category.
type EquipmentTermMatrix struct {
	// Category is the equipment category this matrix applies to,
	// compared case-insensitively.
	Category string `yaml:"category" json:"category"`

	// LookupField selects the attribute the matrix is keyed by.
	// Default: mileage.
	LookupField LookupField `yaml:"lookup_field" json:"lookup_field"`

	// Entries is the ordered range table.
	Entries []TermMatrixEntry `yaml:"entries" json:"entries"`
}

// Restrictions are lender-wide hard gates evaluated once per lender, before
// any program. A failed restriction rejects the lender outright.
type Restrictions struct {
	Geographic  *GeographicCriteria  `yaml:"geographic" json:"geographic,omitempty"`
	Industry    *IndustryCriteria    `yaml:"industry" json:"industry,omitempty"`
	Transaction *TransactionCriteria `yaml:"transaction" json:"transaction,omitempty"`
	Equipment   *EquipmentCriteria   `yaml:"equipment" json:"equipment,omitempty"`
}

// LenderPolicy is a complete, validated lender configuration.
type LenderPolicy struct {
	// ID is the unique lender identifier (matches the YAML filename).
	ID string `yaml:"id" json:"id"`

	// Name is the lender display name.
	Name string `yaml:"name" json:"name"`

	// Version is the policy version number, incremented on change.
	Version int `yaml:"version" json:"version"`

	// Description is optional display text.
	Description string `yaml:"description" json:"description,omitempty"`

	// ContactEmail is the submission contact for this lender.
	ContactEmail string `yaml:"contact_email" json:"contact_email,omitempty"`

	// Programs is the ordered list of lending programs. Order matters:
	// ties on fit score resolve to the first configured program.
	Programs []Program `yaml:"programs" json:"programs"`

	// Matrices are per-category equipment term matrices.
	Matrices []EquipmentTermMatrix `yaml:"equipment_matrices" json:"equipment_matrices,omitempty"`

	// Restrictions are lender-wide hard gates.
	Restrictions *Restrictions `yaml:"restrictions" json:"restrictions,omitempty"`

	// Weights maps criterion types to integer scoring weights. Criteria
	// absent from the map use the engine's default weight.
	Weights map[CriterionType]int `yaml:"scoring_weights" json:"scoring_weights,omitempty"`
}

// MatrixFor returns the lender's term matrix for the given equipment
// category, or nil if none is configured. Categories are compared
// case-insensitively.
func (p *LenderPolicy) MatrixFor(category string) *EquipmentTermMatrix {
	if category == "" {
		return nil
	}
	for i := range p.Matrices {
		if strings.EqualFold(p.Matrices[i].Category, category) {
			return &p.Matrices[i]
		}
	}
	return nil
}

// Program returns the program with the given id, or nil if not found.
func (p *LenderPolicy) Program(id string) *Program {
	for i := range p.Programs {
		if p.Programs[i].ID == id {
			return &p.Programs[i]
		}
	}
	return nil
}
