package rules

import (
	"fmt"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// Point allotments for the business sub-checks. The pass score is the share
// of points earned across the sub-checks the program actually configured.
const (
	pointsTimeInBusiness     = 25.0
	pointsHomeowner          = 15.0
	pointsCDL                = 10.0
	pointsCDLYears           = 15.0
	pointsIndustryExperience = 15.0
	pointsFleetSize          = 10.0
	pointsAnnualRevenue      = 10.0
)

// BusinessRule checks business requirements: time in business,
// homeownership, CDL, industry experience, fleet size, and revenue.
//
// Every configured sub-check is a hard gate: one failure fails the whole
// criterion, with the first failure as the primary message and all failures
// retained in the result details. The pass score is the fraction of
// configured points earned, so an applicant who barely clears every bar
// scores lower than one with comfortable margins.
type BusinessRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *BusinessRule) Type() policy.CriterionType { return policy.CriterionBusiness }

// Evaluate runs the configured sub-checks.
func (r *BusinessRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.BusinessCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	var (
		failures  []string
		maxPoints float64
		earned    float64
	)

	if cfg.MinTimeInBusinessYears != nil {
		maxPoints += pointsTimeInBusiness
		min := *cfg.MinTimeInBusinessYears
		if appCtx.YearsInBusiness < min {
			failures = append(failures, fmt.Sprintf(
				"time in business %.1f years below minimum %.1f", appCtx.YearsInBusiness, min))
		} else {
			pts := (appCtx.YearsInBusiness - min) * 5
			if pts > pointsTimeInBusiness {
				pts = pointsTimeInBusiness
			}
			earned += pts
		}
	}

	if cfg.RequiresHomeowner != nil && *cfg.RequiresHomeowner {
		maxPoints += pointsHomeowner
		if !appCtx.IsHomeowner {
			failures = append(failures, "homeownership required")
		} else {
			earned += pointsHomeowner
		}
	}

	if cfg.RequiresCDL != nil && cdlApplies(*cfg.RequiresCDL, appCtx) {
		maxPoints += pointsCDL
		if !appCtx.HasCDL {
			failures = append(failures, "CDL required")
		} else {
			earned += pointsCDL
		}
	}

	if cfg.MinCDLYears != nil {
		maxPoints += pointsCDLYears
		switch {
		case appCtx.CDLYears == nil:
			failures = append(failures, fmt.Sprintf(
				"minimum %d years CDL experience required, none reported", *cfg.MinCDLYears))
		case *appCtx.CDLYears < *cfg.MinCDLYears:
			failures = append(failures, fmt.Sprintf(
				"CDL experience %d years below minimum %d", *appCtx.CDLYears, *cfg.MinCDLYears))
		default:
			earned += pointsCDLYears
		}
	}

	if cfg.MinIndustryExperienceYears != nil {
		maxPoints += pointsIndustryExperience
		switch {
		case appCtx.IndustryExperienceYears == nil:
			failures = append(failures, fmt.Sprintf(
				"minimum %d years industry experience required, none reported",
				*cfg.MinIndustryExperienceYears))
		case *appCtx.IndustryExperienceYears < *cfg.MinIndustryExperienceYears:
			failures = append(failures, fmt.Sprintf(
				"industry experience %d years below minimum %d",
				*appCtx.IndustryExperienceYears, *cfg.MinIndustryExperienceYears))
		default:
			earned += pointsIndustryExperience
		}
	}

	if cfg.MinFleetSize != nil {
		maxPoints += pointsFleetSize
		switch {
		case appCtx.FleetSize == nil:
			failures = append(failures, fmt.Sprintf(
				"minimum fleet size %d required, none reported", *cfg.MinFleetSize))
		case *appCtx.FleetSize < *cfg.MinFleetSize:
			failures = append(failures, fmt.Sprintf(
				"fleet size %d below minimum %d", *appCtx.FleetSize, *cfg.MinFleetSize))
		default:
			earned += pointsFleetSize
		}
	}

	if cfg.MinAnnualRevenue != nil {
		maxPoints += pointsAnnualRevenue
		switch {
		case appCtx.AnnualRevenue == nil:
			failures = append(failures, fmt.Sprintf(
				"minimum annual revenue %d required, none reported", *cfg.MinAnnualRevenue))
		case *appCtx.AnnualRevenue < *cfg.MinAnnualRevenue:
			failures = append(failures, fmt.Sprintf(
				"annual revenue %d below minimum %d", *appCtx.AnnualRevenue, *cfg.MinAnnualRevenue))
		default:
			earned += pointsAnnualRevenue
		}
	}

	if len(failures) > 0 {
		res := match.Fail(r.Type(), failures[0])
		res.Details = map[string]any{"failures": failures}
		return res, nil
	}

	score := 100.0
	if maxPoints > 0 {
		score = earned / maxPoints * 100
	}
	return match.Pass(r.Type(), score, "business requirements met"), nil
}

// cdlApplies reports whether a CDL requirement is active for this
// application. Conditional requirements only bind trucking-class equipment.
func cdlApplies(req policy.CDLRequirement, appCtx *match.Context) bool {
	switch req {
	case policy.CDLRequired:
		return true
	case policy.CDLConditional:
		return appCtx.IsTrucking()
	default:
		return false
	}
}
