package rules

import (
	"fmt"
	"strings"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// EquipmentRule checks equipment category, age, mileage, and hour limits.
//
// The pass score discounts older collateral: each year of age relative to
// the configured maximum costs up to 20 points, floored at 60. Programs
// without an age limit score 100 on pass.
type EquipmentRule struct{}

// Type returns the criterion type this rule evaluates.
func (r *EquipmentRule) Type() policy.CriterionType { return policy.CriterionEquipment }

// Evaluate runs the configured equipment checks.
func (r *EquipmentRule) Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error) {
	cfg, ok := config.(*policy.EquipmentCriteria)
	if !ok {
		return match.RuleResult{}, wrongConfig(r.Type(), config)
	}

	category := strings.ToLower(appCtx.EquipmentCategory)

	if len(cfg.ExcludedCategories) > 0 && containsFold(cfg.ExcludedCategories, category) {
		return match.Fail(r.Type(), fmt.Sprintf(
			"equipment category %q not accepted", appCtx.EquipmentCategory)), nil
	}
	if len(cfg.AllowedCategories) > 0 && !containsFold(cfg.AllowedCategories, category) {
		return match.Fail(r.Type(), fmt.Sprintf(
			"equipment category %q not in accepted categories", appCtx.EquipmentCategory)), nil
	}

	if cfg.MaxAgeYears != nil && appCtx.EquipmentAgeYears > *cfg.MaxAgeYears {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"equipment age %d years exceeds maximum %d", appCtx.EquipmentAgeYears, *cfg.MaxAgeYears))
		res.RequiredValue = fmt.Sprintf("%d years", *cfg.MaxAgeYears)
		res.ActualValue = fmt.Sprintf("%d years", appCtx.EquipmentAgeYears)
		return res, nil
	}

	if cfg.MaxMileage != nil && appCtx.EquipmentMileage != nil &&
		*appCtx.EquipmentMileage > *cfg.MaxMileage {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"equipment mileage %d exceeds maximum %d", *appCtx.EquipmentMileage, *cfg.MaxMileage))
		res.RequiredValue = fmt.Sprintf("%d", *cfg.MaxMileage)
		res.ActualValue = fmt.Sprintf("%d", *appCtx.EquipmentMileage)
		return res, nil
	}

	if cfg.MaxHours != nil && appCtx.EquipmentHours != nil &&
		*appCtx.EquipmentHours > *cfg.MaxHours {
		res := match.Fail(r.Type(), fmt.Sprintf(
			"equipment hours %d exceeds maximum %d", *appCtx.EquipmentHours, *cfg.MaxHours))
		res.RequiredValue = fmt.Sprintf("%d", *cfg.MaxHours)
		res.ActualValue = fmt.Sprintf("%d", *appCtx.EquipmentHours)
		return res, nil
	}

	score := 100.0
	if cfg.MaxAgeYears != nil && *cfg.MaxAgeYears > 0 {
		ageRatio := float64(appCtx.EquipmentAgeYears) / float64(*cfg.MaxAgeYears)
		score = 100 - ageRatio*20
		if score < 60 {
			score = 60
		}
	}
	return match.Pass(r.Type(), score, "equipment within limits"), nil
}

// containsFold reports whether list contains value, comparing
// case-insensitively.
func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
