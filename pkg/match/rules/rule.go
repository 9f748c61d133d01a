package rules

import (
	"errors"
	"fmt"
	"sort"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// ErrUnknownCriterion is returned when a policy references a criterion type
// the registry has no rule for.
var ErrUnknownCriterion = errors.New("unknown criterion type")

// Rule evaluates one criterion type against an application context.
//
// Evaluate returns an error only for configuration problems (a config of
// the wrong concrete type); application data that fails the criterion is a
// normal failed RuleResult, never an error.
type Rule interface {
	// Type returns the criterion type this rule evaluates.
	Type() policy.CriterionType

	// Evaluate checks the application against the given criterion
	// configuration.
	Evaluate(appCtx *match.Context, config policy.CriterionConfig) (match.RuleResult, error)
}

// Registry resolves criterion types to rules. It is immutable after
// construction and safe for concurrent use without locking.
type Registry struct {
	rules map[policy.CriterionType]Rule
}

// NewRegistry builds a registry containing the built-in rules plus any
// extras. An extra rule with a built-in's type replaces the built-in.
func NewRegistry(extras ...Rule) *Registry {
	builtin := []Rule{
		&CreditScoreRule{},
		&BusinessRule{},
		&CreditHistoryRule{},
		&EquipmentRule{},
		&TermMatrixRule{},
		&GeographicRule{},
		&IndustryRule{},
		&TransactionRule{},
		&LoanAmountRule{},
	}

	m := make(map[policy.CriterionType]Rule, len(builtin)+len(extras))
	for _, r := range builtin {
		m[r.Type()] = r
	}
	for _, r := range extras {
		m[r.Type()] = r
	}
	return &Registry{rules: m}
}

// Lookup returns the rule for the given criterion type.
func (r *Registry) Lookup(ct policy.CriterionType) (Rule, error) {
	rule, ok := r.rules[ct]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, ct)
	}
	return rule, nil
}

// Has reports whether a rule is registered for the given criterion type.
// It satisfies the policy loader's type checker.
func (r *Registry) Has(ct policy.CriterionType) bool {
	_, ok := r.rules[ct]
	return ok
}

// Types returns the registered criterion types in sorted order.
func (r *Registry) Types() []policy.CriterionType {
	out := make([]policy.CriterionType, 0, len(r.rules))
	for ct := range r.rules {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// wrongConfig builds the error returned when a rule receives a config of
// the wrong concrete type. This indicates a wiring bug, not bad policy data.
func wrongConfig(ct policy.CriterionType, config policy.CriterionConfig) error {
	return fmt.Errorf("rule %q: unexpected config type %T", ct, config)
}
