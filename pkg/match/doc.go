// Package match defines the data model shared by the matching engine: the
// immutable application snapshot every rule reads (Context), the per-rule
// outcome (RuleResult), and the program/lender/batch result types the
// engine produces.
//
// Every type here is created fresh per evaluation and never mutated after
// construction; none holds a reference back to persisted records. The
// evaluators themselves live in pkg/match/engine and the criterion rules in
// pkg/match/rules.
package match
