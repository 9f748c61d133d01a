// Package policy defines the strongly-typed lender policy model and the
// pipeline that turns declarative YAML policy files into validated
// LenderPolicy values.
//
// A lender policy describes everything the matching engine needs to evaluate
// an application against one lender: the lender's programs and their
// criteria, lender-wide restrictions, per-category equipment term matrices,
// and the scoring weights used to normalize fit scores.
//
// Criteria are modeled as a tagged union: one configuration struct per
// criterion type, each reporting its CriterionType tag. The rule registry in
// pkg/match/rules is keyed by the same tags, so adding a criterion type means
// adding one config struct here and one rule there.
//
// The package also provides a thread-safe Store for the active policy set, a
// file Watcher that hot-reloads the store when policy files change, and a
// SQLite-backed snapshot of the last validated policy set for startup
// fallback.
package policy
