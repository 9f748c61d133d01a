// Package rules implements the criterion rules the matching engine runs
// against an application: one rule per criterion type (credit score,
// business, credit history, equipment, term matrix, geographic, industry,
// transaction, loan amount).
//
// Rules are stateless and safe for concurrent use. They are resolved through
// an immutable Registry built once at startup; the engine receives the
// registry by injection, so alternate rule sets can be swapped in for tests
// without package-level state.
package rules
