// Package engine evaluates loan applications against lender policies and
// produces ranked matches.
//
// Evaluation runs in two phases per lender: lender-wide restrictions
// (state, industry, transaction, equipment gates) short-circuit before any
// program runs, then every program's criteria are evaluated through the
// injected rule registry. Lenders are evaluated concurrently, one goroutine
// each, with panics and configuration errors isolated to the lender that
// raised them.
//
// Scoring: each passing rule contributes score x weight/100 to the
// program's fit, weights come from the policy (default 10), and the fit is
// clamped to [0, 100]. Only eligible lenders are ranked; ties resolve to
// the lender configured first.
package engine
