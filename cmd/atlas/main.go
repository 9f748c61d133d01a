// Atlas is a lender matching engine for equipment finance applications.
//
// It evaluates loan applications against YAML-defined lender policies and
// produces ranked matches with per-criterion detail:
//   - Per-program criteria evaluation (credit, business, equipment, terms)
//   - Lender-wide restriction gates
//   - Weighted fit scoring and ranking
//   - Match result recording for audit
//
// Usage:
//
//	# Validate a policy directory
//	atlas validate --policies ./policies
//
//	# Match an application against the policy set
//	atlas match --policies ./policies --application app.yaml
//
//	# List loaded lenders and their programs
//	atlas lenders --policies ./policies
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
