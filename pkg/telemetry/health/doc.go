// Package health provides liveness and readiness probe endpoints for the
// matching service. Readiness aggregates named component checks (policy
// store loaded, results storage reachable) so orchestrators stop routing
// to an instance that lost its policy set.
package health
