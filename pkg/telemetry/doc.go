// Package telemetry contains observability support for Atlas: structured
// logging setup and health probe endpoints. Prometheus metrics live next to
// the code they instrument (see pkg/match/engine).
package telemetry
