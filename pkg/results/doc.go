// Package results records match evaluations for audit and analysis: which
// lenders an application was evaluated against, which were eligible, and
// why the rest were rejected.
//
// Records are written asynchronously through a buffered Recorder so the
// matching path never blocks on storage. Storage backends live in
// pkg/results/storage (in-memory and SQLite) and retention enforcement in
// pkg/results/retention.
package results
