// Package logging configures the process-wide slog logger from telemetry
// configuration. Components obtain their loggers via
// slog.Default().With("component", ...), so swapping the default handler
// here changes output everywhere.
package logging
