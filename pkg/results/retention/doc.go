// Package retention enforces match record retention: age-based and
// count-based pruning, optionally on a cron schedule.
package retention
