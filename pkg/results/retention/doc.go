// Package retention enforces retention policies on stored results.
//
// A Pruner deletes finished runs older than the configured retention
// period and trims tick records when the total exceeds a cap. A
// Scheduler runs the pruner on a cron schedule so long-lived deployments
// keep their results database bounded without manual intervention.
package retention
