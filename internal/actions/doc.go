// Package actions provides the core flow of backupnotify: running a backup job and reporting its outcome.
//
// Key components:
//   - RunJobWithNotification: Runs a job, sends its outcome, and returns a metric for the run.
//   - Notify: Sends one outcome, bounded by an optional delivery deadline.
//
// Usage example:
//
//	metric := actions.RunJobWithNotification(ctx, j, notifier, 0)
//	metrics.Default().RegisterJob(metric)
//
// Delivery failures are logged, never returned; a failed notification must not turn into a failed job.
package actions
