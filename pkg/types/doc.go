// Package types defines the core interfaces and value types shared across backupnotify.
// It provides abstractions for job outcomes and the notifiers that deliver them.
//
// Key components:
//   - Status: Enum of job results (success, warning, failure).
//   - Outcome: Status plus the trigger and label of the job that produced it.
//   - Notifier: Interface for services delivering an Outcome.
//   - ConvertibleNotifier: Interface for notifiers that can be expressed as a shoutrrr URL.
//
// Usage example:
//
//	status, err := types.ParseStatus("warning")
//	outcome := types.Outcome{Status: status, Trigger: "db_backup", Label: "Database backup"}
//	err = notifier.Notify(ctx, outcome)
//
// The package has no dependencies on other backupnotify packages.
package types
