// Package metrics provides tracking and exposure of backupnotify job and delivery metrics.
// It integrates with Prometheus to monitor job outcomes and notification delivery.
//
// Key components:
//   - Metrics: Holds the collectors and processes queued job metrics.
//   - Metric: Summary of a single job run.
//   - Result: Terminal result of a notification (delivered, skipped, exhausted, cancelled).
//
// Usage example:
//
//	m := metrics.Default()
//	m.RecordAttempt()
//	m.RecordNotification(types.StatusSuccess, metrics.ResultDelivered)
//	m.RegisterJob(&metrics.Metric{Status: types.StatusFailure, Duration: time.Minute})
//
// All recording methods are safe to call on a nil *Metrics, which records nothing.
package metrics
