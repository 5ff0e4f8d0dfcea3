package actions

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/backupnotify/pkg/job"
	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// errNoNotifier indicates Notify was called without a notifier.
var errNoNotifier = errors.New("no notifier configured")

// RunJobWithNotification runs a job and sends a notification about its outcome.
//
// Parameters:
//   - ctx: Cancels the job and the delivery.
//   - j: Job to run.
//   - notifier: Receives the outcome; nil skips notification with a warning.
//   - deadline: Upper bound for the delivery, 0 for none.
//
// Returns:
//   - *metrics.Metric: Status and duration of the run, and whether the outcome was handled by the notifier.
func RunJobWithNotification(
	ctx context.Context,
	j job.Job,
	notifier types.Notifier,
	deadline time.Duration,
) *metrics.Metric {
	result := j.Run(ctx)

	clog := logrus.WithFields(logrus.Fields{
		"label":     j.Label,
		"trigger":   j.Trigger,
		"status":    result.Outcome.Status.String(),
		"exit_code": result.ExitCode,
	})

	if result.Err != nil {
		clog.WithError(result.Err).Warn("Job did not succeed")
	}

	metric := &metrics.Metric{
		Status:   result.Outcome.Status,
		Duration: result.Duration,
	}

	if err := Notify(ctx, notifier, result.Outcome, deadline); err != nil {
		clog.WithError(err).Error("Failed to notify job outcome")

		return metric
	}

	metric.Notified = true

	return metric
}

// Notify sends one outcome through the notifier.
//
// Parameters:
//   - ctx: Cancels the delivery.
//   - notifier: Target notifier.
//   - outcome: Outcome to send.
//   - deadline: Upper bound for the delivery including retries, 0 for none.
//
// Returns:
//   - error: The notifier's terminal error, or errNoNotifier.
func Notify(ctx context.Context, notifier types.Notifier, outcome types.Outcome, deadline time.Duration) error {
	if notifier == nil {
		logrus.Warn("Notifier is nil, skipping notification")

		return errNoNotifier
	}

	if deadline > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	logrus.WithFields(logrus.Fields{
		"notifier": notifier.GetName(),
		"status":   outcome.Status.String(),
	}).Debug("Notifying outcome")

	return notifier.Notify(ctx, outcome)
}
