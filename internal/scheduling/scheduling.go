// Package scheduling runs backup jobs periodically on a cron schedule.
// It serializes runs with a lock channel and shuts down gracefully on context cancellation.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
)

// jobWaitTimeout bounds how long shutdown waits for a running job.
const jobWaitTimeout = 60 * time.Second

// WaitForRunningJob blocks until the running job, if any, releases the lock or jobWaitTimeout passes.
// The lock is kept afterwards so no further run can start during shutdown.
//
// Parameters:
//   - lock: The channel used to synchronize runs, ensuring only one runs at a time.
func WaitForRunningJob(lock chan bool) {
	logrus.Debug("Checking lock status before shutdown.")

	select {
	case <-lock:
		logrus.Debug("Lock acquired, no job running.")
	case <-time.After(jobWaitTimeout):
		logrus.Warn("Timeout waiting for running job to finish, proceeding with shutdown.")
	}

	logrus.Debug("Lock check completed.")
}

// RunJobsOnSchedule runs the job according to the cron specification until interrupted.
//
// A tick that finds the previous run still active is skipped and counted as skipped. The function
// returns after ctx is cancelled, once the running job (if any) has finished or jobWaitTimeout passed.
// Runs receive a context carrying ctx's values but not its cancellation, so a shutdown lets the
// running backup and its notification complete.
//
// Parameters:
//   - ctx: The context controlling the scheduler's lifecycle, typically cancelled on SIGINT or SIGTERM.
//   - scheduleSpec: Cron expression with a leading seconds field, or a descriptor such as "@every 1h".
//   - lock: A channel ensuring only one run at a time, or nil to create a new one.
//   - runJob: Runs the job once and returns its metric.
//   - writeStartupMessage: Called once with the first scheduled run time before the scheduler starts.
//
// Returns:
//   - error: An error if the cron specification is invalid, nil on shutdown.
func RunJobsOnSchedule(
	ctx context.Context,
	scheduleSpec string,
	lock chan bool,
	runJob func(context.Context) *metrics.Metric,
	writeStartupMessage func(nextRun time.Time),
) error {
	if lock == nil {
		lock = make(chan bool, 1)
		lock <- true
	}

	scheduler := cron.New()
	jobCtx := context.WithoutCancel(ctx)

	jobFunc := func() {
		select {
		case v := <-lock:
			defer func() { lock <- v }()

			metric := runJob(jobCtx)
			metrics.Default().RegisterJob(metric)

			if metric != nil {
				logrus.WithFields(logrus.Fields{
					"status":   metric.Status.String(),
					"notified": metric.Notified,
				}).Debug("Scheduled job completed")
			}
		default:
			metrics.Default().RegisterJob(nil)
			logrus.Debug("Skipped run, another job is still running.")
		}

		nextRuns := scheduler.Entries()
		if len(nextRuns) > 0 {
			logrus.Debug("Scheduled next run: " + nextRuns[0].Next.String())
		}
	}

	if err := scheduler.AddFunc(scheduleSpec, jobFunc); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	var nextRun time.Time
	if entries := scheduler.Entries(); len(entries) > 0 {
		nextRun = entries[0].Schedule.Next(time.Now())
	}

	if writeStartupMessage != nil {
		writeStartupMessage(nextRun)
	}

	scheduler.Start()

	<-ctx.Done()
	logrus.Debug("Context canceled, stopping scheduler...")

	scheduler.Stop()
	logrus.Debug("Waiting for running job to be finished...")

	WaitForRunningJob(lock)

	logrus.Debug("Scheduler stopped and job completed.")

	return nil
}
