package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/backupnotify/internal/actions"
	apiPkg "github.com/nicholas-fedor/backupnotify/internal/api"
	"github.com/nicholas-fedor/backupnotify/internal/flags"
	"github.com/nicholas-fedor/backupnotify/internal/logging"
	"github.com/nicholas-fedor/backupnotify/internal/meta"
	"github.com/nicholas-fedor/backupnotify/internal/scheduling"
	"github.com/nicholas-fedor/backupnotify/pkg/job"
	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// Errors for the run command.
var (
	// errJobFailed indicates a single run ended with a failure status.
	errJobFailed = errors.New("backup job failed")
	// errNegativeJobTimeout indicates a negative --job-timeout.
	errNegativeJobTimeout = errors.New("job timeout must not be negative")
)

// newRunCommand creates the run subcommand, which executes a backup command and reports its outcome.
func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a backup command and notify its outcome",
		Long: "Runs the command once, or on the cron schedule given by --schedule, and notifies the outcome.\n" +
			"Exit code 0 is a success, codes listed in --warning-exit-codes are warnings, anything else is a failure.\n" +
			"With --schedule and --http-api-token set, the notify and metrics API is served alongside the scheduler.",
		Args: cobra.MinimumNArgs(1),
		RunE: runJob,
	}

	flags.RegisterJobFlags(cmd)
	// Flags after the first positional argument belong to the job command.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// runJob runs the job once or on a schedule.
func runJob(cmd *cobra.Command, args []string) error {
	jobFlags, err := flags.ReadJobFlags(cmd)
	if err != nil {
		return err
	}

	if jobFlags.Timeout < 0 {
		return fmt.Errorf("%w: %s", errNegativeJobTimeout, jobFlags.Timeout)
	}

	notifier, err := newNotifier(cmd)
	if err != nil {
		return err
	}

	backupJob := job.Job{
		Trigger:          jobFlags.Trigger,
		Label:            jobFlags.Label,
		Command:          args,
		WarningExitCodes: jobFlags.WarningExitCodes,
		Timeout:          jobFlags.Timeout,
	}
	deadline := notificationDeadline(cmd)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	runOnce := func(ctx context.Context) *metrics.Metric {
		return actions.RunJobWithNotification(ctx, backupJob, notifier, deadline)
	}

	if jobFlags.Schedule == "" {
		metric := runOnce(ctx)
		metrics.Default().RegisterJob(metric)

		if metric.Status == types.StatusFailure {
			return errJobFailed
		}

		return nil
	}

	logrus.WithField("schedule", jobFlags.Schedule).Debug("Running job on schedule")

	apiAddr, err := startJobAPI(ctx, cmd, notifier)
	if err != nil {
		return err
	}

	return scheduling.RunJobsOnSchedule(ctx, jobFlags.Schedule, nil, runOnce, func(nextRun time.Time) {
		logging.WriteStartupMessage(cmd, nextRun, notifier, meta.Version, apiAddr)
	})
}

// startJobAPI serves the notify and metrics endpoints in the background while jobs run on a schedule.
// Nothing is started when no API token is configured.
//
// Returns:
//   - string: Listen address, empty when the API is disabled.
//   - error: Non-nil if the API could not be started.
func startJobAPI(ctx context.Context, cmd *cobra.Command, notifier *notifications.TelegramNotifier) (string, error) {
	opts := apiOptions(cmd)
	if opts.Token == "" {
		return "", nil
	}

	httpAPI := apiPkg.Setup(opts, notifier, notifier.Config().Enabled)
	if err := httpAPI.Start(ctx, false); err != nil {
		return "", fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return httpAPI.Addr, nil
}
