// Package job runs a backup command and classifies its result as a job outcome.
// This file implements the command runner.
package job

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// outputWaitDelay bounds how long Run waits for output after the command exits or is killed.
// Background children holding the output pipes open are abandoned after this delay.
const outputWaitDelay = 5 * time.Second

// noExitCode is reported when the command did not exit normally.
const noExitCode = -1

// Errors reported in Result.Err.
var (
	// ErrEmptyCommand indicates the job has no command to run.
	ErrEmptyCommand = errors.New("job command is empty")
	// ErrTimedOut indicates the command exceeded Job.Timeout and was killed.
	ErrTimedOut = errors.New("job timed out")
	// errStartCommand indicates the command could not be started.
	errStartCommand = errors.New("failed to start job command")
	// errCommandFailed indicates the command exited unsuccessfully.
	errCommandFailed = errors.New("job command failed")
)

// Job describes one backup command and how its result is reported.
type Job struct {
	Trigger          string        // What started the job, reported in the notification.
	Label            string        // Human readable job name, reported in the notification.
	Command          []string      // Executable and arguments.
	WarningExitCodes []int         // Non-zero exit codes reported as a warning.
	Timeout          time.Duration // Maximum run time, 0 for none.
}

// Result is the classified result of one run.
type Result struct {
	Outcome  types.Outcome
	ExitCode int           // Exit code, or -1 when the command did not exit normally.
	Duration time.Duration // Wall time from start to exit.
	Err      error         // Why the run was not a success; nil for StatusSuccess.
}

// Run executes the command and classifies its exit.
//
// Parameters:
//   - ctx: Kills the command when cancelled.
//
// Returns:
//   - Result: Outcome and exit details. Run never panics on command errors; they end up in Result.Err.
func (j Job) Run(ctx context.Context) Result {
	result := Result{
		Outcome:  types.Outcome{Status: types.StatusFailure, Trigger: j.Trigger, Label: j.Label},
		ExitCode: noExitCode,
	}

	if len(j.Command) == 0 {
		result.Err = ErrEmptyCommand

		return result
	}

	clog := logrus.WithFields(logrus.Fields{
		"label":   j.Label,
		"trigger": j.Trigger,
		"command": j.Command[0],
	})

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, j.Command[0], j.Command[1:]...) //nolint:gosec
	cmd.WaitDelay = outputWaitDelay

	stdout := clog.WithField("stream", "stdout").WriterLevel(logrus.DebugLevel)
	defer stdout.Close()

	stderr := clog.WithField("stream", "stderr").WriterLevel(logrus.DebugLevel)
	defer stderr.Close()

	cmd.Stdout = stdout
	cmd.Stderr = stderr

	clog.Info("Starting job")

	start := time.Now()

	if err := cmd.Start(); err != nil {
		result.Err = fmt.Errorf("%w: %w", errStartCommand, err)
		clog.WithError(result.Err).Error("Job could not be started")

		return result
	}

	err := cmd.Wait()
	result.Duration = time.Since(start)
	result.ExitCode = cmd.ProcessState.ExitCode()

	j.classify(ctx, runCtx, err, &result)

	clog.WithFields(logrus.Fields{
		"status":    result.Outcome.Status.String(),
		"exit_code": result.ExitCode,
		"duration":  result.Duration,
	}).Info("Job finished")

	return result
}

// classify sets the outcome status and error from the wait error and the contexts.
func (j Job) classify(ctx, runCtx context.Context, err error, result *Result) {
	switch {
	case err == nil:
		result.Outcome.Status = types.StatusSuccess
	case ctx.Err() != nil:
		result.Err = fmt.Errorf("%w: %w", errCommandFailed, ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Err = fmt.Errorf("%w after %s", ErrTimedOut, j.Timeout)
	case result.ExitCode > 0 && slices.Contains(j.WarningExitCodes, result.ExitCode):
		result.Outcome.Status = types.StatusWarning
		result.Err = fmt.Errorf("%w: %w", errCommandFailed, err)
	default:
		result.Err = fmt.Errorf("%w: %w", errCommandFailed, err)
	}
}
