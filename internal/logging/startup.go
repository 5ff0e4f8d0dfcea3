// Package logging provides functions for logging startup information in backupnotify.
// It reports the version, the notification target, schedule information, and the HTTP API address.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/backupnotify/internal/util"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// scheduleTimeLayout formats the next scheduled run.
const scheduleTimeLayout = "2006-01-02 15:04:05 -0700 MST"

// WriteStartupMessage logs startup information for long-running modes.
//
// Parameters:
//   - c: The cobra.Command instance, providing access to the notification and job flags.
//   - sched: The time.Time of the first scheduled run, or zero if no schedule is set.
//   - notifier: The configured notifier, or nil if notifications are unavailable.
//   - version: The backupnotify version string.
//   - apiAddr: The HTTP API listen address, or empty when the API is not served.
func WriteStartupMessage(
	c *cobra.Command,
	sched time.Time,
	notifier types.Notifier,
	version string,
	apiAddr string,
) {
	startupLog := logrus.NewEntry(logrus.StandardLogger())

	startupLog.Info("backupnotify ", version)

	LogNotifierInfo(startupLog, c, notifier)
	LogScheduleInfo(startupLog, c, sched)

	if apiAddr != "" {
		startupLog.WithField("addr", apiAddr).Info("The HTTP API is enabled")
	}

	// Trace logs include the bot token.
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		startupLog.Warn(
			"Trace level enabled: log will include sensitive information as credentials and tokens",
		)
	}
}

// LogNotifierInfo logs the notification target with the bot token masked.
//
// Parameters:
//   - log: The logrus.Entry used to write the notification information.
//   - c: The cobra.Command instance holding the telegram-* flags.
//   - notifier: The configured notifier, or nil.
func LogNotifierInfo(log *logrus.Entry, c *cobra.Command, notifier types.Notifier) {
	if notifier == nil {
		log.Info("Using no notifications")

		return
	}

	flags := c.Flags()
	chatID, _ := flags.GetString("telegram-chat-id")
	threadID, _ := flags.GetString("telegram-message-thread-id")
	token, _ := flags.GetString("telegram-bot-token")

	fields := logrus.Fields{
		"chat_id": chatID,
		"bot":     util.MaskToken(token),
	}
	if threadID != "" {
		fields["message_thread_id"] = threadID
	}

	log.WithFields(fields).Info("Using notifications: " + notifier.GetName())
}

// LogScheduleInfo logs information about the scheduling or run mode configuration.
//
// Parameters:
//   - log: The logrus.Entry used to write the schedule information.
//   - c: The cobra.Command instance, providing access to the run-once flag.
//   - sched: The time.Time of the first scheduled run, or zero if no schedule is set.
func LogScheduleInfo(log *logrus.Entry, c *cobra.Command, sched time.Time) {
	runOnce, _ := c.Flags().GetBool("run-once")

	switch {
	case !sched.IsZero():
		until := util.FormatDuration(time.Until(sched))
		log.Info("Scheduling first run: " + sched.Format(scheduleTimeLayout))
		log.Info("Note that the first run will be performed in " + until)
	case runOnce:
		log.Info("Running the job once.")
	default:
		log.Debug("No job schedule configured.")
	}
}
