package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/backupnotify/internal/actions"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// newSendCommand creates the send subcommand, which delivers one notification and exits.
func newSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one backup outcome notification",
		Long:  "Sends \"[Backup::<Status>] <label> (<trigger>)\" to the configured Telegram chat and exits non-zero if delivery fails.",
		Args:  cobra.NoArgs,
		RunE:  runSend,
	}

	cmd.Flags().String("status", "", "Job status: success, warning or failure")
	cmd.Flags().StringP("trigger", "t", "manual", "What started the backup, e.g. cron or manual")
	cmd.Flags().String("label", "", "Human readable job name")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

// runSend parses the outcome flags and delivers the notification.
func runSend(cmd *cobra.Command, _ []string) error {
	rawStatus, _ := cmd.Flags().GetString("status")
	trigger, _ := cmd.Flags().GetString("trigger")
	label, _ := cmd.Flags().GetString("label")

	status, err := types.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	outcome := types.Outcome{Status: status, Trigger: trigger, Label: label}
	if err := actions.Notify(ctx, notifier, outcome, notificationDeadline(cmd)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	logrus.WithField("status", status.String()).Debug("Send command completed")

	return nil
}
