// Package cmd contains the command-line interface (CLI) definitions and execution logic for backupnotify.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	apiPkg "github.com/nicholas-fedor/backupnotify/internal/api"
	"github.com/nicholas-fedor/backupnotify/internal/flags"
	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
)

// errInitLogging indicates the logging flags could not be applied.
var errInitLogging = errors.New("failed to initialize logging")

// rootCmd represents the root command for the backupnotify CLI, serving as the entry point for all subcommands.
var rootCmd = NewRootCommand()

// NewRootCommand creates the root command with every flag and subcommand registered.
//
// Returns:
//   - *cobra.Command: A pointer to the fully configured root command, ready for execution.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "backupnotify",
		Short:             "Reports backup job outcomes to Telegram",
		Long:              "\nbackupnotify runs backup jobs and reports their outcome to a Telegram chat,\nretrying delivery with a fixed backoff.",
		PersistentPreRunE: preRun,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags.SetDefaults()
	flags.RegisterSystemFlags(root)
	flags.RegisterNotificationFlags(root)
	flags.RegisterAPIFlags(root)

	root.AddCommand(
		newSendCommand(),
		newRunCommand(),
		newServeCommand(),
		newShoutrrrURLCommand(),
	)

	return root
}

// Execute runs the root command and exits with status 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("backupnotify failed")
	}
}

// preRun applies logging flags and resolves secrets from files before any subcommand runs.
//
// Parameters:
//   - cmd: The cobra.Command instance being executed, providing access to parsed flags.
//   - _: Positional arguments, unused.
//
// Returns:
//   - error: Non-nil if the logging flags are invalid or a secret file cannot be read.
func preRun(cmd *cobra.Command, _ []string) error {
	flagsSet := cmd.Flags()

	if err := flags.ProcessFlagAliases(flagsSet); err != nil {
		return fmt.Errorf("%w: %w", errInitLogging, err)
	}

	if err := flags.SetupLogging(flagsSet); err != nil {
		return fmt.Errorf("%w: %w", errInitLogging, err)
	}

	return flags.GetSecretsFromFiles(cmd.Root())
}

// newNotifier builds the Telegram notifier from the command's flags.
func newNotifier(cmd *cobra.Command) (*notifications.TelegramNotifier, error) {
	notifier, err := notifications.NewNotifier(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	return notifier, nil
}

// notificationDeadline reads the overall delivery time limit.
func notificationDeadline(cmd *cobra.Command) time.Duration {
	deadline, _ := cmd.Flags().GetDuration("notification-deadline")

	return deadline
}

// apiOptions reads the HTTP API settings from the http-api-* flags.
func apiOptions(cmd *cobra.Command) apiPkg.Options {
	flagsSet := cmd.Flags()
	host, _ := flagsSet.GetString("http-api-host")
	port, _ := flagsSet.GetString("http-api-port")
	token, _ := flagsSet.GetString("http-api-token")
	rps, _ := flagsSet.GetInt("http-api-rate")

	return apiPkg.Options{
		Host:     host,
		Port:     port,
		Token:    token,
		Rate:     rps,
		Deadline: notificationDeadline(cmd),
	}
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
