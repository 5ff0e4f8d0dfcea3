package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newShoutrrrURLCommand creates the shoutrrr-url subcommand.
func newShoutrrrURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shoutrrr-url",
		Short: "Print the shoutrrr URL for the configured Telegram notifier",
		Long:  "Converts the Telegram flags into a shoutrrr service URL, e.g. for use with other tools. The URL contains the bot token.",
		Args:  cobra.NoArgs,
		RunE:  runShoutrrrURL,
	}
}

// runShoutrrrURL prints the URL to the command's output.
func runShoutrrrURL(cmd *cobra.Command, _ []string) error {
	notifier, err := newNotifier(cmd)
	if err != nil {
		return err
	}

	url, err := notifier.GetURL()
	if err != nil {
		return fmt.Errorf("failed to generate shoutrrr URL: %w", err)
	}

	logrus.Warn("The printed URL contains the bot token, treat it as a secret")

	_, err = fmt.Fprintln(cmd.OutOrStdout(), url)

	return err
}
