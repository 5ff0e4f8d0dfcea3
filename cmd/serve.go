package cmd

import (
	"time"

	"github.com/spf13/cobra"

	apiPkg "github.com/nicholas-fedor/backupnotify/internal/api"
	"github.com/nicholas-fedor/backupnotify/internal/logging"
	"github.com/nicholas-fedor/backupnotify/internal/meta"
)

// newServeCommand creates the serve subcommand, which runs the HTTP API until interrupted.
func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP notify and metrics API",
		Long:  "Accepts POST /v1/notify requests from other tools and exposes Prometheus metrics at /v1/metrics.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// runServe serves the notify and metrics endpoints until SIGINT, SIGTERM, or context cancellation.
func runServe(cmd *cobra.Command, _ []string) error {
	notifier, err := newNotifier(cmd)
	if err != nil {
		return err
	}

	opts := apiOptions(cmd)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	return apiPkg.SetupAndStartAPI(ctx, opts, notifier, notifier.Config().Enabled, func(addr string) {
		logging.WriteStartupMessage(cmd, time.Time{}, notifier, meta.Version, addr)
	})
}
