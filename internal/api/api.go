// Package api wires the backupnotify HTTP endpoints to the notifier and starts the server.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/backupnotify/internal/actions"
	"github.com/nicholas-fedor/backupnotify/pkg/api"
	metricsAPI "github.com/nicholas-fedor/backupnotify/pkg/api/metrics"
	"github.com/nicholas-fedor/backupnotify/pkg/api/notify"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// Options holds the settings read from the http-api-* and notification-deadline flags.
type Options struct {
	Host     string        // Interface to bind; empty binds all interfaces.
	Port     string        // Listen port.
	Token    string        // Bearer token required on every non-health path.
	Rate     int           // Accepted notify requests per second; zero or less disables limiting.
	Deadline time.Duration // Upper bound on a single delivery, zero for none.
}

// Setup builds the API with the notify and metrics endpoints registered.
//
// Parameters:
//   - opts: Listen address, token, and limits.
//   - notifier: Notifier used by the notify endpoint.
//   - enabled: Status gate; nil delivers every status.
//   - server: Optional HTTP server replacing the default one.
//
// Returns:
//   - *api.API: Configured, not yet started API.
func Setup(
	opts Options,
	notifier types.Notifier,
	enabled func(types.Status) bool,
	server ...api.HTTPServer,
) *api.API {
	address := api.GetAPIAddr(opts.Host, opts.Port)
	httpAPI := api.New(opts.Token, address, server...)

	notifyHandler := notify.New(func(ctx context.Context, outcome types.Outcome) error {
		return actions.Notify(ctx, notifier, outcome, opts.Deadline)
	}, enabled, opts.Rate)
	httpAPI.RegisterFunc(notifyHandler.Path, notifyHandler.Handle)

	metricsHandler := metricsAPI.New(nil)
	httpAPI.RegisterFunc(metricsHandler.Path, metricsHandler.Handle)

	return httpAPI
}

// SetupAndStartAPI configures the API and serves it until ctx is cancelled.
//
// Parameters:
//   - ctx: Controls the server lifetime; cancellation shuts it down gracefully.
//   - opts: Listen address, token, and limits.
//   - notifier: Notifier used by the notify endpoint.
//   - enabled: Status gate; nil delivers every status.
//   - writeStartupMessage: Called with the listen address before serving.
//   - server: Optional HTTP server replacing the default one.
//
// Returns:
//   - error: Non-nil if the server could not start or stopped with an error.
func SetupAndStartAPI(
	ctx context.Context,
	opts Options,
	notifier types.Notifier,
	enabled func(types.Status) bool,
	writeStartupMessage func(addr string),
	server ...api.HTTPServer,
) error {
	httpAPI := Setup(opts, notifier, enabled, server...)

	if writeStartupMessage != nil {
		writeStartupMessage(httpAPI.Addr)
	}

	if err := httpAPI.Start(ctx, true); err != nil {
		logrus.WithError(err).Error("Failed to start API")

		return fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return nil
}
