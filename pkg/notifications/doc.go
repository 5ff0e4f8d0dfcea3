// Package notifications delivers job outcome notifications to Telegram.
// It formats a one-line status message and posts it to the Bot API sendMessage method,
// retrying transient failures with a constant backoff up to a configured bound.
//
// Key components:
//   - Formatting: Maps an outcome to "[Backup::<Status>] <label> (<trigger>)" (format.go).
//   - Config: Telegram target, retry budget and per-status gates (config.go).
//   - Outbound message: Ordered form encoding of the request body (message.go).
//   - Delivery: The retrying Telegram client (telegram.go).
//   - Flags: Building a notifier from command-line flags (notifier.go).
//   - Shoutrrr: Exporting the configuration as a shoutrrr URL (shoutrrr.go).
//
// Usage example:
//
//	notifier, err := notifications.NewTelegramNotifier(cfg, notifications.WithMetrics(metrics.Default()))
//	if err != nil {
//	    return err
//	}
//	err = notifier.Notify(ctx, types.Outcome{Status: types.StatusSuccess, Trigger: "db", Label: "Database"})
//
// Terminal errors match ErrConfiguration, ErrDeliveryExhausted or ErrCancelled via errors.Is.
package notifications
