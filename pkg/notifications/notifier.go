// Package notifications delivers job outcome notifications to Telegram.
// This file implements notifier creation from command-line flags.
package notifications

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
)

// NewNotifier creates a Telegram notifier from the command's flags.
//
// Parameters:
//   - c: Cobra command with the notification flags registered and parsed.
//   - opts: Additional options, applied after the flag-derived ones.
//
// Returns:
//   - *TelegramNotifier: Configured notifier.
//   - error: Wraps ErrConfiguration if the flags describe an unusable configuration.
func NewNotifier(c *cobra.Command, opts ...Option) (*TelegramNotifier, error) {
	flags := c.Flags()
	config := GetConfig(flags)

	baseURL, _ := flags.GetString("telegram-api-url")

	timeout, _ := flags.GetDuration("notification-http-timeout")
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	logrus.WithFields(logrus.Fields{
		"chat_id":              config.ChatID,
		"api_url":              baseURL,
		"message_thread_id":    config.MessageThreadID,
		"disable_notification": config.DisableNotification,
		"max_retries":          config.MaxRetries,
		"retry_wait":           config.RetryWait,
		"http_timeout":         timeout,
		"on_success":           config.OnSuccess,
		"on_warning":           config.OnWarning,
		"on_failure":           config.OnFailure,
	}).Debug("Creating notifier with configuration")

	options := []Option{
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithMetrics(metrics.Default()),
	}

	if baseURL != "" {
		options = append(options, WithBaseURL(baseURL))
	}

	return NewTelegramNotifier(config, append(options, opts...)...)
}

// GetConfig reads the notifier configuration from a flag set.
// Missing flags leave the corresponding DefaultConfig value in place.
//
// Parameters:
//   - flags: Flag set holding the telegram-* and notif* flags.
//
// Returns:
//   - Config: Configuration, not yet validated.
func GetConfig(flags *pflag.FlagSet) Config {
	config := DefaultConfig()

	config.BotToken, _ = flags.GetString("telegram-bot-token")
	config.ChatID, _ = flags.GetString("telegram-chat-id")
	config.MessageThreadID, _ = flags.GetString("telegram-message-thread-id")
	config.DisableNotification, _ = flags.GetBool("telegram-disable-notification")

	if retries, err := flags.GetInt("notification-max-retries"); err == nil {
		config.MaxRetries = retries
	}

	if wait, err := flags.GetInt("notification-retry-wait"); err == nil {
		config.RetryWait = time.Duration(wait) * time.Second
	}

	if onSuccess, err := flags.GetBool("notify-on-success"); err == nil {
		config.OnSuccess = onSuccess
	}

	if onWarning, err := flags.GetBool("notify-on-warning"); err == nil {
		config.OnWarning = onWarning
	}

	if onFailure, err := flags.GetBool("notify-on-failure"); err == nil {
		config.OnFailure = onFailure
	}

	return config
}
