// Package notifications delivers job outcome notifications to Telegram.
// This file defines the notifier configuration.
package notifications

import (
	"fmt"
	"time"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// DefaultMaxRetries is the number of retries after the first failed attempt.
const DefaultMaxRetries = 10

// DefaultRetryWait is the pause between two attempts.
const DefaultRetryWait = 30 * time.Second

// Config holds the Telegram target, the retry policy and the per-status gates.
//
// A Config is copied into the notifier on construction; later changes to the caller's value have no effect.
type Config struct {
	BotToken            string        // Bot API token (required).
	ChatID              string        // Target chat id or @channel name (required).
	MessageThreadID     string        // Forum topic id, sent only when set.
	DisableNotification bool          // Deliver silently, sent only when true.
	MaxRetries          int           // Retries after the first attempt; 0 disables retrying.
	RetryWait           time.Duration // Pause between attempts.
	OnSuccess           bool          // Notify on StatusSuccess.
	OnWarning           bool          // Notify on StatusWarning.
	OnFailure           bool          // Notify on StatusFailure.
}

// DefaultConfig returns a Config with the default retry policy and every status gate open.
// BotToken and ChatID still have to be set.
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		RetryWait:  DefaultRetryWait,
		OnSuccess:  true,
		OnWarning:  true,
		OnFailure:  true,
	}
}

// Validate checks the required fields and the retry invariants.
//
// Returns:
//   - error: Wraps ErrConfiguration when the configuration is unusable, nil otherwise.
func (c Config) Validate() error {
	switch {
	case c.BotToken == "":
		return fmt.Errorf("%w: %w", ErrConfiguration, errMissingBotToken)
	case c.ChatID == "":
		return fmt.Errorf("%w: %w", ErrConfiguration, errMissingChatID)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: %w: %d", ErrConfiguration, errNegativeMaxRetries, c.MaxRetries)
	case c.RetryWait < 0:
		return fmt.Errorf("%w: %w: %s", ErrConfiguration, errNegativeRetryWait, c.RetryWait)
	}

	return nil
}

// Enabled reports whether an outcome with the given status should be delivered.
func (c Config) Enabled(status types.Status) bool {
	switch status {
	case types.StatusSuccess:
		return c.OnSuccess
	case types.StatusWarning:
		return c.OnWarning
	case types.StatusFailure:
		return c.OnFailure
	default:
		return false
	}
}
