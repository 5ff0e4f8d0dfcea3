// Package notifications delivers job outcome notifications to Telegram.
// This file defines the errors returned by the Telegram notifier.
package notifications

import (
	"errors"
	"fmt"
	"strings"
)

// Terminal error kinds. Use errors.Is to test a returned error against them.
var (
	// ErrConfiguration indicates the notifier configuration is unusable; no request was made.
	ErrConfiguration = errors.New("invalid notification configuration")
	// ErrDeliveryExhausted indicates every allowed attempt failed.
	ErrDeliveryExhausted = errors.New("notification delivery retries exhausted")
	// ErrCancelled indicates the context was cancelled before delivery succeeded.
	ErrCancelled = errors.New("notification delivery cancelled")
)

// Errors for configuration validation.
var (
	// errMissingBotToken flags an empty bot token.
	errMissingBotToken = errors.New("telegram bot token is required")
	// errMissingChatID flags an empty chat id.
	errMissingChatID = errors.New("telegram chat id is required")
	// errNegativeMaxRetries flags a negative retry budget.
	errNegativeMaxRetries = errors.New("max retries must not be negative")
	// errNegativeRetryWait flags a negative wait between attempts.
	errNegativeRetryWait = errors.New("retry wait must not be negative")
	// errInvalidEndpoint flags a base URL that does not parse into an endpoint.
	errInvalidEndpoint = errors.New("invalid telegram endpoint")
)

// Errors for a single delivery attempt.
var (
	// errBuildRequest indicates the HTTP request could not be built.
	errBuildRequest = errors.New("failed to build telegram request")
	// errSendRequest indicates a transport level failure.
	errSendRequest = errors.New("failed to send telegram request")
)

// StatusError is a transient failure caused by a non-200 response from the Bot API.
type StatusError struct {
	StatusCode int    // HTTP status code of the response.
	Body       string // Leading part of the response body.
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("telegram responded with HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("telegram responded with HTTP %d: %s", e.StatusCode, body)
}

// DeliveryError is a terminal delivery failure.
//
// Kind is ErrDeliveryExhausted or ErrCancelled. Err is the last transient failure, or the
// context error for a cancellation.
type DeliveryError struct {
	Kind     error
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

// Unwrap exposes both the kind and the underlying failure to errors.Is and errors.As.
func (e *DeliveryError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
