// Package notifications delivers job outcome notifications to Telegram.
// This file implements the retrying Telegram Bot API client.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// telegramType is the identifier for Telegram notifications.
const telegramType = "telegram"

// DefaultAPIBaseURL is the Telegram Bot API origin.
const DefaultAPIBaseURL = "https://api.telegram.org"

// DefaultHTTPTimeout bounds a single delivery attempt.
const DefaultHTTPTimeout = 60 * time.Second

// formContentType is the Content-Type of every sendMessage request.
const formContentType = "application/x-www-form-urlencoded"

// maxErrorBodyBytes caps how much of a non-200 response body is kept for the error message.
const maxErrorBodyBytes = 4096

// redactedToken replaces the bot token in logged URLs.
const redactedToken = "<redacted>"

// HTTPClient is the subset of *http.Client used to send requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customizes a TelegramNotifier.
type Option func(*TelegramNotifier)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(n *TelegramNotifier) {
		if client != nil {
			n.client = client
		}
	}
}

// WithBaseURL overrides the Bot API origin, e.g. for a local test server.
func WithBaseURL(baseURL string) Option {
	return func(n *TelegramNotifier) {
		n.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMetrics records attempts and results in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *TelegramNotifier) {
		n.metrics = m
	}
}

// TelegramNotifier delivers outcomes through the Bot API sendMessage method.
//
// It holds no mutable state after construction and is safe for concurrent use.
type TelegramNotifier struct {
	config   Config
	baseURL  string
	endpoint string
	redacted string
	client   HTTPClient
	metrics  *metrics.Metrics
}

// NewTelegramNotifier validates config and creates a notifier.
//
// Parameters:
//   - config: Telegram target and retry policy.
//   - opts: Optional overrides.
//
// Returns:
//   - *TelegramNotifier: Ready notifier.
//   - error: Wraps ErrConfiguration if config is unusable.
func NewTelegramNotifier(config Config, opts ...Option) (*TelegramNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	notifier := &TelegramNotifier{
		config:  config,
		baseURL: DefaultAPIBaseURL,
		client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(notifier)
	}

	notifier.endpoint = notifier.baseURL + "/bot" + config.BotToken + "/sendMessage"
	notifier.redacted = notifier.baseURL + "/bot" + redactedToken + "/sendMessage"

	if _, err := url.ParseRequestURI(notifier.endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrConfiguration, errInvalidEndpoint, notifier.redacted)
	}

	clog := logrus.WithFields(logrus.Fields{
		"endpoint":    notifier.redacted,
		"chat_id":     config.ChatID,
		"max_retries": config.MaxRetries,
		"retry_wait":  config.RetryWait,
	})
	clog.Debug("Initialized Telegram notifier")

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		clog.WithField("token", config.BotToken).Trace("Telegram notifier token loaded")
	}

	return notifier, nil
}

// GetName returns the service name.
func (n *TelegramNotifier) GetName() string {
	return telegramType
}

// Config returns a copy of the notifier configuration.
func (n *TelegramNotifier) Config() Config {
	return n.config
}

// Endpoint returns the sendMessage URL, including the bot token.
func (n *TelegramNotifier) Endpoint() string {
	return n.endpoint
}

// Notify delivers the outcome, retrying transient failures.
//
// A status whose gate is closed returns nil without any network activity. Each attempt is one
// POST; a 200 response ends delivery, anything else is retried after RetryWait until MaxRetries
// retries have been used.
//
// Parameters:
//   - ctx: Cancels the delivery during an attempt or a wait.
//   - outcome: Job outcome to report.
//
// Returns:
//   - error: nil when delivered or skipped; a *DeliveryError matching ErrDeliveryExhausted or
//     ErrCancelled otherwise; types.ErrInvalidStatus for an unknown status.
func (n *TelegramNotifier) Notify(ctx context.Context, outcome types.Outcome) error {
	clog := logrus.WithFields(logrus.Fields{
		"delivery_id": uuid.NewString(),
		"status":      outcome.Status.String(),
		"trigger":     outcome.Trigger,
	})

	if !outcome.Status.Valid() {
		return fmt.Errorf("%w: %s", types.ErrInvalidStatus, outcome.Status)
	}

	if !n.config.Enabled(outcome.Status) {
		clog.Debug("Notifications disabled for this status, skipping")
		n.metrics.RecordNotification(outcome.Status, metrics.ResultSkipped)

		return nil
	}

	body := NewOutboundMessage(n.config, outcome).Encode()

	var (
		attempts int
		lastErr  error
	)

	operation := func() error {
		attempts++
		lastErr = n.send(ctx, body)

		return lastErr
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(n.config.RetryWait),
			uint64(n.config.MaxRetries),
		),
		ctx,
	)

	onRetry := func(err error, wait time.Duration) {
		clog.WithError(err).WithFields(logrus.Fields{
			"attempt":     attempts,
			"max_retries": n.config.MaxRetries,
			"retry_in":    wait,
		}).Warn("Telegram delivery attempt failed, retrying")
	}

	clog.Debug("Sending Telegram notification")

	if err := backoff.RetryNotify(operation, policy, onRetry); err == nil {
		clog.WithField("attempts", attempts).Info("Telegram notification delivered")
		n.metrics.RecordNotification(outcome.Status, metrics.ResultDelivered)

		return nil
	}

	// A spent retry budget wins over a context that ended during the last attempt.
	if ctxErr := ctx.Err(); ctxErr != nil && attempts <= n.config.MaxRetries {
		clog.WithError(ctxErr).WithField("attempts", attempts).Warn("Telegram notification cancelled")
		n.metrics.RecordNotification(outcome.Status, metrics.ResultCancelled)

		return &DeliveryError{Kind: ErrCancelled, Attempts: attempts, Err: ctxErr}
	}

	clog.WithError(lastErr).WithField("attempts", attempts).Error("Telegram notification failed")
	n.metrics.RecordNotification(outcome.Status, metrics.ResultExhausted)

	return &DeliveryError{Kind: ErrDeliveryExhausted, Attempts: attempts, Err: lastErr}
}

// send performs one delivery attempt.
//
// Returns:
//   - error: nil on HTTP 200, a *StatusError for other statuses, or a wrapped transport error.
func (n *TelegramNotifier) send(ctx context.Context, body string) error {
	n.metrics.RecordAttempt()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
	if err != nil {
		n.metrics.RecordFailure()

		return backoff.Permanent(fmt.Errorf("%w: %w", errBuildRequest, n.redact(err)))
	}

	req.Header.Set("Content-Type", formContentType)

	resp, err := n.client.Do(req)
	if err != nil {
		n.metrics.RecordFailure()

		return fmt.Errorf("%w: %w", errSendRequest, n.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.metrics.RecordFailure()

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	// The body is not inspected; drain it so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// redact removes the bot token from the URL embedded in net/http errors.
func (n *TelegramNotifier) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = n.redacted
	}

	return err
}
