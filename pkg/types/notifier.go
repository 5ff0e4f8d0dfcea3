package types

import "context"

// Notifier defines the common interface for notification services.
type Notifier interface {
	// Notify delivers the outcome, blocking until it succeeds, is skipped, or fails terminally.
	Notify(ctx context.Context, outcome Outcome) error
	// GetName returns the service name, e.g. "telegram".
	GetName() string
}
