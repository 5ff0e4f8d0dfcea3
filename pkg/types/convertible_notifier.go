package types

// ConvertibleNotifier defines a notifier whose configuration can be expressed as a shoutrrr URL.
type ConvertibleNotifier interface {
	// GetURL creates a shoutrrr URL from the notifier configuration.
	//
	// Returns:
	//   - string: Generated URL.
	//   - error: Non-nil if URL creation fails, nil on success.
	GetURL() (string, error)
}
