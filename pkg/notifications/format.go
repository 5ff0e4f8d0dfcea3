// Package notifications delivers job outcome notifications to Telegram.
// This file implements the message formatting.
package notifications

import (
	"strings"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// messagePrefix is the tag opening every status message.
const messagePrefix = "Backup"

// FormatMessage renders the status line for an outcome, e.g. "[Backup::Success] Database (db_backup)".
//
// Parameters:
//   - outcome: Job outcome to describe.
//
// Returns:
//   - string: Message text, without any escaping.
func FormatMessage(outcome types.Outcome) string {
	var builder strings.Builder

	builder.WriteRune('[')
	builder.WriteString(messagePrefix)
	builder.WriteString("::")
	builder.WriteString(outcome.Status.String())
	builder.WriteString("] ")
	builder.WriteString(outcome.Label)
	builder.WriteString(" (")
	builder.WriteString(outcome.Trigger)
	builder.WriteRune(')')

	return builder.String()
}
