// Package util provides formatting helpers for backupnotify log output.
package util

import (
	"fmt"
	"strings"
	"time"
)

// maskedSecret replaces the secret part of a token.
const maskedSecret = "***"

// timeUnit represents a single unit of time (hours, minutes, or seconds) with its value and labels.
type timeUnit struct {
	value    int64  // The numeric value of the unit (e.g., 2 for 2 hours)
	singular string // The singular form of the unit (e.g., "hour")
	plural   string // The plural form of the unit (e.g., "hours")
}

// FormatDuration converts a time.Duration into a human-readable string representation.
//
// Sub-second remainders are dropped and negative durations are treated as zero.
//
// Parameters:
//   - duration: The time.Duration to convert into a readable string.
//
// Returns:
//   - string: A formatted string such as "1 hour, 2 minutes, 3 seconds", or "0 seconds".
func FormatDuration(duration time.Duration) string {
	total := max(int64(duration/time.Second), 0)

	units := []timeUnit{
		{total / 3600, "hour", "hours"},
		{total % 3600 / 60, "minute", "minutes"},
		{total % 60, "second", "seconds"},
	}

	parts := make([]string, 0, len(units))
	for _, unit := range units {
		parts = append(parts, FormatTimeUnit(unit.value, unit.singular, unit.plural, false))
	}

	joined := strings.Join(FilterEmpty(parts), ", ")
	if joined == "" {
		return "0 seconds"
	}

	return joined
}

// FormatTimeUnit formats a single time unit, skipping zero values unless forceInclude is set.
//
// Returns:
//   - string: The formatted unit (e.g., "1 hour", "2 minutes") or empty string if skipped.
func FormatTimeUnit(value int64, singular, plural string, forceInclude bool) string {
	switch {
	case value == 1:
		return "1 " + singular
	case value > 1 || forceInclude:
		return fmt.Sprintf("%d %s", value, plural)
	default:
		return ""
	}
}

// FilterEmpty removes empty strings from a slice, returning only non-empty elements.
func FilterEmpty(parts []string) []string {
	var filtered []string

	for _, part := range parts {
		if part != "" {
			filtered = append(filtered, part)
		}
	}

	return filtered
}

// MaskToken hides the secret of a bot token, keeping the numeric bot id before the colon.
//
// Parameters:
//   - token: Bot token in the "<bot id>:<secret>" form.
//
// Returns:
//   - string: "<bot id>:***", or "***" when the token has no bot id; empty for an empty token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}

	botID, _, found := strings.Cut(token, ":")
	if !found || botID == "" {
		return maskedSecret
	}

	return botID + ":" + maskedSecret
}
