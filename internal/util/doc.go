// Package util provides small formatting helpers shared by backupnotify's logging.
//
// Key components:
//   - FormatDuration: Renders a duration as "1 hour, 2 minutes, 3 seconds".
//   - MaskToken: Hides the secret part of a Telegram bot token.
package util
