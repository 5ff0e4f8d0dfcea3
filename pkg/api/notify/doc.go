// Package notify provides the HTTP handler that turns a JSON outcome into a Telegram notification.
//
// POST /v1/notify accepts {"status": "success|warning|failure", "trigger": "...", "label": "..."}.
// The request blocks until delivery succeeds or fails terminally:
//
//   - 200 with {"delivered": true} after delivery, or {"delivered": false} when the status is gated off
//   - 400 for a malformed body or unknown status
//   - 405 for any method other than POST
//   - 429 when the request rate limit is exceeded
//   - 502 when every delivery attempt failed
//   - 503 when delivery was cancelled
package notify
