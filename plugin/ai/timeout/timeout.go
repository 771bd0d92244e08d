// Package timeout defines centralized timeout constants for event extraction.
package timeout

import "time"

const (
	// LLMCallTimeout bounds one chat completion, retries included, when the
	// configuration does not set one.
	LLMCallTimeout = 60 * time.Second

	// CalDAVTimeout bounds one request to the CalDAV server.
	CalDAVTimeout = 30 * time.Second

	// ShutdownTimeout is how long the HTTP server waits for in-flight requests.
	ShutdownTimeout = 10 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)

// Truncate shortens s to MaxTruncateLength runes for logging.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTruncateLength {
		return s
	}
	return string(r[:MaxTruncateLength]) + "..."
}
