package content

import (
	"strings"
	"time"
)

// dateFormats are tried in order; the first successful parse wins.
// RFC 2822 style dates (common in RSS) come first, then ISO 8601 variants,
// then a plain timestamp fallback.
var dateFormats = []string{
	time.RFC1123Z,         // Mon, 02 Jan 2006 15:04:05 -0700
	time.RFC1123,          // Mon, 02 Jan 2006 15:04:05 MST
	time.RFC3339,          // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05", // ISO 8601 without offset, assumed UTC
	"2006-01-02 15:04:05",
}

// ParseDate parses a publication date string against the accepted formats.
// The result is normalized to UTC. ok is false when no format matches;
// the value is never coerced to the current time.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
