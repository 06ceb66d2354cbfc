package vocabulary

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Server timestamps arrive either zoned (RFC 3339) or as zone-less local date-times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	dateLayout,
}

// FormatDate renders a server timestamp as YYYY-MM-DD. Empty or unparsable
// input renders as Unknown.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return Unknown
}

// FormatTime renders an optional time as YYYY-MM-DD.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Unknown
	}
	return t.Format(dateLayout)
}
