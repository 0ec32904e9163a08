package localtime

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the fixed display form: day without leading zero, abbreviated
// month, 4-digit year, zero-padded 12-hour clock with meridiem.
// Example: "24 Nov 2025, 06:53 PM".
const Layout = "2 Jan 2006, 03:04 PM"

// parseLayouts covers RFC 3339 and the naive ISO-8601 forms SQLite emits.
// Naive values carry no offset and parse as UTC, which matches how the
// server stores them.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseUTC parses raw as an absolute UTC instant.
func ParseUTC(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("localtime: empty timestamp")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("localtime: unsupported timestamp %q", raw)
}

// Format renders t in loc using Layout. A nil loc falls back to UTC.
func Format(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}
