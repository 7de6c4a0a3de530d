package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the human-readable calendar format used in responses.
const DateLayout = "Mon Jan 02 2006"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate parses a caller supplied date and truncates it to the UTC calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return CalendarDay(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// CalendarDay returns midnight UTC of the day t falls on in UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t using DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
