// Package convert holds the value conversions shared by the import steps:
// dates, money, text decoding and the status lookup tables.
package convert

import (
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the MySQL datetime layout.
const DateTimeLayout = "2006-01-02 15:04:05"

var layouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTime reads a Clientexec date value in loc and returns it in UTC.
// Unix timestamps, MySQL datetimes and plain dates are accepted. Empty and
// zero values ("0", "0000-00-00 ...") return nil rather than an error.
func ParseTime(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" || strings.HasPrefix(value, "0000-00-00") {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs <= 0 {
			return nil
		}
		t := time.Unix(secs, 0).UTC()
		return &t
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// ParseTimeOr is ParseTime with a fallback for missing values.
func ParseTimeOr(value string, loc *time.Location, fallback time.Time) time.Time {
	if t := ParseTime(value, loc); t != nil {
		return *t
	}
	return fallback.UTC()
}

