package ptime

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidTimestamp is returned when a baseline start/end cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Layouts carrying their own UTC offset.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04-0700",
}

// dateOnlyLayout is read as UTC midnight, like ECMAScript date-only forms.
const dateOnlyLayout = "2006-01-02"

// Layouts without offset, read in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Format renders t as "YYYY-MM-DDTHH:mm:00" followed by tzOffset. The
// calendar fields come from t's own location; tzOffset is appended verbatim.
func Format(t time.Time, tzOffset string) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00%s",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), tzOffset)
}

// ParseTimestamp parses an ISO-8601 style timestamp. Date-time strings
// without an offset are interpreted in loc (time.Local when nil); a bare
// date is UTC midnight.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(dateOnlyLayout, v); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Wrapf(ErrInvalidTimestamp, "cannot parse %q", s)
}
