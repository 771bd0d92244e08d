// Package timezone provides timezone utilities for the agenda service.
//
// Events are resolved in an IANA zone and serialized with a fixed "±HH:MM"
// suffix; this package converts between the two.
package timezone

import (
	"fmt"
	"time"
	// Embedded zone database so America/Sao_Paulo loads on minimal images.
	_ "time/tzdata"

	"github.com/pkg/errors"
)

// Common timezone constants
const (
	// TimezoneUTC is the UTC timezone identifier
	TimezoneUTC = "UTC"

	// TimezoneSaoPaulo is the default zone for events.
	TimezoneSaoPaulo = "America/Sao_Paulo"

	// OffsetSaoPaulo is the default offset suffix for events.
	OffsetSaoPaulo = "-03:00"
)

// LocationSaoPaulo is the pre-loaded America/Sao_Paulo location.
var LocationSaoPaulo = MustParseTimezone(TimezoneSaoPaulo)

// ParseTimezone parses an IANA timezone identifier (e.g., "America/Sao_Paulo").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == TimezoneUTC {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, errors.Wrapf(err, "invalid timezone %q", tz)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// OffsetString returns the UTC offset of t in its own location as "±HH:MM".
func OffsetString(t time.Time) string {
	_, secs := t.Zone()
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	return fmt.Sprintf("%c%02d:%02d", sign, secs/3600, (secs%3600)/60)
}

// ParseOffset parses a "±HH:MM" suffix (or "Z") into a fixed zone.
func ParseOffset(offset string) (*time.Location, error) {
	if offset == "Z" {
		return time.UTC, nil
	}
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid offset %q", offset)
	}
	_, secs := t.Zone()
	return time.FixedZone(offset, secs), nil
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Now().In(tz)
}

// FormatEventTime formats an event interval for display.
// Rules:
//   - Same day: "2006-01-02 15:04 - 16:00"
//   - Different days: "2006-01-02 15:04 - 2006-01-03 09:00"
func FormatEventTime(start, end time.Time, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	start, end = start.In(tz), end.In(tz)

	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}
