package ptime

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// MinDuration is the shortest duration carried over from the baseline
	// when a text cue moves the event.
	MinDuration = time.Hour

	// DefaultDuration replaces the end of an empty or inverted interval.
	DefaultDuration = time.Hour

	// FallbackTitle is used when the event title is blank.
	FallbackTitle = "Lembrete"
)

// Event is a calendar event with ISO-8601 start/end strings. It is passed
// and returned by value; nothing in this package mutates a caller's Event.
type Event struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// Tidy trims the free-text fields and applies FallbackTitle.
func (e Event) Tidy() Event {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		e.Title = FallbackTitle
	}
	e.Location = strings.TrimSpace(e.Location)
	e.Notes = strings.TrimSpace(e.Notes)
	return e
}

// Result is the outcome of Resolve.
type Result struct {
	Event  Event
	Hints  Hints
	Signal Signal
}

// Resolve corrects the start/end of baseline using the temporal cues in
// text, resolved against base. A zero base means time.Now(); base's location
// supplies the calendar fields. Only an unparseable baseline start or end is
// an error.
func Resolve(text string, base time.Time, baseline Event, tzOffset string) (*Result, error) {
	if base.IsZero() {
		base = time.Now()
	}
	loc := base.Location()

	start, err := ParseTimestamp(baseline.Start, loc)
	if err != nil {
		return nil, errors.Wrap(err, "baseline start")
	}
	end, err := ParseTimestamp(baseline.End, loc)
	if err != nil {
		return nil, errors.Wrap(err, "baseline end")
	}
	start = start.In(loc).Truncate(time.Minute)
	end = end.In(loc).Truncate(time.Minute)

	hints := Extract(Normalize(text))
	signal := hints.Signal()

	if signal.Kind != SignalNone {
		duration := end.Sub(start)
		if duration < MinDuration {
			duration = MinDuration
		}
		hour, minute := start.Hour(), start.Minute()
		if c := hints.ExplicitTime; c != nil {
			hour, minute = c.Hour, c.Minute
		}
		start = resolveStart(signal, base, hour, minute)
		end = start.Add(duration)
	}
	end = FixEnd(start, end)

	ev := baseline
	ev.Start = Format(start, tzOffset)
	ev.End = Format(end, tzOffset)
	return &Result{Event: ev, Hints: hints, Signal: signal}, nil
}

// ResolveEvent runs Resolve and tidies the result's text fields.
func ResolveEvent(text string, base time.Time, baseline Event, tzOffset string) (Event, error) {
	res, err := Resolve(text, base, baseline, tzOffset)
	if err != nil {
		return Event{}, err
	}
	return res.Event.Tidy(), nil
}

func resolveStart(signal Signal, base time.Time, hour, minute int) time.Time {
	loc := base.Location()
	switch signal.Kind {
	case SignalExplicitDate:
		year := signal.Date.Year
		if year == 0 {
			year = base.Year()
		}
		return time.Date(year, time.Month(signal.Date.Month), signal.Date.Day, hour, minute, 0, 0, loc)

	case SignalTomorrow:
		return atClock(base.AddDate(0, 0, 1), hour, minute)

	case SignalToday:
		start := atClock(base, hour, minute)
		if !start.After(base) {
			start = start.AddDate(0, 0, 1)
		}
		return start

	case SignalWeekday:
		delta := NextWeekdayOffset(base.Weekday(), signal.Weekday)
		start := atClock(base.AddDate(0, 0, delta), hour, minute)
		if delta == 0 && !start.After(base) {
			start = start.AddDate(0, 0, 7)
		}
		return start
	}
	return base
}

// NextWeekdayOffset returns the days from one weekday to the next occurrence
// of target, 0 when they are equal.
func NextWeekdayOffset(from, target time.Weekday) int {
	return (int(target) - int(from) + 7) % 7
}

func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// FixEnd returns end, or start+DefaultDuration when end is not after start.
func FixEnd(start, end time.Time) time.Time {
	if !end.After(start) {
		return start.Add(DefaultDuration)
	}
	return end
}
