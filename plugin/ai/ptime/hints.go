// Package ptime resolves Portuguese (Brazil) temporal expressions found in free
// text and reconciles them with an untrusted start/end guess.
//
// The pipeline is pure: Normalize rewrites informal hour notations, Extract
// derives Hints from the normalized text, Resolve applies the precedence chain
// against a base date and FixEnd repairs inverted intervals. All functions are
// safe for concurrent use.
package ptime

import (
	"fmt"
	"time"
)

// Date is an explicit calendar date found in text. Year is 0 when absent.
type Date struct {
	Day   int
	Month int
	Year  int
}

// Clock is an explicit time of day found in text.
type Clock struct {
	Hour   int
	Minute int
}

// Hints holds every temporal cue detected in one normalized text.
type Hints struct {
	ExplicitDate *Date
	ExplicitTime *Clock
	IsToday      bool
	IsTomorrow   bool
	Weekday      *time.Weekday
}

// SignalKind identifies which cue decides the event date.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalExplicitDate
	SignalToday
	SignalTomorrow
	SignalWeekday
)

var signalNames = [...]string{
	SignalNone:         "none",
	SignalExplicitDate: "explicit_date",
	SignalToday:        "today",
	SignalTomorrow:     "tomorrow",
	SignalWeekday:      "weekday",
}

// String returns the snake_case name used in logs and metrics.
func (k SignalKind) String() string {
	if int(k) >= 0 && int(k) < len(signalNames) {
		return signalNames[k]
	}
	return fmt.Sprintf("SignalKind(%d)", int(k))
}

// Signal is the date cue that wins the precedence chain.
type Signal struct {
	Kind    SignalKind
	Date    Date
	Weekday time.Weekday
}

// Signal picks the winning date cue: explicit date, then tomorrow/today,
// then weekday. Tomorrow beats today when both keywords appear.
func (h Hints) Signal() Signal {
	switch {
	case h.ExplicitDate != nil:
		return Signal{Kind: SignalExplicitDate, Date: *h.ExplicitDate}
	case h.IsTomorrow:
		return Signal{Kind: SignalTomorrow}
	case h.IsToday:
		return Signal{Kind: SignalToday}
	case h.Weekday != nil:
		return Signal{Kind: SignalWeekday, Weekday: *h.Weekday}
	default:
		return Signal{Kind: SignalNone}
	}
}
