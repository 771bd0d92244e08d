// Package caldav renders stored events as iCalendar objects and publishes
// them to a CalDAV calendar collection.
package caldav

import (
	"bytes"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"

	"github.com/hrygo/agenda/store"
)

// ProductID identifies the generator in PRODID.
const ProductID = "-//hrygo//agenda//PT-BR"

// EncodeEvent converts a stored event into a VCALENDAR with one VEVENT.
// Times are written in UTC.
func EncodeEvent(ev *store.Event) (*ical.Calendar, error) {
	if ev == nil || ev.UID == "" {
		return nil, errors.New("event uid is required")
	}
	if ev.EndTs <= ev.StartTs {
		return nil, errors.Errorf("event %s ends before it starts", ev.UID)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, ev.UID)
	vevent.Props.SetText(ical.PropSummary, ev.Title)
	if ev.Notes != "" {
		vevent.Props.SetText(ical.PropDescription, ev.Notes)
	}
	if ev.Location != "" {
		vevent.Props.SetText(ical.PropLocation, ev.Location)
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStart, time.Unix(ev.StartTs, 0).UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, time.Unix(ev.EndTs, 0).UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Unix(ev.CreatedTs, 0).UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal, nil
}

// WriteICS encodes ev as an iCalendar stream to w.
func WriteICS(w io.Writer, ev *store.Event) error {
	cal, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return errors.Wrap(err, "failed to encode calendar")
	}
	return nil
}

// MarshalICS returns ev as iCalendar bytes.
func MarshalICS(ev *store.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteICS(&buf, ev); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
