package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/agenda/plugin/ai/event"
	"github.com/hrygo/agenda/plugin/ai/ptime"
	"github.com/hrygo/agenda/plugin/caldav"
	apierrors "github.com/hrygo/agenda/server/internal/errors"
	"github.com/hrygo/agenda/server/internal/observability"
	"github.com/hrygo/agenda/server/timezone"
	"github.com/hrygo/agenda/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ParseEventRequest is the body of POST /events/parse.
type ParseEventRequest struct {
	Text string `json:"text"`
	// Timezone overrides the configured IANA zone.
	Timezone string `json:"timezone,omitempty"`
	// BaseDate is the reference instant; defaults to now.
	BaseDate string `json:"baseDate,omitempty"`
}

// ResolveEventRequest is the body of POST /events/resolve.
type ResolveEventRequest struct {
	Text     string      `json:"text"`
	BaseDate string      `json:"baseDate,omitempty"`
	TZOffset string      `json:"tzOffset,omitempty"`
	Event    ptime.Event `json:"event"`
}

// ResolveEventResponse is the result of POST /events/resolve.
type ResolveEventResponse struct {
	Event  ptime.Event `json:"event"`
	Signal string      `json:"signal"`
}

// Event is the API representation of a stored event.
type Event struct {
	UID        string `json:"uid"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Timezone   string `json:"timezone"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	Signal     string `json:"signal"`
	SourceText string `json:"sourceText"`
	CreateTime string `json:"createTime"`
}

// ListEventsResponse is the result of GET /events.
type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

// ParseEvent extracts an event from text with the LLM, resolves its date and
// time, and stores it.
func (s *APIV1Service) ParseEvent(c echo.Context) error {
	var req ParseEventRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	if s.Extractor == nil {
		return apierrors.LLMUnavailable("LLM is not configured")
	}

	ctx := c.Request().Context()
	rc := newRequestContext(c, "parse", utf8.RuneCountInString(req.Text))
	ctx = observability.WithRequestContext(ctx, rc)

	timezoneName := s.Profile.Timezone
	loc := s.location
	if req.Timezone != "" {
		l, err := timezone.ParseTimezone(req.Timezone)
		if err != nil {
			return apierrors.InvalidArgument("invalid timezone").WithContext("timezone", req.Timezone)
		}
		timezoneName, loc = req.Timezone, l
	}

	base := s.now()
	if req.BaseDate != "" {
		b, err := ptime.ParseTimestamp(req.BaseDate, loc)
		if err != nil {
			return apierrors.InvalidArgument("invalid baseDate").WithContext("baseDate", req.BaseDate)
		}
		base = b
	}
	base = base.In(loc)

	tzOffset := s.Profile.TZOffset
	if req.Timezone != "" || tzOffset == "" {
		tzOffset = timezone.OffsetString(base)
	}

	if err := s.llmSemaphore.Acquire(ctx, 1); err != nil {
		return err
	}
	start := time.Now()
	result, err := s.Extractor.Parse(ctx, event.Request{
		Text:     req.Text,
		BaseDate: base,
		Timezone: timezoneName,
		Location: loc,
		TZOffset: tzOffset,
	})
	s.llmSemaphore.Release(1)
	s.Metrics.RecordLLMCall(result != nil && result.Cached, err, time.Since(start))
	if err != nil {
		rc.Warn("extraction failed", slog.String("error", err.Error()))
		return err
	}

	stored, err := s.storeEvent(c, result.Event, loc, req.Text, result.Signal.Kind.String())
	if err != nil {
		return err
	}
	s.Metrics.RecordSignal(stored.Signal)
	s.publish(c, stored, rc)
	rc.Done(stored.Signal, result.Cached)

	return c.JSON(http.StatusCreated, convertEventFromStore(stored, loc))
}

func (s *APIV1Service) storeEvent(c echo.Context, ev ptime.Event, loc *time.Location, sourceText, signal string) (*store.Event, error) {
	start, err := ptime.ParseTimestamp(ev.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := ptime.ParseTimestamp(ev.End, loc)
	if err != nil {
		return nil, err
	}
	return s.Store.CreateEvent(c.Request().Context(), &store.Event{
		Title:      ev.Title,
		Location:   ev.Location,
		Notes:      ev.Notes,
		Timezone:   ev.Timezone,
		Start:      ev.Start,
		End:        ev.End,
		StartTs:    start.Unix(),
		EndTs:      end.Unix(),
		SourceText: strings.TrimSpace(sourceText),
		Signal:     signal,
	})
}

// publish pushes the event to CalDAV. Failures are logged, not returned.
func (s *APIV1Service) publish(c echo.Context, ev *store.Event, rc *observability.RequestContext) {
	if s.Publisher == nil {
		return
	}
	path, err := s.Publisher.Publish(c.Request().Context(), ev)
	if err != nil {
		rc.Error("failed to publish event to caldav", err, slog.String("uid", ev.UID))
		return
	}
	rc.Debug("event published", slog.String("path", path))
}

// ResolveEvent runs temporal resolution on a caller-supplied baseline event.
// Nothing is stored.
func (s *APIV1Service) ResolveEvent(c echo.Context) error {
	var req ResolveEventRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}

	loc := s.location
	tzOffset := s.Profile.TZOffset
	if req.TZOffset != "" {
		l, err := timezone.ParseOffset(req.TZOffset)
		if err != nil {
			return apierrors.InvalidArgument("invalid tzOffset").WithContext("tzOffset", req.TZOffset)
		}
		loc, tzOffset = l, req.TZOffset
	}

	base := s.now()
	if req.BaseDate != "" {
		b, err := ptime.ParseTimestamp(req.BaseDate, loc)
		if err != nil {
			return apierrors.InvalidArgument("invalid baseDate").WithContext("baseDate", req.BaseDate)
		}
		base = b
	}

	result, err := ptime.Resolve(req.Text, base.In(loc), req.Event, tzOffset)
	if err != nil {
		return err
	}
	signal := result.Signal.Kind.String()
	s.Metrics.RecordSignal(signal)

	return c.JSON(http.StatusOK, &ResolveEventResponse{
		Event:  result.Event.Tidy(),
		Signal: signal,
	})
}

// ListEvents lists stored events, newest first.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit <= 0 {
		return apierrors.InvalidArgument("invalid limit")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return apierrors.InvalidArgument("invalid offset")
	}

	list, err := s.Store.ListEvents(c.Request().Context(), &store.FindEvent{Limit: &limit, Offset: &offset})
	if err != nil {
		return err
	}
	response := &ListEventsResponse{Events: make([]*Event, 0, len(list))}
	for _, ev := range list {
		response.Events = append(response.Events, convertEventFromStore(ev, s.location))
	}
	return c.JSON(http.StatusOK, response)
}

// GetEvent returns one stored event.
func (s *APIV1Service) GetEvent(c echo.Context) error {
	ev, err := s.Store.GetEvent(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convertEventFromStore(ev, s.location))
}

// DeleteEvent removes a stored event and its CalDAV copy.
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	uid := c.Param("uid")
	if err := s.Store.DeleteEvent(c.Request().Context(), &store.DeleteEvent{UID: uid}); err != nil {
		return err
	}
	if s.Publisher != nil {
		if err := s.Publisher.Remove(c.Request().Context(), uid); err != nil {
			slog.Warn("failed to remove event from caldav", slog.String("uid", uid), slog.String("error", err.Error()))
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GetEventICS returns one stored event as text/calendar.
func (s *APIV1Service) GetEventICS(c echo.Context) error {
	ev, err := s.Store.GetEvent(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	data, err := caldav.MarshalICS(ev)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+ev.UID+`.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func convertEventFromStore(ev *store.Event, loc *time.Location) *Event {
	return &Event{
		UID:        ev.UID,
		Title:      ev.Title,
		Start:      ev.Start,
		End:        ev.End,
		Timezone:   ev.Timezone,
		Location:   ev.Location,
		Notes:      ev.Notes,
		Signal:     ev.Signal,
		SourceText: ev.SourceText,
		CreateTime: time.Unix(ev.CreatedTs, 0).In(loc).Format(time.RFC3339),
	}
}

func queryInt(c echo.Context, name string, defaultValue int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
