package caldav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/store"
)

func sampleEvent() *store.Event {
	start := time.Date(2025, 10, 31, 15, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	return &store.Event{
		UID:       "abc123",
		CreatedTs: time.Date(2025, 10, 27, 12, 0, 0, 0, time.UTC).Unix(),
		Title:     "Reunião, com equipe",
		Location:  "Sala 2",
		Notes:     "levar notebook",
		Timezone:  "America/Sao_Paulo",
		Start:     "2025-10-31T15:00:00-03:00",
		End:       "2025-10-31T16:00:00-03:00",
		StartTs:   start.Unix(),
		EndTs:     start.Add(time.Hour).Unix(),
		Signal:    "weekday",
	}
}

func TestEncodeEvent_RoundTrip(t *testing.T) {
	data, err := MarshalICS(sampleEvent())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "BEGIN:VEVENT")
	assert.Contains(t, text, "DTSTART:20251031T180000Z")
	assert.Contains(t, text, "DTEND:20251031T190000Z")

	cal, err := ical.NewDecoder(strings.NewReader(text)).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Reunião, com equipe", summary)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent().StartTs, start.Unix())

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", uid)
}

func TestEncodeEvent_OmitsEmptyOptionalFields(t *testing.T) {
	ev := sampleEvent()
	ev.Notes = ""
	ev.Location = ""

	data, err := MarshalICS(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "DESCRIPTION")
	assert.NotContains(t, string(data), "LOCATION")
}

func TestEncodeEvent_Invalid(t *testing.T) {
	_, err := EncodeEvent(nil)
	assert.Error(t, err)

	ev := sampleEvent()
	ev.UID = ""
	_, err = EncodeEvent(ev)
	assert.Error(t, err)

	ev = sampleEvent()
	ev.EndTs = ev.StartTs
	_, err = EncodeEvent(ev)
	assert.Error(t, err)
}

type recordedRequest struct {
	method string
	path   string
	body   string
	user   string
}

func newCalDAVServer(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, _, _ := r.BasicAuth()
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body), user: user})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"1"`)
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestPublisher_Publish(t *testing.T) {
	srv, requests := newCalDAVServer(t)

	p, err := NewPublisher(srv.URL, "ana", "secret", "/calendars/ana/agenda", nil)
	require.NoError(t, err)

	path, err := p.Publish(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, "/calendars/ana/agenda/abc123.ics", path)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/calendars/ana/agenda/abc123.ics", got.path)
	assert.Equal(t, "ana", got.user)
	assert.Contains(t, got.body, "UID:abc123")
}

func TestPublisher_Remove(t *testing.T) {
	srv, requests := newCalDAVServer(t)

	p, err := NewPublisher(srv.URL, "", "", "/cal/", nil)
	require.NoError(t, err)
	require.NoError(t, p.Remove(context.Background(), "abc123"))

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodDelete, (*requests)[0].method)
	assert.Equal(t, "/cal/abc123.ics", (*requests)[0].path)
	assert.Empty(t, (*requests)[0].user)
}

func TestPublisher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	p, err := NewPublisher(srv.URL, "", "", "/cal", nil)
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), sampleEvent())
	assert.Error(t, err)
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher("", "", "", "/cal", nil)
	assert.Error(t, err)
	_, err = NewPublisher("http://localhost", "", "", "", nil)
	assert.Error(t, err)
}
