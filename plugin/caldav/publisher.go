package caldav

import (
	"context"
	"net/http"
	"strings"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/pkg/errors"

	"github.com/hrygo/agenda/plugin/ai/timeout"
	"github.com/hrygo/agenda/store"
)

// Publisher writes events into one calendar collection.
type Publisher struct {
	client       *caldav.Client
	calendarPath string
}

// NewPublisher creates a publisher for the collection at calendarPath on the
// server at endpoint. httpClient may be nil.
func NewPublisher(endpoint, username, password, calendarPath string, httpClient *http.Client) (*Publisher, error) {
	if endpoint == "" {
		return nil, errors.New("caldav endpoint is required")
	}
	if calendarPath == "" {
		return nil, errors.New("caldav calendar path is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout.CalDAVTimeout}
	}

	var hc webdav.HTTPClient = httpClient
	if username != "" {
		hc = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}
	client, err := caldav.NewClient(hc, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create caldav client")
	}
	if !strings.HasSuffix(calendarPath, "/") {
		calendarPath += "/"
	}
	return &Publisher{client: client, calendarPath: calendarPath}, nil
}

// ObjectPath returns the path of the calendar object for uid.
func (p *Publisher) ObjectPath(uid string) string {
	return p.calendarPath + uid + ".ics"
}

// Publish puts ev into the collection, replacing any object with the same
// UID, and returns the object path.
func (p *Publisher) Publish(ctx context.Context, ev *store.Event) (string, error) {
	cal, err := EncodeEvent(ev)
	if err != nil {
		return "", err
	}
	path := p.ObjectPath(ev.UID)
	if _, err := p.client.PutCalendarObject(ctx, path, cal); err != nil {
		return "", errors.Wrapf(err, "failed to put calendar object %s", path)
	}
	return path, nil
}

// Remove deletes the calendar object for uid.
func (p *Publisher) Remove(ctx context.Context, uid string) error {
	path := p.ObjectPath(uid)
	if err := p.client.RemoveAll(ctx, path); err != nil {
		return errors.Wrapf(err, "failed to remove calendar object %s", path)
	}
	return nil
}
