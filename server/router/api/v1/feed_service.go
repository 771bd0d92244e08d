package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/agenda/server/timezone"
	"github.com/hrygo/agenda/store"
)

const feedSize = 50

// GetFeed returns the latest stored events as an Atom feed.
func (s *APIV1Service) GetFeed(c echo.Context) error {
	limit := feedSize
	list, err := s.Store.ListEvents(c.Request().Context(), &store.FindEvent{Limit: &limit})
	if err != nil {
		return err
	}

	baseURL := strings.TrimSuffix(s.Profile.InstanceURL, "/")
	if baseURL == "" {
		baseURL = c.Scheme() + "://" + c.Request().Host
	}

	feed := &feeds.Feed{
		Title:       "Agenda",
		Link:        &feeds.Link{Href: baseURL},
		Description: "Eventos extraídos",
		Created:     s.now(),
	}
	if len(list) > 0 {
		feed.Updated = time.Unix(list[0].CreatedTs, 0)
	}
	feed.Items = make([]*feeds.Item, 0, len(list))
	for _, ev := range list {
		feed.Items = append(feed.Items, s.feedItem(ev, baseURL))
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/atom+xml; charset=utf-8")
	return c.String(http.StatusOK, atom)
}

func (s *APIV1Service) feedItem(ev *store.Event, baseURL string) *feeds.Item {
	description := timezone.FormatEventTime(time.Unix(ev.StartTs, 0), time.Unix(ev.EndTs, 0), s.location)
	if ev.Location != "" {
		description += " · " + ev.Location
	}
	return &feeds.Item{
		Id:          ev.UID,
		Title:       ev.Title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/v1/events/%s", baseURL, ev.UID)},
		Description: description,
		Content:     ev.Notes,
		Created:     time.Unix(ev.CreatedTs, 0),
	}
}
