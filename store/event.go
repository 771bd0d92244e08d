package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// Event is a resolved calendar event as persisted.
type Event struct {
	ID        int32
	UID       string
	CreatedTs int64

	Title    string
	Location string
	Notes    string
	Timezone string

	// Start and End keep the canonical "YYYY-MM-DDTHH:mm:00±HH:MM" strings;
	// StartTs and EndTs are the same instants as unix seconds for ordering.
	Start   string
	End     string
	StartTs int64
	EndTs   int64

	// SourceText is the user text the event was resolved from.
	SourceText string
	// Signal is the temporal cue that decided the date (e.g. "weekday").
	Signal string
}

// FindEvent is the find condition for events.
type FindEvent struct {
	ID  *int32
	UID *string

	// Only events starting at or after StartAfterTs.
	StartAfterTs *int64

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteEvent is the delete request for events.
type DeleteEvent struct {
	UID string
}

// CreateEvent persists a new event, assigning a UID and creation time when unset.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = s.now().Unix()
	}
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events, newest first.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent returns the event with the given uid or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, uid string) (*Event, error) {
	limit := 1
	list, err := s.driver.ListEvents(ctx, &FindEvent{UID: &uid, Limit: &limit})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "event %s", uid)
	}
	return list[0], nil
}

// DeleteEvent deletes an event by uid; deleting a missing event returns ErrNotFound.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}
