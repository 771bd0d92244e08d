package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/agenda/store"
)

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	fields := []string{
		"uid", "created_ts", "title", "location", "notes", "timezone",
		"start_at", "end_at", "start_ts", "end_ts", "source_text", "signal",
	}
	args := []any{
		create.UID, create.CreatedTs, create.Title, create.Location, create.Notes, create.Timezone,
		create.Start, create.End, create.StartTs, create.EndTs, create.SourceText, create.Signal,
	}

	stmt := `INSERT INTO event (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create event")
	}
	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "event.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "event.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartAfterTs; v != nil {
		where, args = append(where, "event.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, created_ts, title, location, notes, timezone,
			start_at, end_at, start_ts, end_ts, source_text, signal
		FROM event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY event.created_ts DESC, event.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		var event store.Event
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.CreatedTs,
			&event.Title,
			&event.Location,
			&event.Notes,
			&event.Timezone,
			&event.Start,
			&event.End,
			&event.StartTs,
			&event.EndTs,
			&event.SourceText,
			&event.Signal,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		list = append(list, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM event WHERE uid = ?", delete.UID)
	if err != nil {
		return errors.Wrap(err, "failed to delete event")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(store.ErrNotFound, "event %s", delete.UID)
	}
	return nil
}
