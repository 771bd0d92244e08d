package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/store"
)

func newTestingEvent(title string, createdTs int64) *store.Event {
	return &store.Event{
		CreatedTs:  createdTs,
		Title:      title,
		Location:   "Sala 2",
		Timezone:   "America/Sao_Paulo",
		Start:      "2025-06-13T09:00:00-03:00",
		End:        "2025-06-13T10:00:00-03:00",
		StartTs:    1749816000,
		EndTs:      1749819600,
		SourceText: title + " sexta 9h",
		Signal:     "weekday",
	}
}

func TestEventStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateEvent(ctx, newTestingEvent("Reunião", 1749560400))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.UID, 22)

	got, err := ts.GetEvent(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = ts.GetEvent(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, ts.DeleteEvent(ctx, &store.DeleteEvent{UID: created.UID}))
	_, err = ts.GetEvent(ctx, created.UID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, ts.DeleteEvent(ctx, &store.DeleteEvent{UID: created.UID}), store.ErrNotFound)
}

func TestEventStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for i, title := range []string{"primeiro", "segundo", "terceiro"} {
		_, err := ts.CreateEvent(ctx, newTestingEvent(title, 1749560400+int64(i)))
		require.NoError(t, err)
	}

	list, err := ts.ListEvents(ctx, &store.FindEvent{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "terceiro", list[0].Title)
	assert.Equal(t, "primeiro", list[2].Title)

	limit, offset := 1, 1
	page, err := ts.ListEvents(ctx, &store.FindEvent{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "segundo", page[0].Title)
}

func TestEventStore_StartAfter(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	early := newTestingEvent("cedo", 1749560400)
	early.StartTs, early.EndTs = 1749000000, 1749003600
	_, err := ts.CreateEvent(ctx, early)
	require.NoError(t, err)
	_, err = ts.CreateEvent(ctx, newTestingEvent("tarde", 1749560401))
	require.NoError(t, err)

	after := int64(1749500000)
	list, err := ts.ListEvents(ctx, &store.FindEvent{StartAfterTs: &after})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tarde", list[0].Title)
}

func TestEventStore_RejectsInvertedInterval(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	bad := newTestingEvent("invertido", 1749560400)
	bad.EndTs = bad.StartTs
	_, err := ts.CreateEvent(ctx, bad)
	require.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	require.NoError(t, ts.Migrate(ctx))

	want, err := ts.GetCurrentSchemaVersion()
	require.NoError(t, err)
	got, err := ts.GetDriver().GetSystemSetting(ctx, store.SchemaVersionSetting)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "0.2.1", got)
}

func TestMigrate_RefusesDowngrade(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	require.NoError(t, ts.GetDriver().UpsertSystemSetting(ctx, store.SchemaVersionSetting, "9.9.9"))
	err := ts.Migrate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot downgrade")
}
