package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{name: "UTC", tz: "UTC"},
		{name: "empty string defaults to UTC", tz: ""},
		{name: "America/Sao_Paulo", tz: "America/Sao_Paulo"},
		{name: "America/Manaus", tz: "America/Manaus"},
		{name: "invalid timezone", tz: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if loc == nil {
				t.Errorf("ParseTimezone() returned nil location")
			}
		})
	}
}

func TestOffsetString(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"sao paulo", time.Date(2025, time.June, 10, 9, 0, 0, 0, LocationSaoPaulo), "-03:00"},
		{"utc", time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC), "+00:00"},
		{"half hour", time.Date(2025, time.June, 10, 9, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)), "+05:30"},
		{"newfoundland", time.Date(2025, time.January, 10, 9, 0, 0, 0, time.FixedZone("NST", -(3*3600 + 1800))), "-03:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OffsetString(tt.t))
		})
	}
}

func TestParseOffset(t *testing.T) {
	loc, err := ParseOffset("-03:00")
	require.NoError(t, err)
	assert.Equal(t, "-03:00", OffsetString(time.Date(2025, time.June, 10, 9, 0, 0, 0, loc)))

	loc, err = ParseOffset("Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = ParseOffset("BRT")
	assert.Error(t, err)
}

func TestNowInTimezone(t *testing.T) {
	got := NowInTimezone(LocationSaoPaulo)
	if got.Location() != LocationSaoPaulo {
		t.Errorf("NowInTimezone() location = %v, want %v", got.Location(), LocationSaoPaulo)
	}
	assert.Equal(t, time.UTC, NowInTimezone(nil).Location())
}

func TestFormatEventTime(t *testing.T) {
	start := time.Date(2025, time.June, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-06-10 17:00 - 18:30",
		FormatEventTime(start, start.Add(90*time.Minute), LocationSaoPaulo))
	assert.Equal(t, "2025-06-10 17:00 - 2025-06-11 09:00",
		FormatEventTime(start, start.Add(16*time.Hour), LocationSaoPaulo))
	assert.Equal(t, "2025-06-10 20:00 - 21:00",
		FormatEventTime(start, start.Add(time.Hour), nil))
}
