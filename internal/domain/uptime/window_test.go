package uptime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}

func TestBounds_LastHour(t *testing.T) {
	now := mustTime(t, "2024-06-10T15:30:00Z")

	b, err := Bounds(LastHour, now)
	require.NoError(t, err)

	assert.True(t, b.Start.Equal(mustTime(t, "2024-06-10T14:30:00Z")))
	assert.True(t, b.End.Equal(now))
}

func TestBounds_LastDayKeepsUnnormalizedStart(t *testing.T) {
	now := mustTime(t, "2024-06-10T15:30:00Z")

	b, err := Bounds(LastDay, now)
	require.NoError(t, err)

	assert.True(t, b.Start.Equal(mustTime(t, "2024-06-09T15:30:00Z")), "start=%s", b.Start)
	assert.True(t, b.End.Equal(mustTime(t, "2024-06-09T23:59:59.999999Z")), "end=%s", b.End)
}

func TestBounds_LastWeek(t *testing.T) {
	cases := []struct {
		name string
		now  string
	}{
		{name: "wednesday", now: "2024-06-12T10:00:00Z"},
		{name: "monday midnight", now: "2024-06-10T00:00:00Z"},
		{name: "sunday late", now: "2024-06-16T23:59:00Z"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Bounds(LastWeek, mustTime(t, tc.now))
			require.NoError(t, err)

			assert.True(t, b.Start.Equal(mustTime(t, "2024-06-03T00:00:00Z")), "start=%s", b.Start)
			assert.True(t, b.End.Equal(mustTime(t, "2024-06-09T23:59:59.999999Z")), "end=%s", b.End)
			assert.Equal(t, time.Monday, b.Start.Weekday())
			assert.Equal(t, time.Sunday, b.End.Weekday())
		})
	}
}

func TestBounds_NormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2024, 6, 10, 21, 0, 0, 0, loc)

	b, err := Bounds(LastHour, now)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, b.Start.Location())
	assert.True(t, b.End.Equal(mustTime(t, "2024-06-10T15:30:00Z")))
}

func TestBounds_UnknownWindow(t *testing.T) {
	_, err := Bounds(WindowKind("last_month"), time.Now())
	assert.Error(t, err)
	assert.False(t, WindowKind("last_month").Valid())
	assert.True(t, LastWeek.Valid())
}
