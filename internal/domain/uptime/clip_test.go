package uptime

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/domain/store"
)

func tod(t *testing.T, s string) store.TimeOfDay {
	t.Helper()
	v, err := store.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func loadLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestOpenInterval_NoRulesIsWholeDay(t *testing.T) {
	loc := loadLoc(t, "America/Chicago")
	day := Date{Year: 2024, Month: time.June, Day: 3}

	iv := OpenInterval(nil, day, loc)

	assert.Equal(t, 24*time.Hour, iv.Duration())
	assert.True(t, iv.Start.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, loc)))
}

func TestOpenInterval_SplitShiftsSpanEarliestToLatest(t *testing.T) {
	loc := time.UTC
	id := uuid.New()
	rules := []store.BusinessHourRule{
		{StoreID: id, DayOfWeek: 0, StartLocal: tod(t, "17:00:00"), EndLocal: tod(t, "22:00:00")},
		{StoreID: id, DayOfWeek: 0, StartLocal: tod(t, "09:00:00"), EndLocal: tod(t, "13:00:00")},
	}

	iv := OpenInterval(rules, Date{Year: 2024, Month: time.June, Day: 3}, loc)

	assert.True(t, iv.Start.Equal(time.Date(2024, 6, 3, 9, 0, 0, 0, loc)))
	assert.True(t, iv.End.Equal(time.Date(2024, 6, 3, 22, 0, 0, 0, loc)))
}

func TestClip(t *testing.T) {
	open := Interval{Start: at(0), End: at(120)}

	got, ok := Clip(open, Interval{Start: at(60), End: at(180)})
	require.True(t, ok)
	assert.True(t, got.Start.Equal(at(60)))
	assert.True(t, got.End.Equal(at(120)))

	_, ok = Clip(open, Interval{Start: at(120), End: at(180)})
	assert.False(t, ok, "touching intervals have no overlap")

	_, ok = Clip(Interval{Start: at(60), End: at(30)}, Interval{Start: at(0), End: at(180)})
	assert.False(t, ok, "inverted business hours are skipped")
}

func TestLocalDates(t *testing.T) {
	chicago := loadLoc(t, "America/Chicago")

	week, err := Bounds(LastWeek, mustTime(t, "2024-06-12T10:00:00Z"))
	require.NoError(t, err)

	dates := LocalDates(week, chicago)
	require.Len(t, dates, 8)
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 2}, dates[0])
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 9}, dates[7])

	hour, err := Bounds(LastHour, mustTime(t, "2024-06-10T15:30:00Z"))
	require.NoError(t, err)
	assert.Len(t, LocalDates(hour, chicago), 1)

	assert.Len(t, LocalDates(Interval{Start: at(10), End: at(0)}, time.UTC), 0)
}

func TestDate_DayOfWeekAndNext(t *testing.T) {
	d := Date{Year: 2024, Month: time.June, Day: 30}
	assert.Equal(t, 6, d.DayOfWeek())
	assert.Equal(t, Date{Year: 2024, Month: time.July, Day: 1}, d.Next())
	assert.Equal(t, 0, d.Next().DayOfWeek())
}
