package uptime

import (
	"fmt"
	"time"
)

type WindowKind string

const (
	LastHour WindowKind = "last_hour"
	LastDay  WindowKind = "last_day"
	LastWeek WindowKind = "last_week"
)

// Windows is the fixed evaluation order of a report run.
var Windows = []WindowKind{LastHour, LastDay, LastWeek}

func (k WindowKind) Valid() bool {
	switch k {
	case LastHour, LastDay, LastWeek:
		return true
	default:
		return false
	}
}

type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration {
	if !iv.Start.Before(iv.End) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

func (iv Interval) In(loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Bounds returns the UTC interval of a report window relative to now.
//
// last_day keeps the unnormalized lower bound (now minus 24h) while its upper
// bound is the end of that same UTC day.
func Bounds(kind WindowKind, now time.Time) (Interval, error) {
	now = now.UTC()
	switch kind {
	case LastHour:
		return Interval{Start: now.Add(-time.Hour), End: now}, nil
	case LastDay:
		start := now.Add(-24 * time.Hour)
		return Interval{Start: start, End: endOfDay(start)}, nil
	case LastWeek:
		iso := int(now.Weekday())
		if iso == 0 {
			iso = 7
		}
		currentWeek := startOfDay(now).AddDate(0, 0, -(iso - 1))
		start := currentWeek.AddDate(0, 0, -7)
		return Interval{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, nil
	default:
		return Interval{}, fmt.Errorf("unknown report window %q", kind)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999000, t.Location())
}
