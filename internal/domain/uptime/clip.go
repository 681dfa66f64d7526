package uptime

import (
	"time"

	"store-monitor/internal/domain/store"
)

// Date is a calendar day in some store's local time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) At(tod store.TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, tod.Second, 0, loc)
}

func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Next() Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, time.UTC))
}

func (d Date) DayOfWeek() int {
	return store.DayOfWeek(time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC))
}

func (d Date) after(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// LocalDates lists every calendar date in loc touched by the window.
func LocalDates(window Interval, loc *time.Location) []Date {
	if window.End.Before(window.Start) {
		return nil
	}
	first := DateOf(window.Start.In(loc))
	last := DateOf(window.End.In(loc))

	out := make([]Date, 0, 8)
	for d := first; !d.after(last); d = d.Next() {
		out = append(out, d)
	}
	return out
}

// OpenInterval anchors the day's business hours to a calendar date. Multiple
// rules collapse into one span from the earliest start to the latest end; no
// rules means the store is open for the whole day.
func OpenInterval(rules []store.BusinessHourRule, day Date, loc *time.Location) Interval {
	if len(rules) == 0 {
		return Interval{Start: day.Midnight(loc), End: day.Next().Midnight(loc)}
	}

	start := rules[0].StartLocal
	end := rules[0].EndLocal
	for _, r := range rules[1:] {
		if r.StartLocal.Before(start) {
			start = r.StartLocal
		}
		if end.Before(r.EndLocal) {
			end = r.EndLocal
		}
	}
	return Interval{Start: day.At(start, loc), End: day.At(end, loc)}
}

// Clip intersects an open interval with the report window. ok is false when
// the overlap is empty or inverted.
func Clip(open Interval, window Interval) (Interval, bool) {
	start := open.Start
	if window.Start.After(start) {
		start = window.Start
	}
	end := open.End
	if window.End.Before(end) {
		end = window.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}
