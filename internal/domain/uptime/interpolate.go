package uptime

import (
	"slices"
	"time"
)

type Sample struct {
	At     time.Time
	Active bool
}

type Result struct {
	Uptime   time.Duration
	Downtime time.Duration
}

func (r Result) Add(o Result) Result {
	return Result{Uptime: r.Uptime + o.Uptime, Downtime: r.Downtime + o.Downtime}
}

func (r Result) Total() time.Duration {
	return r.Uptime + r.Downtime
}

func (r Result) UptimeMinutes() float64 {
	return r.Uptime.Minutes()
}

func (r Result) DowntimeMinutes() float64 {
	return r.Downtime.Minutes()
}

// Interpolate attributes every instant of iv to the status held since the
// previous sample (forward fill). Time before the first sample, and the whole
// interval when no sample falls inside it, counts as uptime. Samples outside
// iv are ignored and input order does not matter.
//
// Uptime + Downtime always equals iv.Duration().
func Interpolate(samples []Sample, iv Interval) Result {
	if !iv.Start.Before(iv.End) {
		return Result{}
	}

	inside := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if iv.Contains(s.At) {
			inside = append(inside, s)
		}
	}
	slices.SortStableFunc(inside, func(a, b Sample) int {
		return a.At.Compare(b.At)
	})

	var res Result
	attribute := func(active bool, d time.Duration) {
		if active {
			res.Uptime += d
		} else {
			res.Downtime += d
		}
	}

	cursor := iv.Start
	held := true
	for _, s := range inside {
		attribute(held, s.At.Sub(cursor))
		cursor = s.At
		held = s.Active
	}
	attribute(held, iv.End.Sub(cursor))

	return res
}
