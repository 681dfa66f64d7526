package uptime

import (
	"time"

	"github.com/google/uuid"

	"store-monitor/internal/domain/store"
)

// StoreInput is everything needed to evaluate one store for one window. It is
// read-only once built, so inputs can be handed to concurrent workers.
type StoreInput struct {
	StoreID  uuid.UUID
	Location *time.Location
	// Rules keyed by day of week (0 = Monday).
	Rules map[int][]store.BusinessHourRule
	Polls []store.PollObservation
}

// ComputeStore evaluates a store day by day: each local calendar date the
// window touches is clipped against that day's business hours and
// interpolated on its own, so status never carries across days.
func ComputeStore(in StoreInput, window Interval) Result {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	samples := make([]Sample, 0, len(in.Polls))
	for _, p := range in.Polls {
		samples = append(samples, Sample{At: p.TimestampUTC, Active: p.Active})
	}

	local := window.In(loc)
	var total Result
	for _, day := range LocalDates(local, loc) {
		open := OpenInterval(in.Rules[day.DayOfWeek()], day, loc)
		clipped, ok := Clip(open, local)
		if !ok {
			continue
		}
		total = total.Add(Interpolate(samples, clipped))
	}
	return total
}

// GroupRules indexes rules by store then day of week, dropping out-of-range days.
func GroupRules(rules []store.BusinessHourRule) map[uuid.UUID]map[int][]store.BusinessHourRule {
	out := make(map[uuid.UUID]map[int][]store.BusinessHourRule)
	for _, r := range rules {
		if !store.ValidDayOfWeek(r.DayOfWeek) {
			continue
		}
		byDay, ok := out[r.StoreID]
		if !ok {
			byDay = make(map[int][]store.BusinessHourRule)
			out[r.StoreID] = byDay
		}
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
	}
	return out
}
